package config

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"p9e.in/transportpro/models"
)

// SeedUltraAdmin bootstraps the ultra admin account when the users
// table is empty. Password comes from ULTRA_ADMIN_PASSWORD; a fresh
// deployment must change it after first login.
func SeedUltraAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	u := models.User{
		Username: "ultraadmin",
		Role:     models.RoleUltraAdmin,
	}
	if err := u.SetPassword(Getenv("ULTRA_ADMIN_PASSWORD", "ultra123")); err != nil {
		return err
	}
	if err := db.Create(&u).Error; err != nil {
		return err
	}

	log.Println("Seeded ultra admin account 'ultraadmin'")
	return nil
}

// SeedDemoData loads a small sample dataset (branches, vendors,
// users, entries) for demos. Skips when any branch already exists.
func SeedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Branch{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Demo data skipped: branches already present")
		return nil
	}

	mumbai := models.Branch{
		Name: "Mumbai",
		Vendors: []models.Vendor{
			{Name: "Vendor A"},
			{Name: "Vendor B"},
		},
	}
	delhi := models.Branch{
		Name: "Delhi",
		Vendors: []models.Vendor{
			{Name: "Vendor C"},
		},
	}
	bangalore := models.Branch{Name: "Bangalore"}

	for _, b := range []*models.Branch{&mumbai, &delhi, &bangalore} {
		if err := db.Create(b).Error; err != nil {
			return err
		}
	}

	users := []struct {
		username string
		password string
		role     string
		branch   *uuid.UUID
		assigned []string
	}{
		{"superadmin", "super123", models.RoleSuperAdmin, nil, []string{mumbai.ID.String(), delhi.ID.String()}},
		{"cooffice", "co123", models.RoleSubSuperAdmin, nil, nil},
		{"amit_mumbai", "admin123", models.RoleAdmin, &mumbai.ID, nil},
		{"raj_delhi", "admin123", models.RoleAdmin, &delhi.ID, nil},
	}

	for _, acct := range users {
		u := models.User{
			Username:          acct.username,
			Role:              acct.role,
			BranchID:          acct.branch,
			AssignedBranchIDs: acct.assigned,
		}
		if err := u.SetPassword(acct.password); err != nil {
			return err
		}
		if err := db.Create(&u).Error; err != nil {
			return err
		}
	}

	now := time.Now()
	appliedAt := now
	entries := []models.Entry{
		{
			SlNo: 1, DateTime: models.JSONTime(now),
			Name: "John Driver", PhoneNumber: "9876543210",
			Vendor: "Vendor A", Location: "Mumbai Port",
			CarNumber: "MH01AB1234", Wheels: 10, Cft: 100,
			Cost: 5000, Cash: 3000, Upi: 2000,
			Remark: "Regular delivery", Trip: models.TripFirst,
			BranchID: mumbai.ID, AdminUsername: "amit_mumbai",
			COApplied: true, COAppliedAt: &appliedAt, COVendor: "Vendor A",
		},
		{
			SlNo: 1, DateTime: models.JSONTime(now),
			Name: "Mike Trucker", PhoneNumber: "9123456789",
			Vendor: "Vendor C", Location: "Delhi Hub",
			CarNumber: "DL02CD5678", Wheels: 12, Cft: 150,
			Cost: 7500, Cash: 7500, Upi: 0,
			Remark: "Express delivery", Trip: models.TripSecond,
			PoliceStations: models.StringArray{"Station A", "Station B"},
			BranchID:       delhi.ID, AdminUsername: "raj_delhi",
		},
	}
	for i := range entries {
		if err := db.Create(&entries[i]).Error; err != nil {
			return err
		}
	}

	log.Println("Seeded demo branches, users and entries")
	return nil
}
