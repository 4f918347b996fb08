package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/transportpro/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250812_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Branch{}, &models.Vendor{}, &models.Entry{})
			},
		},
		{
			ID: "20250819_add_audit_logs",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.AuditLog{})
			},
		},
		{
			ID: "20250826_entry_day_serial_index",
			Migrate: func(tx *gorm.DB) error {
				// Listing and serial assignment both hit (branch, day).
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_entries_branch_date ON entries (branch_id, date_time)").Error
			},
		},
	})

	return m.Migrate()
}
