// models/user.go
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Roles in descending scope. Ultra admin manages the whole system,
// super admins see their assigned branches, the sub super admin runs
// the CO office across branches, and admins record entries for
// exactly one branch.
const (
	RoleUltraAdmin    = "ultra-admin"
	RoleSuperAdmin    = "super-admin"
	RoleSubSuperAdmin = "sub-super-admin"
	RoleAdmin         = "admin"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	switch s {
	case RoleUltraAdmin, RoleSuperAdmin, RoleSubSuperAdmin, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:20;not null;index" json:"role"`

	// BranchID binds an admin to the single branch it records entries
	// for. Super admins instead carry AssignedBranchIDs, a list of
	// branch id strings.
	BranchID          *uuid.UUID  `gorm:"type:uuid;index" json:"branchId,omitempty"`
	AssignedBranchIDs StringArray `gorm:"type:jsonb" json:"assignedBranchIds,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// SetPassword hashes and stores the given plaintext password.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares plain against the stored bcrypt hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// CanSeeBranch reports whether the user's role scope includes the
// given branch. Ultra admins and the CO office see every branch.
func (u *User) CanSeeBranch(branchID uuid.UUID) bool {
	switch u.Role {
	case RoleUltraAdmin, RoleSubSuperAdmin:
		return true
	case RoleSuperAdmin:
		return u.AssignedBranchIDs.Contains(branchID.String())
	case RoleAdmin:
		return u.BranchID != nil && *u.BranchID == branchID
	}
	return false
}

// NormalizeUsername lowercases and trims a username for
// case-insensitive comparison.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
