package middleware

import (
	"gorm.io/gorm"
	"p9e.in/transportpro/models"
)

// EntryScope returns the gorm scope limiting entry queries to what
// the user's role may see:
//
//	admin           - own branch only
//	super-admin     - assigned branches
//	sub-super-admin - CO-applied entries across all branches
//	ultra-admin     - everything
//
// Unknown roles match nothing.
func EntryScope(user models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch user.Role {
		case models.RoleUltraAdmin:
			return db
		case models.RoleSubSuperAdmin:
			return db.Where("co_applied = ?", true)
		case models.RoleSuperAdmin:
			if len(user.AssignedBranchIDs) == 0 {
				return db.Where("1 = 0")
			}
			return db.Where("branch_id IN ?", []string(user.AssignedBranchIDs))
		case models.RoleAdmin:
			if user.BranchID == nil {
				return db.Where("1 = 0")
			}
			return db.Where("branch_id = ?", *user.BranchID)
		default:
			return db.Where("1 = 0")
		}
	}
}
