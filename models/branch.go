package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Branch is a physical operating location and the data isolation
// boundary for admin users. It owns its vendor list; deleting a
// branch cascades to vendors, branch admins and entries.
type Branch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Vendors   []Vendor  `gorm:"foreignKey:BranchID;constraint:OnDelete:CASCADE" json:"vendors"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (b *Branch) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// HasVendorNamed reports whether the branch already carries a vendor
// with the given name, compared case-insensitively.
func (b *Branch) HasVendorNamed(name string) bool {
	for _, v := range b.Vendors {
		if strings.EqualFold(v.Name, name) {
			return true
		}
	}
	return false
}

// Vendor is a contracted third party tied to one branch. Its
// lifecycle follows the parent branch; it never exists on its own.
type Vendor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	BranchID  uuid.UUID `gorm:"type:uuid;index;not null" json:"branchId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (v *Vendor) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}
