package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trip values. Second trips carry police station routing data.
const (
	TripFirst  = "1st"
	TripSecond = "2nd"
)

// CO lifecycle states, derived from entry fields. The three CO
// columns are the only source of truth; the state is never stored.
const (
	COStatusPending  = "pending"
	COStatusApplied  = "applied"
	COStatusUploaded = "uploaded"
)

// Entry is one truck record. SlNo restarts at 1 per branch per
// calendar day and is assigned by the ledger, never by the client,
// as are BranchID and AdminUsername.
type Entry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SlNo        int       `gorm:"column:sl_no;not null" json:"slNo"`
	DateTime    JSONTime  `gorm:"column:date_time;not null;index" json:"dateTime"`
	Name        string    `gorm:"size:100" json:"name"`
	PhoneNumber string    `gorm:"size:15" json:"phoneNumber"`
	Vendor      string    `gorm:"size:100" json:"vendor"` // 1st-trip vendor label, distinct from COVendor
	Location    string    `gorm:"size:255" json:"location"`
	CarNumber   string    `gorm:"size:20;index" json:"carNumber"`
	Wheels      int       `json:"wheels"`
	Cft         float64   `json:"cft"`
	Cost        float64   `json:"cost"` // advisory: cost should equal cash+upi, not enforced
	Cash        float64   `json:"cash"`
	Upi         float64   `json:"upi"`
	Remark      string    `gorm:"size:500" json:"remark"`
	Trip        string    `gorm:"size:3;not null" json:"trip"`

	PoliceStations StringArray `gorm:"type:jsonb" json:"policeStations,omitempty"`

	BranchID      uuid.UUID `gorm:"type:uuid;index;not null" json:"branchId"`
	AdminUsername string    `gorm:"size:100;not null" json:"adminUsername"`

	COApplied       bool       `gorm:"column:co_applied;not null;default:false;index" json:"coApplied"`
	COAppliedAt     *time.Time `gorm:"column:co_applied_at" json:"coAppliedAt,omitempty"`
	COVendor        string     `gorm:"column:co_vendor;size:100" json:"coVendor,omitempty"`
	COPdfURL        string     `gorm:"column:co_pdf_url;size:500" json:"coPdfUrl,omitempty"`
	COPdfUploadedAt *time.Time `gorm:"column:co_pdf_uploaded_at" json:"coPdfUploadedAt,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (e *Entry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// COStatus derives the clearance state from entry fields. Every view
// of CO state goes through here.
func (e *Entry) COStatus() string {
	if e.COPdfURL != "" {
		return COStatusUploaded
	}
	if e.COApplied {
		return COStatusApplied
	}
	return COStatusPending
}

// Validate checks the required fields of a submitted entry and
// returns per-field messages. Name, location and cft are required
// only on 1st trips.
func (e *Entry) Validate() map[string]string {
	errs := map[string]string{}

	if e.PhoneNumber == "" {
		errs["phoneNumber"] = "Phone number is required"
	}
	if e.CarNumber == "" {
		errs["carNumber"] = "Car number is required"
	}
	if e.Wheels <= 0 {
		errs["wheels"] = "Select wheels count"
	}
	if e.Trip != TripFirst && e.Trip != TripSecond {
		errs["trip"] = "Trip must be 1st or 2nd"
	}

	if e.Trip == TripFirst {
		if e.Name == "" {
			errs["name"] = "Name is required"
		}
		if e.Location == "" {
			errs["location"] = "Location is required"
		}
		if e.Cft <= 0 {
			errs["cft"] = "Valid CFT required"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// DayRange returns the half-open [start, end) interval of the
// calendar day containing t, in t's location. Serial numbers and day
// filters both key on this interval.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
