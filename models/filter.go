package models

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sort orders for entry listings.
const (
	SortLatest = "latest"
	SortOldest = "oldest"
)

// EntryFilter is the set of list filters parsed from query params.
// All active predicates compose conjunctively. VendorName is the
// vendor's display name resolved from vendor_id by the handler; it
// matches against the CO vendor of an entry.
type EntryFilter struct {
	Search     string
	BranchID   *uuid.UUID
	VendorID   *uuid.UUID
	VendorName string
	Trip       string
	DateFrom   *time.Time
	DateTo     *time.Time
	Sort       string
}

// ParseEntryFilter reads filters from the request query string.
// Supported params: q, branch_id, vendor_id, trip, date (single day
// key, "today" allowed), date_from, date_to, sort.
func ParseEntryFilter(r *http.Request) (EntryFilter, error) {
	q := r.URL.Query()
	f := EntryFilter{
		Search: strings.TrimSpace(q.Get("q")),
		Sort:   q.Get("sort"),
	}

	if f.Sort == "" {
		f.Sort = SortLatest
	}
	if f.Sort != SortLatest && f.Sort != SortOldest {
		return f, fmt.Errorf("invalid sort %q", f.Sort)
	}

	if v := q.Get("branch_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fmt.Errorf("invalid branch_id")
		}
		f.BranchID = &id
	}

	if v := q.Get("vendor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fmt.Errorf("invalid vendor_id")
		}
		f.VendorID = &id
	}

	if v := q.Get("trip"); v != "" {
		if v != TripFirst && v != TripSecond {
			return f, fmt.Errorf("invalid trip %q", v)
		}
		f.Trip = v
	}

	// A single "date" key is shorthand for from==to on that day.
	// "all" disables the admin today default without adding bounds.
	if v := q.Get("date"); v != "" && v != "all" {
		var day time.Time
		if v == "today" {
			day = time.Now()
		} else {
			parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
			if err != nil {
				return f, fmt.Errorf("invalid date %q", v)
			}
			day = parsed
		}
		start, _ := DayRange(day)
		f.DateFrom = &start
		f.DateTo = &start
		return f, nil
	}

	if v := q.Get("date_from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid date_from %q", v)
		}
		f.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid date_to %q", v)
		}
		f.DateTo = &t
	}

	return f, nil
}

// Apply adds the filter predicates and sort order to a gorm query
// over entries. Date bounds are inclusive calendar days.
func (f EntryFilter) Apply(db *gorm.DB) *gorm.DB {
	db = f.Where(db)
	if f.Sort == SortOldest {
		return db.Order("date_time ASC").Order("created_at ASC")
	}
	return db.Order("date_time DESC").Order("created_at DESC")
}

// Where adds the filter predicates only, leaving ordering to the
// caller. The CO queues use this with their own fixed sort.
func (f EntryFilter) Where(db *gorm.DB) *gorm.DB {
	if f.Search != "" {
		db = db.Where("LOWER(car_number) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.BranchID != nil {
		db = db.Where("branch_id = ?", *f.BranchID)
	}
	if f.VendorName != "" {
		db = db.Where("co_vendor = ?", f.VendorName)
	}
	if f.Trip != "" {
		db = db.Where("trip = ?", f.Trip)
	}
	if f.DateFrom != nil {
		start, _ := DayRange(*f.DateFrom)
		db = db.Where("date_time >= ?", start)
	}
	if f.DateTo != nil {
		_, end := DayRange(*f.DateTo)
		db = db.Where("date_time < ?", end)
	}
	return db
}
