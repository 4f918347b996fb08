package models

import (
	"testing"
	"time"
)

func TestCOStatusDerivation(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{"fresh entry", Entry{}, COStatusPending},
		{"applied", Entry{COApplied: true, COAppliedAt: &now, COVendor: "Vendor A"}, COStatusApplied},
		{"uploaded", Entry{COApplied: true, COPdfURL: "/uploads/co.pdf", COPdfUploadedAt: &now}, COStatusUploaded},
		// A pdf url alone still reads as uploaded; the url is the
		// stronger signal.
		{"pdf without applied flag", Entry{COPdfURL: "/uploads/co.pdf"}, COStatusUploaded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.COStatus(); got != tt.want {
				t.Errorf("COStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEntryValidate(t *testing.T) {
	valid1st := Entry{
		Name: "Driver", PhoneNumber: "9876543210", Location: "Depot 4",
		CarNumber: "MH 04 AB 1234", Wheels: 10, Cft: 450, Trip: TripFirst,
	}

	t.Run("valid first trip", func(t *testing.T) {
		if errs := valid1st.Validate(); errs != nil {
			t.Fatalf("expected no errors, got %v", errs)
		}
	})

	t.Run("second trip skips first-trip fields", func(t *testing.T) {
		e := Entry{PhoneNumber: "9876543210", CarNumber: "MH 04 AB 1234", Wheels: 6, Trip: TripSecond}
		if errs := e.Validate(); errs != nil {
			t.Fatalf("expected no errors, got %v", errs)
		}
	})

	tests := []struct {
		name   string
		mutate func(e *Entry)
		field  string
	}{
		{"missing phone", func(e *Entry) { e.PhoneNumber = "" }, "phoneNumber"},
		{"missing car", func(e *Entry) { e.CarNumber = "" }, "carNumber"},
		{"zero wheels", func(e *Entry) { e.Wheels = 0 }, "wheels"},
		{"bad trip", func(e *Entry) { e.Trip = "3rd" }, "trip"},
		{"missing name on first trip", func(e *Entry) { e.Name = "" }, "name"},
		{"missing location on first trip", func(e *Entry) { e.Location = "" }, "location"},
		{"zero cft on first trip", func(e *Entry) { e.Cft = 0 }, "cft"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid1st
			tt.mutate(&e)
			errs := e.Validate()
			if errs == nil {
				t.Fatal("expected validation errors, got none")
			}
			if _, ok := errs[tt.field]; !ok {
				t.Errorf("expected error on %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestDayRange(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2025, 8, 14, 23, 59, 59, 0, loc)

	start, end := DayRange(at)
	if !start.Equal(time.Date(2025, 8, 14, 0, 0, 0, 0, loc)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2025, 8, 15, 0, 0, 0, 0, loc)) {
		t.Errorf("end = %v", end)
	}

	// midnight belongs to the day it opens
	s2, _ := DayRange(end)
	if !s2.Equal(end) {
		t.Errorf("midnight should start its own day, got %v", s2)
	}
}
