package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/transportpro/config"
	"p9e.in/transportpro/middleware"
	"p9e.in/transportpro/models"
	"p9e.in/transportpro/prometheus"
)

// CreateEntry records a truck entry for the admin's own branch.
// Branch, creator and serial number are stamped server-side; the
// serial is assigned under a per-(branch, day) lock so concurrent
// submissions cannot collide.
func CreateEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if user.Role != models.RoleAdmin || user.BranchID == nil {
		respondError(w, http.StatusForbidden, "only branch admins can record entries")
		return
	}

	var entry models.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if entry.DateTime.Time().IsZero() {
		entry.DateTime = models.JSONTime(time.Now())
	}
	if errs := entry.Validate(); errs != nil {
		respondFieldErrors(w, errs)
		return
	}

	// Identity and derived fields come from the session, never the client.
	entry.ID = uuid.Nil
	entry.BranchID = *user.BranchID
	entry.AdminUsername = user.Username
	entry.COApplied = false
	entry.COAppliedAt = nil
	entry.COVendor = ""
	entry.COPdfURL = ""
	entry.COPdfUploadedAt = nil
	if entry.Trip != models.TripSecond {
		entry.PoliceStations = nil
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		slNo, err := nextSlNo(tx, entry.BranchID, entry.DateTime.Time())
		if err != nil {
			return err
		}
		entry.SlNo = slNo
		return tx.Create(&entry).Error
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create entry")
		return
	}

	prometheus.RecordEntryOperation("create")
	writeAudit(r, models.AuditCreate, "entry", entry.ID.String(), &entry.BranchID, nil, entry)
	respondJSON(w, http.StatusCreated, entry)
}

// nextSlNo computes the next serial for (branch, calendar day of t).
// On Postgres an advisory transaction lock serializes assignment per
// key; the count itself is the same derivation the ledger has always
// used, so serials restart at 1 each day and are not gap-free after
// deletions.
func nextSlNo(tx *gorm.DB, branchID uuid.UUID, t time.Time) (int, error) {
	start, end := models.DayRange(t)

	if tx.Dialector.Name() == "postgres" {
		key := fmt.Sprintf("slno:%s:%s", branchID, start.Format("2006-01-02"))
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
			return 0, err
		}
	}

	var count int64
	err := tx.Model(&models.Entry{}).
		Where("branch_id = ? AND date_time >= ? AND date_time < ?", branchID, start, end).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// ListEntries returns the entries visible to the caller, filtered
// and sorted. Admin listings default to today when no date filter is
// given; pass date=all to disable.
func ListEntries(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	filter, err := parseScopedFilter(r, user)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var entries []models.Entry
	q := filter.Apply(config.DB.Scopes(middleware.EntryScope(user)))
	if err := q.Find(&entries).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load entries")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}

// parseScopedFilter parses list filters and checks them against the
// caller's visibility scope. A branch filter outside the scope is an
// error rather than an empty result so misconfigured clients notice.
func parseScopedFilter(r *http.Request, user models.User) (models.EntryFilter, error) {
	filter, err := models.ParseEntryFilter(r)
	if err != nil {
		return filter, err
	}

	if filter.BranchID != nil && !user.CanSeeBranch(*filter.BranchID) {
		return filter, fmt.Errorf("branch outside your scope")
	}

	if filter.VendorID != nil {
		var vendor models.Vendor
		if err := config.DB.First(&vendor, "id = ?", *filter.VendorID).Error; err != nil {
			return filter, fmt.Errorf("vendor not found")
		}
		filter.VendorName = vendor.Name
	}

	// Branch admins work against today's sheet unless they ask
	// for something else.
	if user.Role == models.RoleAdmin &&
		filter.DateFrom == nil && filter.DateTo == nil &&
		r.URL.Query().Get("date") != "all" {
		start, _ := models.DayRange(time.Now())
		filter.DateFrom = &start
		filter.DateTo = &start
	}

	return filter, nil
}

// loadScopedEntry fetches one entry if the caller's scope covers it.
func loadScopedEntry(r *http.Request, user models.User) (models.Entry, int, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return models.Entry{}, http.StatusBadRequest, fmt.Errorf("invalid entry ID")
	}

	var entry models.Entry
	err = config.DB.Scopes(middleware.EntryScope(user)).First(&entry, "id = ?", id).Error
	if err != nil {
		return models.Entry{}, http.StatusNotFound, fmt.Errorf("entry not found")
	}
	return entry, http.StatusOK, nil
}

func GetEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	entry, status, err := loadScopedEntry(r, user)
	if err != nil {
		respondError(w, status, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// protectedEntryFields cannot be changed through UpdateEntry.
// Identity and derived fields are ledger-owned; CO fields move only
// through the CO lifecycle endpoints.
var protectedEntryFields = []string{
	"id", "slNo", "branchId", "adminUsername",
	"coApplied", "coAppliedAt", "coVendor", "coPdfUrl", "coPdfUploadedAt",
}

// UpdateEntry merges the submitted fields into an entry of the
// admin's own branch. Requests naming a protected field are rejected
// outright.
func UpdateEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	entry, status, err := loadScopedEntry(r, user)
	if err != nil {
		respondError(w, status, err.Error())
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	for _, field := range protectedEntryFields {
		if _, present := raw[field]; present {
			respondFieldErrors(w, map[string]string{field: "field cannot be updated"})
			return
		}
	}

	before := entry
	merged, _ := json.Marshal(raw)
	if err := json.Unmarshal(merged, &entry); err != nil {
		respondError(w, http.StatusBadRequest, "invalid field value")
		return
	}
	if errs := entry.Validate(); errs != nil {
		respondFieldErrors(w, errs)
		return
	}

	if err := config.DB.Save(&entry).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update entry")
		return
	}

	prometheus.RecordEntryOperation("update")
	writeAudit(r, models.AuditUpdate, "entry", entry.ID.String(), &entry.BranchID, before, entry)
	respondJSON(w, http.StatusOK, entry)
}

// DeleteEntry removes an entry. Serials of the remaining entries are
// not renumbered.
func DeleteEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	entry, status, err := loadScopedEntry(r, user)
	if err != nil {
		respondError(w, status, err.Error())
		return
	}

	if err := config.DB.Delete(&entry).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete entry")
		return
	}

	prometheus.RecordEntryOperation("delete")
	writeAudit(r, models.AuditDelete, "entry", entry.ID.String(), &entry.BranchID, entry, nil)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// slipPayload is the data handed to the slip print collaborator. The
// core supplies data only; layout belongs to the renderer.
type slipPayload struct {
	SlNo        int     `json:"slNo"`
	DateTime    string  `json:"dateTime"`
	CarNumber   string  `json:"carNumber"`
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phoneNumber"`
	Location    string  `json:"location"`
	Wheels      int     `json:"wheels"`
	Cft         float64 `json:"cft"`
	Cost        float64 `json:"cost"`
	Cash        float64 `json:"cash"`
	Upi         float64 `json:"upi"`
	Remark      string  `json:"remark"`
	Branch      string  `json:"branch"`
	Copies      int     `json:"copies"`
	QRPayload   string  `json:"qrPayload"`
}

// EntrySlip returns the printable slip data for an entry, including
// the QR verification payload and requested copy count.
func EntrySlip(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	entry, status, err := loadScopedEntry(r, user)
	if err != nil {
		respondError(w, status, err.Error())
		return
	}

	copies := 2
	if c, err := strconv.Atoi(r.URL.Query().Get("copies")); err == nil && c > 0 && c <= 10 {
		copies = c
	}

	var branch models.Branch
	branchName := "Main Branch"
	if err := config.DB.First(&branch, "id = ?", entry.BranchID).Error; err == nil {
		branchName = branch.Name
	}

	qr, _ := json.Marshal(map[string]interface{}{
		"sl":     entry.SlNo,
		"car":    entry.CarNumber,
		"amount": entry.Cost,
		"date":   entry.DateTime.Time().Format(time.RFC3339),
		"name":   entry.Name,
	})

	respondJSON(w, http.StatusOK, slipPayload{
		SlNo:        entry.SlNo,
		DateTime:    entry.DateTime.Time().Format(time.RFC3339),
		CarNumber:   entry.CarNumber,
		Name:        entry.Name,
		PhoneNumber: entry.PhoneNumber,
		Location:    entry.Location,
		Wheels:      entry.Wheels,
		Cft:         entry.Cft,
		Cost:        entry.Cost,
		Cash:        entry.Cash,
		Upi:         entry.Upi,
		Remark:      entry.Remark,
		Branch:      branchName,
		Copies:      copies,
		QRPayload:   string(qr),
	})
}
