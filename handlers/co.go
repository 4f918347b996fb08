package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"p9e.in/transportpro/config"
	"p9e.in/transportpro/middleware"
	"p9e.in/transportpro/models"
	"p9e.in/transportpro/pkg/storage"
	"p9e.in/transportpro/prometheus"
)

// docStore holds CO PDF documents. Wired at startup.
var docStore storage.Store

func SetDocumentStore(s storage.Store) {
	docStore = s
}

const maxCOPdfSize = 20 << 20 // 20 MB

type applyCOReq struct {
	Vendor string `json:"vendor"`
}

// ApplyCO marks an entry as CO-applied with a vendor of the entry's
// branch. Applying is one-way; an already applied entry is a conflict.
func ApplyCO(w http.ResponseWriter, r *http.Request) {
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

	var req applyCOReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Vendor = strings.TrimSpace(req.Vendor)
	if req.Vendor == "" {
		respondFieldErrors(w, map[string]string{"vendor": "Vendor is required"})
		return
	}

	var vendor models.Vendor
	err = config.DB.First(&vendor, "branch_id = ? AND LOWER(name) = LOWER(?)",
		entry.BranchID, req.Vendor).Error
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "vendor does not belong to this branch")
		return
	}

	now := time.Now()
	before := entry

	// The guard on co_applied makes the transition atomic; a second
	// apply finds zero rows and conflicts.
	res := config.DB.Model(&models.Entry{}).
		Where("id = ? AND co_applied = ?", entry.ID, false).
		Updates(map[string]interface{}{
			"co_applied":    true,
			"co_applied_at": now,
			"co_vendor":     vendor.Name,
		})
	if res.Error != nil {
		respondError(w, http.StatusInternalServerError, "failed to apply CO")
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, http.StatusConflict, "CO already applied for this entry")
		return
	}

	entry.COApplied = true
	entry.COAppliedAt = &now
	entry.COVendor = vendor.Name

	prometheus.RecordCOTransition("applied")
	writeAudit(r, models.AuditUpdate, "entry", entry.ID.String(), &entry.BranchID, before, entry)
	respondJSON(w, http.StatusOK, entry)
}

// UploadCOPdf attaches the cleared CO document to an applied entry.
// Accepts multipart form data with a "file" part. Uploading completes
// the lifecycle; a completed entry conflicts.
func UploadCOPdf(w http.ResponseWriter, r *http.Request) {
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
	if !entry.COApplied {
		respondError(w, http.StatusConflict, "CO has not been applied for this entry")
		return
	}
	if entry.COPdfURL != "" {
		respondError(w, http.StatusConflict, "CO PDF already uploaded for this entry")
		return
	}

	if err := r.ParseMultipartForm(maxCOPdfSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".pdf" {
		respondFieldErrors(w, map[string]string{"file": "Only PDF files are accepted"})
		return
	}

	name := fmt.Sprintf("co_%s_%d%s", entry.ID, entry.SlNo, filepath.Ext(header.Filename))
	ref, err := docStore.Save(r.Context(), name, file)
	if err != nil {
		zap.L().Error("co pdf store failed", zap.Error(err), zap.String("entry", entry.ID.String()))
		respondError(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	now := time.Now()
	before := entry

	res := config.DB.Model(&models.Entry{}).
		Where("id = ? AND co_applied = ? AND co_pdf_url = ?", entry.ID, true, "").
		Updates(map[string]interface{}{
			"co_pdf_url":         ref,
			"co_pdf_uploaded_at": now,
		})
	if res.Error != nil {
		respondError(w, http.StatusInternalServerError, "failed to record document")
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, http.StatusConflict, "CO PDF already uploaded for this entry")
		return
	}

	entry.COPdfURL = ref
	entry.COPdfUploadedAt = &now

	prometheus.RecordCOTransition("uploaded")
	writeAudit(r, models.AuditUpdate, "entry", entry.ID.String(), &entry.BranchID, before, entry)
	respondJSON(w, http.StatusOK, entry)
}

// PendingCO lists applied entries still waiting for their document,
// oldest application first.
func PendingCO(w http.ResponseWriter, r *http.Request) {
	listCOQueue(w, r, false)
}

// CompletedCO lists entries whose document has been uploaded, most
// recent upload first.
func CompletedCO(w http.ResponseWriter, r *http.Request) {
	listCOQueue(w, r, true)
}

func listCOQueue(w http.ResponseWriter, r *http.Request, completed bool) {
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

	q := config.DB.Scopes(middleware.EntryScope(user)).Where("co_applied = ?", true)
	if completed {
		q = q.Where("co_pdf_url <> ''").Order("co_pdf_uploaded_at DESC")
	} else {
		q = q.Where("co_pdf_url = ''").Order("co_applied_at ASC")
	}

	// Listing filters apply, but the queue owns its ordering.
	q = filter.Where(q)

	var entries []models.Entry
	if err := q.Find(&entries).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load CO queue")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}
