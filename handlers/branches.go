package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/transportpro/config"
	"p9e.in/transportpro/middleware"
	"p9e.in/transportpro/models"
)

type createBranchReq struct {
	Name    string   `json:"name"`
	Vendors []string `json:"vendors"`
}

// CreateBranch creates a branch with its initial vendor list. Branch
// names are unique case-insensitively.
func CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req createBranchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondFieldErrors(w, map[string]string{"name": "Branch name is required"})
		return
	}

	var count int64
	if err := config.DB.Model(&models.Branch{}).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Count(&count).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check branch name")
		return
	}
	if count > 0 {
		respondError(w, http.StatusConflict, "Branch name already exists")
		return
	}

	branch := models.Branch{Name: name}
	for _, vn := range req.Vendors {
		vn = strings.TrimSpace(vn)
		if vn == "" || branch.HasVendorNamed(vn) {
			continue
		}
		branch.Vendors = append(branch.Vendors, models.Vendor{Name: vn})
	}

	if err := config.DB.Create(&branch).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create branch")
		return
	}

	writeAudit(r, models.AuditCreate, "branch", branch.ID.String(), &branch.ID, nil, branch)
	respondJSON(w, http.StatusCreated, branch)
}

// ListBranches returns the branches visible to the caller's role.
func ListBranches(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var branches []models.Branch
	if err := config.DB.Preload("Vendors").Order("name").Find(&branches).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load branches")
		return
	}

	visible := make([]models.Branch, 0, len(branches))
	for _, b := range branches {
		if user.CanSeeBranch(b.ID) {
			visible = append(visible, b)
		}
	}

	respondJSON(w, http.StatusOK, visible)
}

// GetBranchVendors is a pure lookup; a missing branch yields an
// empty list, not an error.
func GetBranchVendors(w http.ResponseWriter, r *http.Request) {
	branchID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	user, ok := middleware.GetUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if !user.CanSeeBranch(branchID) {
		respondError(w, http.StatusForbidden, "branch outside your scope")
		return
	}

	vendors := []models.Vendor{}
	if err := config.DB.Where("branch_id = ?", branchID).Order("name").Find(&vendors).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load vendors")
		return
	}

	respondJSON(w, http.StatusOK, vendors)
}

// DeleteBranch removes a branch and cascades to its vendors, its
// admin users and its entries in one transaction. Irreversible.
func DeleteBranch(w http.ResponseWriter, r *http.Request) {
	branchID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	var branch models.Branch
	if err := config.DB.Preload("Vendors").First(&branch, "id = ?", branchID).Error; err != nil {
		respondError(w, http.StatusNotFound, "branch not found")
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("branch_id = ?", branchID).Delete(&models.Entry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("branch_id = ?", branchID).Delete(&models.User{}).Error; err != nil {
			return err
		}
		if err := tx.Where("branch_id = ?", branchID).Delete(&models.Vendor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Branch{}, "id = ?", branchID).Error
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete branch")
		return
	}

	writeAudit(r, models.AuditDelete, "branch", branchID.String(), &branchID, branch, nil)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type addVendorReq struct {
	Name string `json:"name"`
}

// AddVendor attaches a vendor to a branch. Duplicate names within
// the branch are rejected case-insensitively.
func AddVendor(w http.ResponseWriter, r *http.Request) {
	branchID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	var req addVendorReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondFieldErrors(w, map[string]string{"name": "Vendor name is required"})
		return
	}

	var branch models.Branch
	if err := config.DB.Preload("Vendors").First(&branch, "id = ?", branchID).Error; err != nil {
		respondError(w, http.StatusNotFound, "branch not found")
		return
	}
	if branch.HasVendorNamed(name) {
		respondError(w, http.StatusConflict, "Vendor name already exists in this branch")
		return
	}

	vendor := models.Vendor{Name: name, BranchID: branchID}
	if err := config.DB.Create(&vendor).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create vendor")
		return
	}

	writeAudit(r, models.AuditCreate, "vendor", vendor.ID.String(), &branchID, nil, vendor)
	respondJSON(w, http.StatusCreated, vendor)
}

// DeleteVendor removes one vendor from a branch's list.
func DeleteVendor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	branchID, err := uuid.Parse(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}
	vendorID, err := uuid.Parse(vars["vendorId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid vendor ID")
		return
	}

	var vendor models.Vendor
	if err := config.DB.First(&vendor, "id = ? AND branch_id = ?", vendorID, branchID).Error; err != nil {
		respondError(w, http.StatusNotFound, "vendor not found")
		return
	}

	if err := config.DB.Delete(&vendor).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete vendor")
		return
	}

	writeAudit(r, models.AuditDelete, "vendor", vendorID.String(), &branchID, vendor, nil)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
