package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/transportpro/config"
	"p9e.in/transportpro/models"
)

type createUserReq struct {
	Username          string   `json:"username"`
	Password          string   `json:"password"`
	Role              string   `json:"role"`
	BranchID          string   `json:"branchId"`
	AssignedBranchIDs []string `json:"assignedBranchIds"`
}

// CreateUser creates an account. Admins are bound to an existing
// branch by foreign key; super admins carry a validated list of
// branch ids; at most one sub super admin may exist.
func CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	fields := map[string]string{}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		fields["username"] = "Username is required"
	}
	if strings.TrimSpace(req.Password) == "" {
		fields["password"] = "Password is required"
	}
	if !models.ValidRole(req.Role) {
		fields["role"] = "Unknown role"
	}
	if req.Role == models.RoleAdmin && req.BranchID == "" {
		fields["branchId"] = "Admin accounts require a branch"
	}
	if len(fields) > 0 {
		respondFieldErrors(w, fields)
		return
	}

	var count int64
	if err := config.DB.Model(&models.User{}).
		Where("LOWER(username) = ?", models.NormalizeUsername(username)).
		Count(&count).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check username")
		return
	}
	if count > 0 {
		respondError(w, http.StatusConflict, "Username already exists")
		return
	}

	if req.Role == models.RoleSubSuperAdmin {
		if err := config.DB.Model(&models.User{}).
			Where("role = ?", models.RoleSubSuperAdmin).
			Count(&count).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "failed to check role")
			return
		}
		if count > 0 {
			respondError(w, http.StatusConflict, "Only one Sub Super Admin is allowed")
			return
		}
	}

	user := models.User{Username: username, Role: req.Role}

	if req.Role == models.RoleAdmin {
		branchID, err := uuid.Parse(req.BranchID)
		if err != nil {
			respondFieldErrors(w, map[string]string{"branchId": "Invalid branch ID"})
			return
		}
		var branch models.Branch
		if err := config.DB.First(&branch, "id = ?", branchID).Error; err != nil {
			respondError(w, http.StatusNotFound, "branch not found")
			return
		}
		user.BranchID = &branchID
	}

	if req.Role == models.RoleSuperAdmin {
		assigned := models.StringArray{}
		for _, raw := range req.AssignedBranchIDs {
			branchID, err := uuid.Parse(raw)
			if err != nil {
				respondFieldErrors(w, map[string]string{"assignedBranchIds": "Invalid branch ID " + raw})
				return
			}
			var branch models.Branch
			if err := config.DB.First(&branch, "id = ?", branchID).Error; err != nil {
				respondError(w, http.StatusNotFound, "branch "+raw+" not found")
				return
			}
			assigned = append(assigned, branchID.String())
		}
		user.AssignedBranchIDs = assigned
	}

	if err := user.SetPassword(req.Password); err != nil {
		respondError(w, http.StatusInternalServerError, "error hashing password")
		return
	}

	if err := config.DB.Create(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeAudit(r, models.AuditCreate, "user", user.ID.String(), user.BranchID, nil, user)
	respondJSON(w, http.StatusCreated, user)
}

// ListUsers returns all accounts except ultra admins.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := config.DB.Where("role <> ?", models.RoleUltraAdmin).
		Order("created_at").Find(&users).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// DeleteUser removes an account. Ultra admin accounts cannot be
// deleted through the API.
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	if user.Role == models.RoleUltraAdmin {
		respondError(w, http.StatusForbidden, "cannot delete an ultra admin")
		return
	}

	if err := config.DB.Delete(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	writeAudit(r, models.AuditDelete, "user", id.String(), user.BranchID, user, nil)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type updateUserBranchesReq struct {
	AssignedBranchIDs []string `json:"assignedBranchIds"`
}

// UpdateUserBranches replaces a super admin's assigned branch list.
func UpdateUserBranches(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req updateUserBranchesReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	if user.Role != models.RoleSuperAdmin {
		respondError(w, http.StatusUnprocessableEntity, "only super admin accounts carry assigned branches")
		return
	}

	assigned := models.StringArray{}
	for _, raw := range req.AssignedBranchIDs {
		branchID, err := uuid.Parse(raw)
		if err != nil {
			respondFieldErrors(w, map[string]string{"assignedBranchIds": "Invalid branch ID " + raw})
			return
		}
		var branch models.Branch
		if err := config.DB.First(&branch, "id = ?", branchID).Error; err != nil {
			respondError(w, http.StatusNotFound, "branch "+raw+" not found")
			return
		}
		assigned = append(assigned, branchID.String())
	}

	before := user
	user.AssignedBranchIDs = assigned
	if err := config.DB.Save(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	writeAudit(r, models.AuditUpdate, "user", id.String(), nil, before, user)
	respondJSON(w, http.StatusOK, user)
}
