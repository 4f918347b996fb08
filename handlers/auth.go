// handlers/auth.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"p9e.in/transportpro/config"
	"p9e.in/transportpro/middleware"
	"p9e.in/transportpro/models"
	"p9e.in/transportpro/prometheus"
)

// loginLimiter locks a username out for 15 minutes after 5
// consecutive failures.
var loginLimiter = middleware.NewLoginLimiter(5, 15*time.Minute)

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID                string   `json:"id"`
	Username          string   `json:"username"`
	Role              string   `json:"role"`
	BranchID          string   `json:"branchId,omitempty"`
	AssignedBranchIDs []string `json:"assignedBranchIds,omitempty"`
}

func toUserPayload(u models.User) userPayload {
	p := userPayload{
		ID:                u.ID.String(),
		Username:          u.Username,
		Role:              u.Role,
		AssignedBranchIDs: []string(u.AssignedBranchIDs),
	}
	if u.BranchID != nil {
		p.BranchID = u.BranchID.String()
	}
	return p
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if prometheus.AuthAttemptsCounter != nil {
		prometheus.AuthAttemptsCounter.Inc()
	}

	username := models.NormalizeUsername(req.Username)
	if !loginLimiter.Allowed(username) {
		if prometheus.AuthLockoutCounter != nil {
			prometheus.AuthLockoutCounter.Inc()
		}
		respondError(w, http.StatusLocked, "Too many failed attempts, try again later")
		return
	}

	var u models.User
	err := config.DB.Where("LOWER(username) = ?", username).First(&u).Error
	if err != nil || !u.CheckPassword(req.Password) {
		loginLimiter.RecordFailure(username)
		if prometheus.AuthFailureCounter != nil {
			prometheus.AuthFailureCounter.Inc()
		}
		respondError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := middleware.GenerateToken(u.ID.String(), u.Username, u.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "couldn't create token")
		return
	}

	loginLimiter.RecordSuccess(username)
	if prometheus.AuthSuccessCounter != nil {
		prometheus.AuthSuccessCounter.Inc()
	}

	respondJSON(w, http.StatusOK, loginResp{Token: token, User: toUserPayload(u)})
}

// Profile returns the session projection of the current user.
func Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, toUserPayload(user))
}
