package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"p9e.in/transportpro/config"
	"p9e.in/transportpro/middleware"
	"p9e.in/transportpro/models"
	"p9e.in/transportpro/utils"
)

// Analytics aggregates the entries visible to the caller under the
// active filters. The same scope and filter rules as the listing
// apply, so the numbers always match what the caller can see.
func Analytics(w http.ResponseWriter, r *http.Request) {
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
	q := filter.Where(config.DB.Scopes(middleware.EntryScope(user)))
	if err := q.Find(&entries).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load entries")
		return
	}

	respondJSON(w, http.StatusOK, utils.ComputeAnalytics(entries, branchNameMap()))
}

func branchNameMap() map[uuid.UUID]string {
	var branches []models.Branch
	names := map[uuid.UUID]string{}
	if err := config.DB.Find(&branches).Error; err != nil {
		return names
	}
	for _, b := range branches {
		names[b.ID] = b.Name
	}
	return names
}
