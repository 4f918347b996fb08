package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"p9e.in/transportpro/config"
	"p9e.in/transportpro/middleware"
	"p9e.in/transportpro/models"
	"p9e.in/transportpro/pkg/logger"
)

// writeAudit records a mutating action. Audit failures are logged
// and swallowed: the mutation itself already committed.
func writeAudit(r *http.Request, action, entityType, entityID string, branchID *uuid.UUID, before, after interface{}) {
	log := models.AuditLog{
		Actor:      middleware.GetUsername(r),
		Role:       middleware.GetRole(r),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BranchID:   branchID,
	}

	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			log.Before = b
		}
	}
	if after != nil {
		if b, err := json.Marshal(after); err == nil {
			log.After = b
		}
	}

	if err := config.DB.Create(&log).Error; err != nil {
		logger.Get().Warn("audit log write failed",
			zap.String("action", action),
			zap.String("entity", entityType),
			zap.Error(err),
		)
	}
}

// ListAuditLogs returns the audit trail, newest first, paginated.
func ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	page := 1
	limit := 50

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 200 {
		limit = l
	}

	q := config.DB.Model(&models.AuditLog{})
	if entity := r.URL.Query().Get("entity"); entity != "" {
		q = q.Where("entity_type = ?", entity)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count audit logs")
		return
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&logs).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load audit logs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
