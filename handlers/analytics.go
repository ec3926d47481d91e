// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/candidbox/analytics"
	"github.com/danielhkuo/candidbox/auth"
	"github.com/danielhkuo/candidbox/cliparse"
	"github.com/danielhkuo/candidbox/middleware"
	"github.com/danielhkuo/candidbox/models"
)

type AnalyticsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	rec *analytics.Recorder
}

func NewAnalyticsHandler(db *sql.DB, cfg cliparse.Config, rec *analytics.Recorder) *AnalyticsHandler {
	return &AnalyticsHandler{db: db, cfg: cfg, rec: rec}
}

// SubmitEvent handles POST /analytics/events. Events may name the owner by
// username (page views on a public profile) or by link.
func (h *AnalyticsHandler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyticsEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "Invalid JSON")
		return
	}

	switch req.EventType {
	case models.EventVisit, models.EventSubmit, models.EventVote:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "event_type must be visit, submit, or vote")
		return
	}

	var ownerID string
	if req.Username != "" {
		err := h.db.QueryRow(`
			SELECT id FROM account WHERE username = $1
		`, req.Username).Scan(&ownerID)
		if err != nil && err != sql.ErrNoRows {
			slog.Error("failed to resolve username for event", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to record event")
			return
		}
	}
	if ownerID == "" && req.LinkID != "" {
		err := h.db.QueryRow(`
			SELECT owner_id FROM link WHERE link_id = $1
		`, req.LinkID).Scan(&ownerID)
		if err != nil && err != sql.ErrNoRows {
			slog.Error("failed to resolve link for event", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to record event")
			return
		}
	}

	// The sink itself stays synchronous here so the insert either lands or
	// reports; opted-out owners' events are silently skipped.
	err := h.rec.RecordSync(analytics.Event{
		OwnerID:    ownerID,
		LinkID:     req.LinkID,
		VisitorID:  req.VisitorID,
		EventType:  req.EventType,
		Page:       req.Page,
		DeviceType: analytics.DeviceType(r.UserAgent()),
		IPHash:     auth.HashIP(middleware.GetClientIP(r), h.cfg.VisitorSalt),
	})
	if err != nil {
		slog.Error("failed to record event", "event_type", req.EventType, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to record event")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.RecordUseResponse{OK: true})
}

// Overview handles GET /analytics/overview
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.KindForbidden, "Invalid owner key")
		return
	}

	resp, err := h.rec.Overview(ownerID)
	if err != nil {
		slog.Error("failed to aggregate analytics", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to load analytics")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
