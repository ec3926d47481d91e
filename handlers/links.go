// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/candidbox/analytics"
	"github.com/danielhkuo/candidbox/auth"
	"github.com/danielhkuo/candidbox/cliparse"
	"github.com/danielhkuo/candidbox/lifecycle"
	"github.com/danielhkuo/candidbox/middleware"
	"github.com/danielhkuo/candidbox/models"
)

type LinkHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	rec *analytics.Recorder
}

func NewLinkHandler(db *sql.DB, cfg cliparse.Config, rec *analytics.Recorder) *LinkHandler {
	return &LinkHandler{db: db, cfg: cfg, rec: rec}
}

// Create handles POST /links
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.KindForbidden, "Invalid owner key")
		return
	}

	var req models.CreateLinkRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "Invalid JSON")
		return
	}

	link, err := lifecycle.CreateLink(h.db, lifecycle.CreateParams{
		OwnerID:        ownerID,
		Mode:           req.Mode,
		ExpiresInHours: req.ExpiresInHours,
		MaxUses:        req.MaxUses,
		Title:          req.Title,
		Description:    req.Description,
	})
	if errors.Is(err, lifecycle.ErrInvalidInput) {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "mode must be message, qa, or poll")
		return
	}
	if err != nil {
		slog.Error("failed to create link", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to create link")
		return
	}

	expiry := "never"
	if link.ExpiresAt != nil {
		expiry = humanize.Time(*link.ExpiresAt)
	}
	slog.Info("link created", "link_id", link.LinkID, "mode", link.Mode, "expires", expiry)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateLinkResponse{
		LinkID: link.LinkID,
		URL:    h.cfg.BaseURL + "/links/" + link.LinkID,
	})
}

// List handles GET /links
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.KindForbidden, "Invalid owner key")
		return
	}

	rows, err := h.db.Query(`
		SELECT link_id, owner_id, mode, title, description, expires_at, max_uses, uses_count, is_active, created_at
		FROM link
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		slog.Error("failed to query links", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to load links")
		return
	}
	defer rows.Close()

	links := []models.Link{}
	for rows.Next() {
		var link models.Link
		var expiresAt sql.NullTime
		var maxUses sql.NullInt64
		err := rows.Scan(
			&link.LinkID, &link.OwnerID, &link.Mode, &link.Title, &link.Description,
			&expiresAt, &maxUses, &link.UsesCount, &link.IsActive, &link.CreatedAt,
		)
		if err != nil {
			slog.Error("failed to scan link", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to load links")
			return
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			link.ExpiresAt = &t
		}
		if maxUses.Valid {
			n := int(maxUses.Int64)
			link.MaxUses = &n
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read links", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to load links")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, links)
}

// Resolve handles GET /links/{linkId}. This is the public entry point a
// visitor hits before submitting, so it also emits a visit event.
func (h *LinkHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	linkID := r.PathValue("linkId")

	c, err := lifecycle.ResolveForConsumption(h.db, linkID)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}

	h.rec.Record(analytics.Event{
		OwnerID:    c.Owner.ID,
		LinkID:     c.Link.LinkID,
		EventType:  models.EventVisit,
		Page:       "/links/" + linkID,
		DeviceType: analytics.DeviceType(r.UserAgent()),
		IPHash:     auth.HashIP(middleware.GetClientIP(r), h.cfg.VisitorSalt),
	})

	middleware.JSONResponse(w, http.StatusOK, models.ResolveLinkResponse{
		LinkID:      c.Link.LinkID,
		Username:    c.Owner.Username,
		Mode:        c.Link.Mode,
		Title:       c.Link.Title,
		Description: c.Link.Description,
		ExpiresAt:   c.Link.ExpiresAt,
		MaxUses:     c.Link.MaxUses,
		UsesCount:   c.Link.UsesCount,
		PollID:      c.PollID,
	})
}

// RecordUse handles POST /links/{linkId}/uses
func (h *LinkHandler) RecordUse(w http.ResponseWriter, r *http.Request) {
	linkID := r.PathValue("linkId")

	err := lifecycle.RecordUse(h.db, linkID)
	if errors.Is(err, lifecycle.ErrNotFound) || errors.Is(err, lifecycle.ErrLimitReached) {
		writeLifecycleError(w, err)
		return
	}
	if err != nil {
		slog.Error("failed to record link use", "link_id", linkID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to record use")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.RecordUseResponse{OK: true})
}

// Deactivate handles POST /links/{linkId}/deactivate
func (h *LinkHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.KindForbidden, "Invalid owner key")
		return
	}

	linkID := r.PathValue("linkId")

	err = lifecycle.Deactivate(h.db, linkID, ownerID)
	if errors.Is(err, lifecycle.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, models.KindNotFound, "Link not found")
		return
	}
	if errors.Is(err, lifecycle.ErrForbidden) {
		middleware.ErrorResponse(w, http.StatusForbidden, models.KindForbidden, "You do not own this link")
		return
	}
	if err != nil {
		slog.Error("failed to deactivate link", "link_id", linkID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to deactivate link")
		return
	}

	slog.Info("link deactivated", "link_id", linkID)
	middleware.JSONResponse(w, http.StatusOK, models.RecordUseResponse{OK: true})
}

// writeLifecycleError maps the lifecycle sentinels onto HTTP responses.
// Expired and exhausted links are fully rejected; visitors get a reason but
// never the link metadata.
func writeLifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, models.KindNotFound, "Link not found")
	case errors.Is(err, lifecycle.ErrExpired):
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindExpired, "Link has expired")
	case errors.Is(err, lifecycle.ErrLimitReached):
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindLimitReached, "Link has reached its maximum uses")
	case errors.Is(err, lifecycle.ErrNotAccepting):
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindNotAccepting, "This user is not accepting messages right now")
	default:
		slog.Error("failed to resolve link", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to resolve link")
	}
}
