// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/candidbox/analytics"
	"github.com/danielhkuo/candidbox/auth"
	"github.com/danielhkuo/candidbox/cliparse"
	"github.com/danielhkuo/candidbox/middleware"
	"github.com/danielhkuo/candidbox/models"
	"github.com/danielhkuo/candidbox/tally"
)

type PollHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	rec *analytics.Recorder
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config, rec *analytics.Recorder) *PollHandler {
	return &PollHandler{db: db, cfg: cfg, rec: rec}
}

// Create handles POST /polls
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.KindForbidden, "Invalid owner key")
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "Invalid JSON")
		return
	}

	// A poll may be attached to one of the owner's poll-mode links so that
	// resolving the link leads straight to it.
	if req.LinkID != "" {
		var linkOwner, mode string
		err := h.db.QueryRow(`
			SELECT owner_id, mode FROM link WHERE link_id = $1
		`, req.LinkID).Scan(&linkOwner, &mode)
		if err == sql.ErrNoRows || (err == nil && linkOwner != ownerID) {
			middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "link_id does not refer to one of your links")
			return
		}
		if err != nil {
			slog.Error("failed to query link for poll", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to create poll")
			return
		}
		if mode != models.ModePoll {
			middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "link is not in poll mode")
			return
		}
	}

	poll, err := tally.CreatePoll(h.db, tally.CreateParams{
		OwnerID:        ownerID,
		Question:       req.Question,
		OptionLabels:   req.Options,
		AllowMultiple:  req.AllowMultiple,
		ExpiresInHours: req.ExpiresInHours,
		LinkID:         req.LinkID,
	})
	if errors.Is(err, tally.ErrInvalidInput) {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "a poll needs a question and at least two options")
		return
	}
	if err != nil {
		slog.Error("failed to create poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to create poll")
		return
	}

	expiry := "never"
	if poll.ExpiresAt != nil {
		expiry = humanize.Time(*poll.ExpiresAt)
	}
	slog.Info("poll created", "poll_id", poll.PollID, "options", len(poll.Options), "expires", expiry)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID: poll.PollID,
		URL:    h.cfg.BaseURL + "/polls/" + poll.PollID + "/results",
	})
}

// List handles GET /polls
func (h *PollHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.KindForbidden, "Invalid owner key")
		return
	}

	rows, err := h.db.Query(`
		SELECT poll_id, owner_id, link_id, question, allow_multiple, expires_at, is_active, created_at
		FROM poll
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		slog.Error("failed to query polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to load polls")
		return
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		var p models.Poll
		var linkID sql.NullString
		var expiresAt sql.NullTime
		err := rows.Scan(
			&p.PollID, &p.OwnerID, &linkID, &p.Question,
			&p.AllowMultiple, &expiresAt, &p.IsActive, &p.CreatedAt,
		)
		if err != nil {
			slog.Error("failed to scan poll", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to load polls")
			return
		}
		if linkID.Valid {
			v := linkID.String
			p.LinkID = &v
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			p.ExpiresAt = &t
			p.IsActive = p.IsActive && time.Now().Before(t)
		}
		polls = append(polls, p)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to load polls")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// Vote handles POST /polls/{pollId}/votes
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("pollId")

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "option_id is required")
		return
	}

	resp, err := tally.Vote(h.db, pollID, req.OptionID, req.VisitorID)
	switch {
	case errors.Is(err, tally.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, models.KindNotFound, "Poll not found")
		return
	case errors.Is(err, tally.ErrExpired):
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindExpired, "Poll has expired")
		return
	case errors.Is(err, tally.ErrInvalidOption):
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidOption, "No such option")
		return
	case errors.Is(err, tally.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindAlreadyVoted, "You have already voted in this poll")
		return
	case err != nil:
		slog.Error("failed to record vote", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to record vote")
		return
	}

	var ownerID string
	if err := h.db.QueryRow(`SELECT owner_id FROM poll WHERE poll_id = $1`, pollID).Scan(&ownerID); err != nil {
		ownerID = ""
	}
	h.rec.Record(analytics.Event{
		OwnerID:    ownerID,
		VisitorID:  req.VisitorID,
		EventType:  models.EventVote,
		Page:       "/polls/" + pollID,
		DeviceType: analytics.DeviceType(r.UserAgent()),
		IPHash:     auth.HashIP(middleware.GetClientIP(r), h.cfg.VisitorSalt),
	})

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Results handles GET /polls/{pollId}/results
func (h *PollHandler) Results(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("pollId")

	resp, err := tally.Results(h.db, pollID)
	if errors.Is(err, tally.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, models.KindNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll results", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to load results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
