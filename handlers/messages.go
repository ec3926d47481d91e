// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/candidbox/analytics"
	"github.com/danielhkuo/candidbox/auth"
	"github.com/danielhkuo/candidbox/cliparse"
	"github.com/danielhkuo/candidbox/lifecycle"
	"github.com/danielhkuo/candidbox/middleware"
	"github.com/danielhkuo/candidbox/models"
	"github.com/danielhkuo/candidbox/moderation"
	"github.com/danielhkuo/candidbox/qna"
)

const maxMessageLength = 2000

// flagThreshold marks a message for owner review without rejecting it.
const flagThreshold = 0.5

type MessageHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	mod moderation.Checker
	rec *analytics.Recorder
}

func NewMessageHandler(db *sql.DB, cfg cliparse.Config, mod moderation.Checker, rec *analytics.Recorder) *MessageHandler {
	return &MessageHandler{db: db, cfg: cfg, mod: mod, rec: rec}
}

// Send handles POST /links/{linkId}/messages.
//
// The message insert and the link-use increment share one transaction: when
// two visitors race for a link's last remaining use, the loser's conditional
// increment fails and their message rolls back with it, so the stored
// messages and uses_count always match.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	linkID := r.PathValue("linkId")

	c, err := lifecycle.ResolveForConsumption(h.db, linkID)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	if c.Link.Mode != models.ModeMessage && c.Link.Mode != models.ModeQA {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "This link does not accept messages")
		return
	}

	var req models.SendMessageRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "Invalid JSON")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "content is required")
		return
	}
	if len(content) > maxMessageLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "content is too long")
		return
	}

	verdict := h.mod.Check(r.Context(), content)
	if !verdict.Safe || verdict.Toxicity >= h.cfg.ModerationThreshold {
		slog.Info("message blocked by moderation", "link_id", linkID, "toxicity", verdict.Toxicity, "method", verdict.Method)
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "Message rejected by content moderation")
		return
	}
	flagged := verdict.Toxicity >= flagThreshold

	messageID := uuid.NewString()

	var visitorID *string
	if req.VisitorID != "" {
		visitorID = &req.VisitorID
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to send message")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO message (id, owner_id, link_id, content, is_flagged, toxicity, categories, visitor_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, messageID, c.Owner.ID, linkID, content, flagged, verdict.Toxicity,
		strings.Join(verdict.Categories, ","), visitorID, models.MessageStatusNew, time.Now())
	if err != nil {
		slog.Error("failed to insert message", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to send message")
		return
	}

	// A racer that passed the usability pre-check but loses the conditional
	// increment gets the same response as a non-racy rejection.
	err = lifecycle.RecordUse(tx, linkID)
	if errors.Is(err, lifecycle.ErrNotFound) || errors.Is(err, lifecycle.ErrLimitReached) {
		writeLifecycleError(w, err)
		return
	}
	if err != nil {
		slog.Error("failed to record link use", "link_id", linkID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to send message")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit message", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to send message")
		return
	}

	// Q&A mirroring is best-effort: the message is already stored, so a
	// mirror failure is logged and the visitor still gets their receipt.
	if c.Link.Mode == models.ModeQA && c.Owner.QAEnabled {
		if _, err := qna.Mirror(h.db, c.Owner.ID, linkID, messageID, content, req.VisitorID); err != nil {
			slog.Warn("failed to mirror message into qna", "message_id", messageID, "error", err)
		}
	}

	h.rec.Record(analytics.Event{
		OwnerID:    c.Owner.ID,
		LinkID:     linkID,
		VisitorID:  req.VisitorID,
		EventType:  models.EventSubmit,
		Page:       "/links/" + linkID,
		DeviceType: analytics.DeviceType(r.UserAgent()),
		IPHash:     auth.HashIP(middleware.GetClientIP(r), h.cfg.VisitorSalt),
	})

	slog.Info("message received", "message_id", messageID, "link_id", linkID, "flagged", flagged)

	middleware.JSONResponse(w, http.StatusCreated, models.SendMessageResponse{
		MessageID: messageID,
		Message:   "Message sent",
	})
}

// List handles GET /messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.KindForbidden, "Invalid owner key")
		return
	}

	messages, err := h.loadInbox(ownerID)
	if err != nil {
		slog.Error("failed to load messages", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to load messages")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, messages)
}

// Export handles GET /messages/export. Owners can download their inbox as
// a JSON or CSV attachment (?format=csv); JSON is the default.
func (h *MessageHandler) Export(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.KindForbidden, "Invalid owner key")
		return
	}

	var username string
	if err := h.db.QueryRow(`SELECT username FROM account WHERE id = $1`, ownerID).Scan(&username); err != nil {
		slog.Error("failed to load account for export", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to export messages")
		return
	}

	messages, err := h.loadInbox(ownerID)
	if err != nil {
		slog.Error("failed to load messages for export", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to export messages")
		return
	}

	filename := fmt.Sprintf("messages-%d", time.Now().UnixMilli())

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		cw := csv.NewWriter(w)
		cw.Write([]string{"Content", "Date", "Categories", "Status", "Flagged"})
		for _, m := range messages {
			cw.Write([]string{
				m.Content,
				m.CreatedAt.UTC().Format(time.RFC3339),
				strings.Join(m.Categories, ";"),
				m.Status,
				strconv.FormatBool(m.IsFlagged),
			})
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			slog.Error("failed to write csv export", "error", err)
		}
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.json"`)
	middleware.JSONResponse(w, http.StatusOK, models.MessageExportResponse{
		Username:      username,
		ExportDate:    time.Now().UTC(),
		TotalMessages: len(messages),
		Messages:      messages,
	})
}

func (h *MessageHandler) loadInbox(ownerID string) ([]models.Message, error) {
	rows, err := h.db.Query(`
		SELECT id, owner_id, link_id, content, is_flagged, toxicity, categories, visitor_id, status, created_at
		FROM message
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		var linkID, visitorID sql.NullString
		var categories string
		err := rows.Scan(
			&m.ID, &m.OwnerID, &linkID, &m.Content, &m.IsFlagged,
			&m.Toxicity, &categories, &visitorID, &m.Status, &m.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if linkID.Valid {
			v := linkID.String
			m.LinkID = &v
		}
		if visitorID.Valid {
			v := visitorID.String
			m.VisitorID = &v
		}
		if categories != "" {
			m.Categories = strings.Split(categories, ",")
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
