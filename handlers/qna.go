// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/candidbox/cliparse"
	"github.com/danielhkuo/candidbox/middleware"
	"github.com/danielhkuo/candidbox/models"
	"github.com/danielhkuo/candidbox/qna"
)

type QnAHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewQnAHandler(db *sql.DB, cfg cliparse.Config) *QnAHandler {
	return &QnAHandler{db: db, cfg: cfg}
}

// Answer handles POST /qna/{qnaId}/answer
func (h *QnAHandler) Answer(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.KindForbidden, "Invalid owner key")
		return
	}

	qnaID := r.PathValue("qnaId")

	var req models.AnswerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "Invalid JSON")
		return
	}

	entry, err := qna.Answer(h.db, qnaID, ownerID, req.AnswerText)
	if errors.Is(err, qna.ErrInvalidInput) {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "answer_text is required")
		return
	}
	if errors.Is(err, qna.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, models.KindNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to answer question", "qna_id", qnaID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to save answer")
		return
	}

	slog.Info("question answered", "qna_id", qnaID)
	middleware.JSONResponse(w, http.StatusOK, entry)
}

// List handles GET /qna
func (h *QnAHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.KindForbidden, "Invalid owner key")
		return
	}

	entries, err := qna.ListByOwner(h.db, ownerID)
	if err != nil {
		slog.Error("failed to list qna entries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to load questions")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}

// CheckVisitor handles POST /qna/check-visitor. The submission widget calls
// this to learn whether the current browser belongs to a signed-up owner,
// and failing that whether its anonymous visitor ID has submitted before.
func (h *QnAHandler) CheckVisitor(w http.ResponseWriter, r *http.Request) {
	var req models.CheckVisitorRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "Invalid JSON")
		return
	}

	if accountID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt); err == nil {
		middleware.JSONResponse(w, http.StatusOK, models.CheckVisitorResponse{
			IsSignedUp: true,
			AccountID:  accountID,
		})
		return
	}

	if req.VisitorID != "" {
		var n int
		err := h.db.QueryRow(`SELECT COUNT(*) FROM message WHERE visitor_id = $1`, req.VisitorID).Scan(&n)
		if err != nil {
			slog.Error("failed to check visitor", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to check visitor")
			return
		}
		if n > 0 {
			middleware.JSONResponse(w, http.StatusOK, models.CheckVisitorResponse{KnownVisitor: true})
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.CheckVisitorResponse{})
}

// PublicAnswers handles GET /qna/answers?username=
func (h *QnAHandler) PublicAnswers(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "username is required")
		return
	}

	entries, err := qna.PublicAnswered(h.db, username)
	if errors.Is(err, qna.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, models.KindNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to load public answers", "username", username, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to load answers")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}
