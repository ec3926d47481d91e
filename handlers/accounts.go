// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/danielhkuo/candidbox/auth"
	"github.com/danielhkuo/candidbox/cliparse"
	"github.com/danielhkuo/candidbox/db"
	"github.com/danielhkuo/candidbox/middleware"
	"github.com/danielhkuo/candidbox/models"
)

type AccountHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAccountHandler(db *sql.DB, cfg cliparse.Config) *AccountHandler {
	return &AccountHandler{db: db, cfg: cfg}
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,32}$`)

// Register handles POST /accounts
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterAccountRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "Invalid JSON")
		return
	}

	if !usernamePattern.MatchString(req.Username) {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "username must be 3-32 characters: letters, digits, underscore, hyphen")
		return
	}

	accountID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate account ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to create account")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO account (id, username, accept_messages, qa_enabled, analytics_opt_in, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, accountID, req.Username, true, false, true, time.Now())

	if db.IsUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusConflict, models.KindConflict, "username is already taken")
		return
	}
	if err != nil {
		slog.Error("failed to insert account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to create account")
		return
	}

	ownerKey := auth.GenerateOwnerKey(accountID, h.cfg.OwnerKeySalt)

	slog.Info("account registered", "account_id", accountID, "username", req.Username)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterAccountResponse{
		AccountID: accountID,
		Username:  req.Username,
		OwnerKey:  ownerKey,
	})
}

// GetMe handles GET /accounts/me
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	accountID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.KindForbidden, "Invalid owner key")
		return
	}

	var account models.Account
	err = h.db.QueryRow(`
		SELECT id, username, accept_messages, qa_enabled, analytics_opt_in, created_at
		FROM account
		WHERE id = $1
	`, accountID).Scan(
		&account.ID, &account.Username, &account.AcceptMessages,
		&account.QAEnabled, &account.AnalyticsOptIn, &account.CreatedAt,
	)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, models.KindNotFound, "Account not found")
		return
	}
	if err != nil {
		slog.Error("failed to query account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to load account")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, account)
}

// UpdateSettings handles POST /accounts/me/settings. Only fields present in
// the request body change; omitted fields keep their stored value.
func (h *AccountHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	accountID, err := ownerFromRequest(r, h.cfg.OwnerKeySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.KindForbidden, "Invalid owner key")
		return
	}

	var req models.UpdateSettingsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "Invalid JSON")
		return
	}

	if req.AcceptMessages == nil && req.QAEnabled == nil && req.AnalyticsOptIn == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "no settings to update")
		return
	}

	if req.AcceptMessages != nil {
		if _, err := h.db.Exec(`UPDATE account SET accept_messages = $1 WHERE id = $2`, *req.AcceptMessages, accountID); err != nil {
			slog.Error("failed to update accept_messages", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to update settings")
			return
		}
	}
	if req.QAEnabled != nil {
		if _, err := h.db.Exec(`UPDATE account SET qa_enabled = $1 WHERE id = $2`, *req.QAEnabled, accountID); err != nil {
			slog.Error("failed to update qa_enabled", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to update settings")
			return
		}
	}
	if req.AnalyticsOptIn != nil {
		if _, err := h.db.Exec(`UPDATE account SET analytics_opt_in = $1 WHERE id = $2`, *req.AnalyticsOptIn, accountID); err != nil {
			slog.Error("failed to update analytics_opt_in", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "Failed to update settings")
			return
		}
	}

	h.GetMe(w, r)
}
