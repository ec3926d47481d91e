// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/danielhkuo/candidbox/middleware"
	"github.com/danielhkuo/candidbox/models"
	"github.com/danielhkuo/candidbox/moderation"
)

type ModerationHandler struct {
	mod moderation.Checker
}

func NewModerationHandler(mod moderation.Checker) *ModerationHandler {
	return &ModerationHandler{mod: mod}
}

// Check handles POST /moderation/check. It exposes the same verdict the
// message pipeline uses, so clients can pre-check text before submitting.
func (h *ModerationHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req models.ModerationCheckRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.KindInvalidInput, "text is required")
		return
	}

	verdict := h.mod.Check(r.Context(), req.Text)

	middleware.JSONResponse(w, http.StatusOK, models.ModerationCheckResponse{
		Safe:       verdict.Safe,
		Toxicity:   verdict.Toxicity,
		Categories: verdict.Categories,
		Method:     verdict.Method,
	})
}
