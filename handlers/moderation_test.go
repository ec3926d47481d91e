// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/candidbox/models"
	"github.com/danielhkuo/candidbox/moderation"
	"github.com/danielhkuo/candidbox/testutil"
)

func TestModerationCheckHandler(t *testing.T) {
	h := NewModerationHandler(moderation.New(""))

	t.Run("clean text", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/moderation/check", models.ModerationCheckRequest{
			Text: "have a lovely day",
		}, nil)
		w := httptest.NewRecorder()
		h.Check(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ModerationCheckResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.Safe {
			t.Errorf("Expected clean text to be safe: %+v", resp)
		}
	})

	t.Run("toxic text", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/moderation/check", models.ModerationCheckRequest{
			Text: "I hate everything about this",
		}, nil)
		w := httptest.NewRecorder()
		h.Check(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ModerationCheckResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Safe {
			t.Errorf("Expected toxic text to be unsafe: %+v", resp)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/moderation/check", models.ModerationCheckRequest{}, nil)
		w := httptest.NewRecorder()
		h.Check(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}
