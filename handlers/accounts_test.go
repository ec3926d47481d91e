// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/candidbox/auth"
	"github.com/danielhkuo/candidbox/models"
	"github.com/danielhkuo/candidbox/testutil"
)

func TestRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewAccountHandler(db, cfg)

	t.Run("success", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/accounts", models.RegisterAccountRequest{Username: "fresh_user"}, nil)
		w := httptest.NewRecorder()
		h.Register(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.RegisterAccountResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Username != "fresh_user" {
			t.Errorf("Expected username fresh_user, got %s", resp.Username)
		}
		if err := auth.ValidateOwnerKey(resp.AccountID, resp.OwnerKey, cfg.OwnerKeySalt); err != nil {
			t.Errorf("Minted owner key does not validate: %v", err)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/accounts", models.RegisterAccountRequest{Username: "fresh_user"}, nil)
		w := httptest.NewRecorder()
		h.Register(w, req)

		testutil.AssertStatus(t, w, http.StatusConflict)

		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Error != models.KindConflict {
			t.Errorf("Expected kind %s, got %s", models.KindConflict, resp.Error)
		}
	})

	t.Run("invalid usernames", func(t *testing.T) {
		for _, name := range []string{"", "ab", "has space", "way_too_long_for_anyones_good_username"} {
			req := testutil.MakeRequest("POST", "/accounts", models.RegisterAccountRequest{Username: name}, nil)
			w := httptest.NewRecorder()
			h.Register(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400 for username %q, got %d", name, w.Code)
			}
		}
	})
}

func TestGetMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewAccountHandler(db, cfg)

	accountID, ownerKey := testutil.CreateTestAccount(t, db, cfg, "me_user")

	t.Run("with valid key", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/accounts/me", nil, map[string]string{
			"X-Account-ID": accountID,
			"X-Owner-Key":  ownerKey,
		})
		w := httptest.NewRecorder()
		h.GetMe(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.Account
		testutil.AssertJSON(t, w, &resp)
		if resp.ID != accountID || resp.Username != "me_user" {
			t.Errorf("Unexpected account: %+v", resp)
		}
	})

	t.Run("with wrong key", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/accounts/me", nil, map[string]string{
			"X-Account-ID": accountID,
			"X-Owner-Key":  "forged",
		})
		w := httptest.NewRecorder()
		h.GetMe(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("without headers", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/accounts/me", nil, nil)
		w := httptest.NewRecorder()
		h.GetMe(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}

func TestUpdateSettings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewAccountHandler(db, cfg)

	accountID, ownerKey := testutil.CreateTestAccount(t, db, cfg, "settings_user")
	headers := map[string]string{
		"X-Account-ID": accountID,
		"X-Owner-Key":  ownerKey,
	}

	t.Run("partial update", func(t *testing.T) {
		off := false
		req := testutil.MakeRequest("POST", "/accounts/me/settings", models.UpdateSettingsRequest{
			AcceptMessages: &off,
		}, headers)
		w := httptest.NewRecorder()
		h.UpdateSettings(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.Account
		testutil.AssertJSON(t, w, &resp)
		if resp.AcceptMessages {
			t.Error("Expected accept_messages to be off")
		}
		if !resp.QAEnabled {
			t.Error("Expected qa_enabled to be untouched")
		}
	})

	t.Run("empty body rejected", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/accounts/me/settings", models.UpdateSettingsRequest{}, headers)
		w := httptest.NewRecorder()
		h.UpdateSettings(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}
