// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/candidbox/auth"
	"github.com/danielhkuo/candidbox/cliparse"
	"github.com/danielhkuo/candidbox/db"
)

var dbCounter atomic.Int64

// SetupTestDB opens a fresh in-memory sqlite database with the full schema.
// Each call gets its own database; cache=shared keeps it alive across the
// pool, and MaxOpenConns(1) avoids sqlite's single-writer lock contention.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := fmt.Sprintf("candidbox_test_%d", dbCounter.Add(1))
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                3319,
		DatabaseType:        "sqlite",
		BaseURL:             "http://localhost:3319",
		OwnerKeySalt:        "test-owner-salt",
		VisitorSalt:         "test-visitor-salt",
		ModerationThreshold: 0.7,
	}
}

// CreateTestAccount inserts an account and returns its ID and owner key
func CreateTestAccount(t *testing.T, conn *sql.DB, cfg cliparse.Config, username string) (accountID, ownerKey string) {
	t.Helper()

	accountID, err := auth.GenerateID(16)
	if err != nil {
		t.Fatalf("Failed to generate account ID: %v", err)
	}
	ownerKey = auth.GenerateOwnerKey(accountID, cfg.OwnerKeySalt)

	_, err = conn.Exec(`
		INSERT INTO account (id, username, accept_messages, qa_enabled, analytics_opt_in, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, accountID, username, true, true, true, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return accountID, ownerKey
}

// CreateTestLink inserts a link for an account and returns the link ID.
// maxUses <= 0 means unlimited; expiresAt nil means no expiry.
func CreateTestLink(t *testing.T, conn *sql.DB, ownerID, mode string, maxUses int, expiresAt *time.Time) string {
	t.Helper()

	linkID, err := auth.GenerateID(8)
	if err != nil {
		t.Fatalf("Failed to generate link ID: %v", err)
	}

	var max *int
	if maxUses > 0 {
		max = &maxUses
	}

	_, err = conn.Exec(`
		INSERT INTO link (link_id, owner_id, mode, title, description, expires_at, max_uses, uses_count, is_active, created_at)
		VALUES ($1, $2, $3, '', '', $4, $5, $6, $7, $8)
	`, linkID, ownerID, mode, expiresAt, max, 0, true, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test link: %v", err)
	}

	return linkID
}

// CreateTestPoll inserts a poll with options and returns the poll ID.
// Option IDs are positional: opt_0, opt_1, ...
func CreateTestPoll(t *testing.T, conn *sql.DB, ownerID string, labels []string) string {
	t.Helper()

	pollID, err := auth.GenerateID(8)
	if err != nil {
		t.Fatalf("Failed to generate poll ID: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO poll (poll_id, owner_id, link_id, question, allow_multiple, expires_at, is_active, created_at)
		VALUES ($1, $2, NULL, 'Test Question', $3, NULL, $4, $5)
	`, pollID, ownerID, false, true, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, label := range labels {
		_, err = conn.Exec(`
			INSERT INTO poll_option (poll_id, option_id, ord, label, votes_count)
			VALUES ($1, $2, $3, $4, $5)
		`, pollID, fmt.Sprintf("opt_%d", i), i, label, 0)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
	}

	return pollID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
