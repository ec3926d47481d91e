// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/candidbox/analytics"
	"github.com/danielhkuo/candidbox/models"
	"github.com/danielhkuo/candidbox/testutil"
)

func TestSubmitEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	accountID, _ := testutil.CreateTestAccount(t, db, cfg, "event_owner")
	h := NewAnalyticsHandler(db, cfg, analytics.NewRecorder(db))

	t.Run("visit by username", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/analytics/events", models.AnalyticsEventRequest{
			Username:  "event_owner",
			EventType: models.EventVisit,
			Page:      "/u/event_owner",
		}, nil)
		w := httptest.NewRecorder()
		h.SubmitEvent(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM analytics_event WHERE owner_id = $1`, accountID).Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("Expected 1 stored event, got %d", count)
		}
	})

	t.Run("invalid event type", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/analytics/events", models.AnalyticsEventRequest{
			EventType: "teleport",
		}, nil)
		w := httptest.NewRecorder()
		h.SubmitEvent(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("opted-out owner events are skipped", func(t *testing.T) {
		optedOutID, _ := testutil.CreateTestAccount(t, db, cfg, "private_owner")
		if _, err := db.Exec(`UPDATE account SET analytics_opt_in = FALSE WHERE id = $1`, optedOutID); err != nil {
			t.Fatal(err)
		}

		req := testutil.MakeRequest("POST", "/analytics/events", models.AnalyticsEventRequest{
			Username:  "private_owner",
			EventType: models.EventVisit,
		}, nil)
		w := httptest.NewRecorder()
		h.SubmitEvent(w, req)

		// Skipping is still success from the client's perspective
		testutil.AssertStatus(t, w, http.StatusOK)

		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM analytics_event WHERE owner_id = $1`, optedOutID).Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Errorf("Expected no stored events for opted-out owner, got %d", count)
		}
	})
}

func TestOverview(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	accountID, ownerKey := testutil.CreateTestAccount(t, db, cfg, "overview_owner")
	rec := analytics.NewRecorder(db)
	h := NewAnalyticsHandler(db, cfg, rec)

	events := []string{models.EventVisit, models.EventVisit, models.EventSubmit, models.EventVote}
	for _, et := range events {
		if err := rec.RecordSync(analytics.Event{OwnerID: accountID, EventType: et, DeviceType: "desktop"}); err != nil {
			t.Fatalf("RecordSync failed: %v", err)
		}
	}

	req := testutil.MakeRequest("GET", "/analytics/overview", nil, map[string]string{
		"X-Account-ID": accountID,
		"X-Owner-Key":  ownerKey,
	})
	w := httptest.NewRecorder()
	h.Overview(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.AnalyticsOverviewResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.TotalEvents != 4 || resp.Visits != 2 || resp.Submits != 1 || resp.Votes != 1 {
		t.Errorf("Unexpected overview: %+v", resp)
	}
	if resp.ByDevice["desktop"] != 4 {
		t.Errorf("Expected 4 desktop events, got %d", resp.ByDevice["desktop"])
	}

	t.Run("unauthenticated", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/analytics/overview", nil, nil)
		w := httptest.NewRecorder()
		h.Overview(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}
