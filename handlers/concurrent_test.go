// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/candidbox/analytics"
	"github.com/danielhkuo/candidbox/models"
	"github.com/danielhkuo/candidbox/moderation"
	"github.com/danielhkuo/candidbox/testutil"
)

// TestConcurrentMessageSubmissions drives several simultaneous submissions
// at a link with one remaining use: exactly one message may land, and the
// losers' messages must not survive as orphans.
func TestConcurrentMessageSubmissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	accountID, _ := testutil.CreateTestAccount(t, db, cfg, "race_owner")
	h := NewMessageHandler(db, cfg, moderation.New(""), analytics.NewRecorder(db))

	linkID := testutil.CreateTestLink(t, db, accountID, models.ModeMessage, 1, nil)

	const numSenders = 8
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numSenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/links/"+linkID+"/messages", models.SendMessageRequest{
				Content: fmt.Sprintf("concurrent message %d", i),
			}, nil)
			req.SetPathValue("linkId", linkID)
			w := httptest.NewRecorder()
			h.Send(w, req)

			switch w.Code {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusBadRequest:
				// Losers of the capacity race look the same as visitors
				// hitting an already-exhausted link.
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Error != models.KindLimitReached {
					t.Errorf("Expected kind %s, got %s", models.KindLimitReached, resp.Error)
				}
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}(i)
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful submission, got %d", successCount.Load())
	}

	var messageCount, uses int
	if err := db.QueryRow(`SELECT COUNT(*) FROM message WHERE link_id = $1`, linkID).Scan(&messageCount); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(`SELECT uses_count FROM link WHERE link_id = $1`, linkID).Scan(&uses); err != nil {
		t.Fatal(err)
	}
	if messageCount != 1 {
		t.Errorf("Expected 1 stored message, got %d", messageCount)
	}
	if uses != 1 {
		t.Errorf("Expected uses_count 1, got %d", uses)
	}
}

// TestConcurrentDuplicateVotes checks that one visitor racing against
// themselves records exactly one vote.
func TestConcurrentDuplicateVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	accountID, _ := testutil.CreateTestAccount(t, db, cfg, "race_pollster")
	h := NewPollHandler(db, cfg, analytics.NewRecorder(db))

	pollID := testutil.CreateTestPoll(t, db, accountID, []string{"A", "B"})

	const numAttempts = 8
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/polls/"+pollID+"/votes", models.VoteRequest{
				OptionID:  "opt_0",
				VisitorID: "same-visitor",
			}, nil)
			req.SetPathValue("pollId", pollID)
			w := httptest.NewRecorder()
			h.Vote(w, req)

			switch w.Code {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusBadRequest:
				// duplicate, correctly rejected
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 recorded vote, got %d", successCount.Load())
	}

	var counterSum, ledgerCount int
	if err := db.QueryRow(`SELECT COALESCE(SUM(votes_count), 0) FROM poll_option WHERE poll_id = $1`, pollID).Scan(&counterSum); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM poll_vote WHERE poll_id = $1`, pollID).Scan(&ledgerCount); err != nil {
		t.Fatal(err)
	}
	if counterSum != 1 || ledgerCount != 1 {
		t.Errorf("Expected counters and ledger to agree at 1, got sum=%d ledger=%d", counterSum, ledgerCount)
	}
}
