// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package qna

import (
	"errors"
	"testing"

	"github.com/danielhkuo/candidbox/testutil"
)

func TestMirrorAndAnswer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	ownerID, _ := testutil.CreateTestAccount(t, db, cfg, "answerer")

	entry, err := Mirror(db, ownerID, "", "", "What editor do you use?", "visitor-1")
	if err != nil {
		t.Fatalf("Mirror failed: %v", err)
	}
	if entry.QnAID == "" {
		t.Fatal("Expected a qna ID")
	}
	if entry.AnswerText != nil || entry.AnsweredAt != nil {
		t.Error("Expected a fresh entry to be unanswered")
	}

	t.Run("empty answer rejected", func(t *testing.T) {
		if _, err := Answer(db, entry.QnAID, ownerID, "   "); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("non-owner rejected", func(t *testing.T) {
		strangerID, _ := testutil.CreateTestAccount(t, db, cfg, "stranger")
		if _, err := Answer(db, entry.QnAID, strangerID, "mine now"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for non-owner, got %v", err)
		}
	})

	t.Run("answer sets text and timestamp together", func(t *testing.T) {
		answered, err := Answer(db, entry.QnAID, ownerID, "Vim, obviously")
		if err != nil {
			t.Fatalf("Answer failed: %v", err)
		}
		if answered.AnswerText == nil || *answered.AnswerText != "Vim, obviously" {
			t.Errorf("Unexpected answer text: %v", answered.AnswerText)
		}
		if answered.AnsweredAt == nil {
			t.Error("Expected answered_at to be set")
		}
	})

	t.Run("re-answer overwrites", func(t *testing.T) {
		answered, err := Answer(db, entry.QnAID, ownerID, "Emacs, actually")
		if err != nil {
			t.Fatalf("Re-answer failed: %v", err)
		}
		if *answered.AnswerText != "Emacs, actually" {
			t.Errorf("Expected overwritten answer, got %q", *answered.AnswerText)
		}
	})
}

func TestListByOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	ownerID, _ := testutil.CreateTestAccount(t, db, cfg, "lister")
	otherID, _ := testutil.CreateTestAccount(t, db, cfg, "other")

	for _, q := range []string{"q1", "q2"} {
		if _, err := Mirror(db, ownerID, "", "", q, ""); err != nil {
			t.Fatalf("Mirror failed: %v", err)
		}
	}
	if _, err := Mirror(db, otherID, "", "", "not yours", ""); err != nil {
		t.Fatalf("Mirror failed: %v", err)
	}

	entries, err := ListByOwner(db, ownerID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(entries))
	}
}

func TestPublicAnswered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	ownerID, _ := testutil.CreateTestAccount(t, db, cfg, "public_user")

	answeredEntry, err := Mirror(db, ownerID, "", "", "answered one", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Answer(db, answeredEntry.QnAID, ownerID, "yes"); err != nil {
		t.Fatal(err)
	}

	if _, err := Mirror(db, ownerID, "", "", "unanswered one", ""); err != nil {
		t.Fatal(err)
	}

	privateEntry, err := Mirror(db, ownerID, "", "", "private one", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Answer(db, privateEntry.QnAID, ownerID, "secret"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE qna SET is_public = FALSE WHERE qna_id = $1`, privateEntry.QnAID); err != nil {
		t.Fatal(err)
	}

	entries, err := PublicAnswered(db, "public_user")
	if err != nil {
		t.Fatalf("PublicAnswered failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected only the answered public entry, got %d", len(entries))
	}
	if entries[0].QnAID != answeredEntry.QnAID {
		t.Errorf("Expected entry %s, got %s", answeredEntry.QnAID, entries[0].QnAID)
	}

	t.Run("unknown username", func(t *testing.T) {
		if _, err := PublicAnswered(db, "ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}
