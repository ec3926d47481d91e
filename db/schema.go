// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// Timestamps are set in application code so the DDL stays portable
// between postgres and sqlite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Accounts (link owners)
CREATE TABLE IF NOT EXISTS account (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    accept_messages BOOLEAN NOT NULL DEFAULT TRUE,
    qa_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    analytics_opt_in BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_account_username ON account(username);

-- Shareable links
CREATE TABLE IF NOT EXISTS link (
    link_id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
    mode TEXT NOT NULL CHECK (mode IN ('message', 'qa', 'poll')),
    title TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    expires_at TIMESTAMP,
    max_uses INTEGER,
    uses_count INTEGER NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_link_owner_id ON link(owner_id);

-- Anonymous messages
CREATE TABLE IF NOT EXISTS message (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
    link_id TEXT,
    content TEXT NOT NULL,
    is_flagged BOOLEAN NOT NULL DEFAULT FALSE,
    toxicity REAL NOT NULL DEFAULT 0,
    categories TEXT NOT NULL DEFAULT '',
    visitor_id TEXT,
    status TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'read', 'archived')),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_message_owner_id ON message(owner_id);
CREATE INDEX IF NOT EXISTS idx_message_link_id ON message(link_id);

-- Q&A entries mirrored from qa-mode submissions
CREATE TABLE IF NOT EXISTS qna (
    qna_id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
    link_id TEXT,
    source_message_id TEXT,
    question_text TEXT NOT NULL,
    answer_text TEXT,
    asked_at TIMESTAMP NOT NULL,
    answered_at TIMESTAMP,
    visitor_id TEXT,
    is_public BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_qna_owner_id ON qna(owner_id);
CREATE INDEX IF NOT EXISTS idx_qna_link_id ON qna(link_id);

-- Polls
CREATE TABLE IF NOT EXISTS poll (
    poll_id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
    link_id TEXT,
    question TEXT NOT NULL,
    allow_multiple BOOLEAN NOT NULL DEFAULT FALSE,
    expires_at TIMESTAMP,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_poll_owner_id ON poll(owner_id);
CREATE INDEX IF NOT EXISTS idx_poll_link_id ON poll(link_id);

-- Poll options (fixed at creation, option_id is positional: opt_0, opt_1, ...)
CREATE TABLE IF NOT EXISTS poll_option (
    poll_id TEXT NOT NULL REFERENCES poll(poll_id) ON DELETE CASCADE,
    option_id TEXT NOT NULL,
    ord INTEGER NOT NULL,
    label TEXT NOT NULL,
    votes_count INTEGER NOT NULL DEFAULT 0 CHECK (votes_count >= 0),
    PRIMARY KEY (poll_id, option_id)
);

-- Poll votes, append-only. dedup_key is the voter id for single-vote polls
-- and the vote's own id otherwise, so UNIQUE(poll_id, dedup_key) enforces
-- one-vote-per-visitor at the storage layer.
CREATE TABLE IF NOT EXISTS poll_vote (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(poll_id) ON DELETE CASCADE,
    option_id TEXT NOT NULL,
    voter_id TEXT NOT NULL,
    dedup_key TEXT NOT NULL,
    voted_at TIMESTAMP NOT NULL,
    UNIQUE (poll_id, dedup_key)
);

CREATE INDEX IF NOT EXISTS idx_poll_vote_poll_id ON poll_vote(poll_id);

-- Analytics events (fire-and-forget)
CREATE TABLE IF NOT EXISTS analytics_event (
    id TEXT PRIMARY KEY,
    owner_id TEXT,
    link_id TEXT,
    visitor_id TEXT,
    event_type TEXT NOT NULL CHECK (event_type IN ('visit', 'submit', 'vote')),
    page TEXT NOT NULL DEFAULT '',
    device_type TEXT NOT NULL DEFAULT 'unknown',
    ip_hash TEXT NOT NULL DEFAULT '',
    occurred_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analytics_owner_id ON analytics_event(owner_id);
CREATE INDEX IF NOT EXISTS idx_analytics_link_id ON analytics_event(link_id);
`
