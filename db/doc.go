// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL avoids engine-specific defaults (no NOW()), so the same schema runs
on postgres and sqlite; timestamps are set by application code.

# Tables

The schema includes:

  - account: Link owners and their accept-messages / Q&A flags
  - link: Shareable tokens with mode, expiry, and use-count state
  - message: Anonymous messages with moderation verdicts
  - qna: Question/answer entries mirrored from qa-mode submissions
  - poll: Poll metadata and lifecycle state
  - poll_option: Fixed option set with per-option vote counters
  - poll_vote: Append-only vote ledger
  - analytics_event: Fire-and-forget usage events

# Relationships

	account 1──* link
	account 1──* message
	account 1──* qna
	account 1──* poll
	poll 1──* poll_option
	poll 1──* poll_vote

All foreign keys use ON DELETE CASCADE.

# Concurrency Constraints

Two constraints carry the app's concurrency guarantees:

  - poll_vote UNIQUE(poll_id, dedup_key): one vote per visitor on
    single-vote polls, enforced at insert time (the duplicate-vote race
    loses here, not at an application-level read)
  - link.uses_count is mutated only by a conditional UPDATE that checks
    max_uses in the same statement
*/
package db
