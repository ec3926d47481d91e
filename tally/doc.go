// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally owns a poll's option set and vote ledger.

# Invariants

  - A poll has at least two options at creation and the option set is
    immutable afterwards; option IDs are positional (opt_0, opt_1, ...).
  - The vote ledger is append-only; per-option counters increment in the
    same transaction as the ledger insert, so for every poll
    sum(options.votes_count) == len(votes).
  - On single-vote polls at most one ledger entry per visitor, enforced by
    the UNIQUE(poll_id, dedup_key) storage constraint at insert time.

# Voting

	resp, err := tally.Vote(db, pollID, "opt_1", visitorID)

Rejections in order: ErrNotFound (absent or deactivated), ErrExpired,
ErrInvalidOption, ErrAlreadyVoted. A duplicate submitted concurrently with
the first is indistinguishable from a plain repeat vote; both surface as
ErrAlreadyVoted. Votes without a visitor id are recorded under "anonymous"
and bypass deduplication.

# Results

	resp, err := tally.Results(db, pollID)

Percentages are math.Round(votes/total*100), rounded half away from zero
per option, so a results row set may sum to 99 or 101. The leading flag
marks every option no other option strictly beats; a zero-vote poll has no
leading option. Expiry is computed at read time, never written back.
*/
package tally
