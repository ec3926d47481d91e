// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/candidbox/auth"
	"github.com/danielhkuo/candidbox/db"
	"github.com/danielhkuo/candidbox/models"
)

var (
	ErrNotFound      = errors.New("poll not found")
	ErrExpired       = errors.New("poll has expired")
	ErrAlreadyVoted  = errors.New("visitor has already voted")
	ErrInvalidOption = errors.New("invalid option")
	ErrInvalidInput  = errors.New("invalid poll parameters")
)

// anonVoter records votes submitted without a visitor id. Such votes bypass
// deduplication (there is nothing stable to deduplicate on).
const anonVoter = "anonymous"

// CreateParams holds owner-supplied fields for a new poll.
// ExpiresInHours <= 0 means no expiry.
type CreateParams struct {
	OwnerID        string
	Question       string
	OptionLabels   []string
	AllowMultiple  bool
	ExpiresInHours int
	LinkID         string
}

// CreatePoll inserts a poll with its fixed option set. Option IDs are
// positional (opt_0, opt_1, ...) and stable for the poll's lifetime since
// clients reference them. Fails with ErrInvalidInput on an empty question
// or fewer than two options.
func CreatePoll(dbc *sql.DB, p CreateParams) (models.Poll, error) {
	if strings.TrimSpace(p.Question) == "" || len(p.OptionLabels) < 2 {
		return models.Poll{}, ErrInvalidInput
	}
	for _, label := range p.OptionLabels {
		if strings.TrimSpace(label) == "" {
			return models.Poll{}, ErrInvalidInput
		}
	}

	now := time.Now()

	var expiresAt *time.Time
	if p.ExpiresInHours > 0 {
		t := now.Add(time.Duration(p.ExpiresInHours) * time.Hour)
		expiresAt = &t
	}

	var linkID *string
	if p.LinkID != "" {
		linkID = &p.LinkID
	}

	for attempt := 0; attempt < 3; attempt++ {
		pollID, err := auth.GenerateID(8)
		if err != nil {
			return models.Poll{}, fmt.Errorf("failed to generate poll ID: %w", err)
		}

		tx, err := dbc.Begin()
		if err != nil {
			return models.Poll{}, fmt.Errorf("failed to begin transaction: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO poll (poll_id, owner_id, link_id, question, allow_multiple, expires_at, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, pollID, p.OwnerID, linkID, p.Question, p.AllowMultiple, expiresAt, true, now)

		if db.IsUniqueViolation(err) {
			tx.Rollback()
			continue
		}
		if err != nil {
			tx.Rollback()
			return models.Poll{}, fmt.Errorf("failed to insert poll: %w", err)
		}

		options := make([]models.PollOption, 0, len(p.OptionLabels))
		for i, label := range p.OptionLabels {
			optionID := fmt.Sprintf("opt_%d", i)
			_, err = tx.Exec(`
				INSERT INTO poll_option (poll_id, option_id, ord, label, votes_count)
				VALUES ($1, $2, $3, $4, $5)
			`, pollID, optionID, i, label, 0)
			if err != nil {
				tx.Rollback()
				return models.Poll{}, fmt.Errorf("failed to insert option: %w", err)
			}
			options = append(options, models.PollOption{OptionID: optionID, Label: label})
		}

		if err := tx.Commit(); err != nil {
			return models.Poll{}, fmt.Errorf("failed to commit poll: %w", err)
		}

		return models.Poll{
			PollID:        pollID,
			OwnerID:       p.OwnerID,
			LinkID:        linkID,
			Question:      p.Question,
			Options:       options,
			AllowMultiple: p.AllowMultiple,
			ExpiresAt:     expiresAt,
			IsActive:      true,
			CreatedAt:     now,
		}, nil
	}

	return models.Poll{}, errors.New("failed to allocate a unique poll ID")
}

// Vote records one vote and returns the refreshed tally. The duplicate-vote
// check for single-vote polls is the UNIQUE(poll_id, dedup_key) constraint
// hit by the insert itself, so a visitor racing against their own second
// request loses at the store, not at an application-level read; the caller
// sees the same ErrAlreadyVoted either way.
func Vote(dbc *sql.DB, pollID, optionID, visitorID string) (models.VoteResponse, error) {
	var allowMultiple, isActive bool
	var expiresAt sql.NullTime
	err := dbc.QueryRow(`
		SELECT allow_multiple, is_active, expires_at FROM poll WHERE poll_id = $1
	`, pollID).Scan(&allowMultiple, &isActive, &expiresAt)

	if err == sql.ErrNoRows {
		return models.VoteResponse{}, ErrNotFound
	}
	if err != nil {
		return models.VoteResponse{}, fmt.Errorf("failed to query poll: %w", err)
	}
	if !isActive {
		return models.VoteResponse{}, ErrNotFound
	}
	if expiresAt.Valid && !time.Now().Before(expiresAt.Time) {
		return models.VoteResponse{}, ErrExpired
	}

	// Option sets are immutable after creation, so this check cannot race.
	var optionExists bool
	err = dbc.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM poll_option WHERE poll_id = $1 AND option_id = $2)
	`, pollID, optionID).Scan(&optionExists)
	if err != nil {
		return models.VoteResponse{}, fmt.Errorf("failed to query option: %w", err)
	}
	if !optionExists {
		return models.VoteResponse{}, ErrInvalidOption
	}

	voteID := uuid.NewString()
	voterID := visitorID
	dedupKey := voteID
	if voterID == "" {
		voterID = anonVoter
	} else if !allowMultiple {
		dedupKey = voterID
	}

	tx, err := dbc.Begin()
	if err != nil {
		return models.VoteResponse{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO poll_vote (id, poll_id, option_id, voter_id, dedup_key, voted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voteID, pollID, optionID, voterID, dedupKey, time.Now())

	if db.IsUniqueViolation(err) {
		return models.VoteResponse{}, ErrAlreadyVoted
	}
	if err != nil {
		return models.VoteResponse{}, fmt.Errorf("failed to insert vote: %w", err)
	}

	// Counter increment rides the same transaction as the ledger append so
	// sum(votes_count) == count(poll_vote) holds at every commit point.
	_, err = tx.Exec(`
		UPDATE poll_option SET votes_count = votes_count + 1
		WHERE poll_id = $1 AND option_id = $2
	`, pollID, optionID)
	if err != nil {
		return models.VoteResponse{}, fmt.Errorf("failed to increment option counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.VoteResponse{}, fmt.Errorf("failed to commit vote: %w", err)
	}

	results, total, err := tallyOptions(dbc, pollID)
	if err != nil {
		return models.VoteResponse{}, err
	}

	return models.VoteResponse{TotalVotes: total, Results: results}, nil
}

// Results returns the current tally for a poll. Expiry is computed at read
// time, never stored: IsActive in the response is the stored flag AND "not
// yet expired". Inactive polls still report results to their owner and to
// visitors holding the poll URL, matching the original service.
func Results(dbc *sql.DB, pollID string) (models.PollResultsResponse, error) {
	var question string
	var isActive bool
	var expiresAt sql.NullTime
	err := dbc.QueryRow(`
		SELECT question, is_active, expires_at FROM poll WHERE poll_id = $1
	`, pollID).Scan(&question, &isActive, &expiresAt)

	if err == sql.ErrNoRows {
		return models.PollResultsResponse{}, ErrNotFound
	}
	if err != nil {
		return models.PollResultsResponse{}, fmt.Errorf("failed to query poll: %w", err)
	}

	results, total, err := tallyOptions(dbc, pollID)
	if err != nil {
		return models.PollResultsResponse{}, err
	}

	resp := models.PollResultsResponse{
		Question:   question,
		TotalVotes: total,
		Results:    results,
		IsActive:   isActive && (!expiresAt.Valid || time.Now().Before(expiresAt.Time)),
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		resp.ExpiresAt = &t
	}
	return resp, nil
}

// tallyOptions computes per-option counts, percentages, and the leading
// flag. Percentages use math.Round (half away from zero) independently per
// option, so they are not guaranteed to sum to exactly 100. An option is
// leading when no other option has strictly more votes; ties mean several
// options lead at once. A zero-vote poll has no leading option.
func tallyOptions(dbc *sql.DB, pollID string) ([]models.OptionResult, int, error) {
	rows, err := dbc.Query(`
		SELECT option_id, label, votes_count
		FROM poll_option
		WHERE poll_id = $1
		ORDER BY ord
	`, pollID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	results := []models.OptionResult{}
	total := 0
	maxVotes := 0
	for rows.Next() {
		var r models.OptionResult
		if err := rows.Scan(&r.OptionID, &r.Label, &r.Votes); err != nil {
			return nil, 0, fmt.Errorf("failed to scan option: %w", err)
		}
		total += r.Votes
		if r.Votes > maxVotes {
			maxVotes = r.Votes
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read options: %w", err)
	}

	for i := range results {
		if total > 0 {
			results[i].Percentage = int(math.Round(float64(results[i].Votes) / float64(total) * 100))
		}
		results[i].Leading = maxVotes > 0 && results[i].Votes == maxVotes
	}

	return results, total, nil
}
