// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/candidbox/auth"
	"github.com/danielhkuo/candidbox/db"
	"github.com/danielhkuo/candidbox/models"
)

var (
	ErrNotFound     = errors.New("link not found")
	ErrExpired      = errors.New("link has expired")
	ErrLimitReached = errors.New("link has reached its maximum uses")
	ErrForbidden    = errors.New("caller does not own this link")
	ErrNotAccepting = errors.New("owner is not accepting messages")
	ErrInvalidInput = errors.New("invalid link parameters")
)

// Querier is satisfied by both *sql.DB and *sql.Tx so the use-recording
// path can run inside the message-storage transaction.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

// CreateParams holds owner-supplied fields for a new link.
// ExpiresInHours <= 0 means no expiry; MaxUses <= 0 means unlimited.
type CreateParams struct {
	OwnerID        string
	Mode           string
	ExpiresInHours int
	MaxUses        int
	Title          string
	Description    string
}

// CreateLink inserts a new link owned by p.OwnerID and returns it.
// The token comes from auth.GenerateID; a uniqueness collision is retried
// with a fresh token.
func CreateLink(dbc Querier, p CreateParams) (models.Link, error) {
	switch p.Mode {
	case models.ModeMessage, models.ModeQA, models.ModePoll:
	default:
		return models.Link{}, ErrInvalidInput
	}

	now := time.Now()

	var expiresAt *time.Time
	if p.ExpiresInHours > 0 {
		t := now.Add(time.Duration(p.ExpiresInHours) * time.Hour)
		expiresAt = &t
	}

	var maxUses *int
	if p.MaxUses > 0 {
		maxUses = &p.MaxUses
	}

	link := models.Link{
		OwnerID:     p.OwnerID,
		Mode:        p.Mode,
		Title:       p.Title,
		Description: p.Description,
		ExpiresAt:   expiresAt,
		MaxUses:     maxUses,
		UsesCount:   0,
		IsActive:    true,
		CreatedAt:   now,
	}

	for attempt := 0; attempt < 3; attempt++ {
		linkID, err := auth.GenerateID(8)
		if err != nil {
			return models.Link{}, fmt.Errorf("failed to generate link ID: %w", err)
		}

		_, err = dbc.Exec(`
			INSERT INTO link (link_id, owner_id, mode, title, description, expires_at, max_uses, uses_count, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, linkID, p.OwnerID, p.Mode, p.Title, p.Description, expiresAt, maxUses, 0, true, now)

		if db.IsUniqueViolation(err) {
			continue
		}
		if err != nil {
			return models.Link{}, fmt.Errorf("failed to insert link: %w", err)
		}

		link.LinkID = linkID
		return link, nil
	}

	return models.Link{}, errors.New("failed to allocate a unique link ID")
}

// ResolveLink fetches a link by token. Deactivated links resolve as
// ErrNotFound so visitors cannot tell deactivation from deletion.
func ResolveLink(dbc Querier, linkID string) (models.Link, error) {
	var link models.Link
	var expiresAt sql.NullTime
	var maxUses sql.NullInt64

	err := dbc.QueryRow(`
		SELECT link_id, owner_id, mode, title, description, expires_at, max_uses, uses_count, is_active, created_at
		FROM link
		WHERE link_id = $1
	`, linkID).Scan(
		&link.LinkID, &link.OwnerID, &link.Mode, &link.Title, &link.Description,
		&expiresAt, &maxUses, &link.UsesCount, &link.IsActive, &link.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return models.Link{}, ErrNotFound
	}
	if err != nil {
		return models.Link{}, fmt.Errorf("failed to query link: %w", err)
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		link.ExpiresAt = &t
	}
	if maxUses.Valid {
		n := int(maxUses.Int64)
		link.MaxUses = &n
	}

	if !link.IsActive {
		return models.Link{}, ErrNotFound
	}

	return link, nil
}

// IsUsable reports whether a link may be consumed at the given instant:
// active, not past expires_at, and under max_uses. Pure; callers evaluate
// it at consumption time rather than caching the answer, since the expiry
// comparison is time-sensitive.
func IsUsable(link models.Link, now time.Time) bool {
	return usabilityError(link, now) == nil
}

// usabilityError returns nil, ErrExpired, or ErrLimitReached depending on
// which clause of the usability predicate fails first. Inactive links are
// ErrNotFound (matching ResolveLink).
func usabilityError(link models.Link, now time.Time) error {
	if !link.IsActive {
		return ErrNotFound
	}
	if link.ExpiresAt != nil && !now.Before(*link.ExpiresAt) {
		return ErrExpired
	}
	if link.MaxUses != nil && link.UsesCount >= *link.MaxUses {
		return ErrLimitReached
	}
	return nil
}

// RecordUse increments uses_count by exactly 1, guarded by the capacity
// check inside the same UPDATE so two racing consumers of a link with one
// remaining use see exactly one success and one ErrLimitReached. Run it on
// a *sql.Tx when the consumption's other writes must roll back with it.
func RecordUse(dbc Querier, linkID string) error {
	res, err := dbc.Exec(`
		UPDATE link
		SET uses_count = uses_count + 1
		WHERE link_id = $1
		  AND is_active = TRUE
		  AND (max_uses IS NULL OR uses_count < max_uses)
	`, linkID)
	if err != nil {
		return fmt.Errorf("failed to record link use: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Nothing updated: either the link is gone/inactive or it is at capacity.
	var exists bool
	err = dbc.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM link WHERE link_id = $1 AND is_active = TRUE)
	`, linkID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to re-check link: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrLimitReached
}

// Deactivate soft-disables a link. Only the owner may do this; the link
// row is never deleted.
func Deactivate(dbc Querier, linkID, ownerID string) error {
	var storedOwner string
	err := dbc.QueryRow(`
		SELECT owner_id FROM link WHERE link_id = $1
	`, linkID).Scan(&storedOwner)

	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query link: %w", err)
	}

	if storedOwner != ownerID {
		return ErrForbidden
	}

	_, err = dbc.Exec(`
		UPDATE link SET is_active = FALSE WHERE link_id = $1
	`, linkID)
	if err != nil {
		return fmt.Errorf("failed to deactivate link: %w", err)
	}

	return nil
}

// Consumption is the context a mode handler needs to process a submission.
type Consumption struct {
	Link   models.Link
	Owner  models.Account
	PollID string // set when a poll is attached to a poll-mode link
}

// ResolveForConsumption resolves a link token for an inbound visitor:
// link lookup, usability (ErrExpired / ErrLimitReached are distinguished
// for precise user messaging), owner lookup (orphaned links are not
// consumable), and the owner's accept-messages flag for message/qa modes.
// It never records the use; that happens only after the mode handler
// confirms successful processing.
func ResolveForConsumption(dbc Querier, linkID string) (Consumption, error) {
	link, err := ResolveLink(dbc, linkID)
	if err != nil {
		return Consumption{}, err
	}

	if err := usabilityError(link, time.Now()); err != nil {
		return Consumption{}, err
	}

	var owner models.Account
	err = dbc.QueryRow(`
		SELECT id, username, accept_messages, qa_enabled, analytics_opt_in, created_at
		FROM account
		WHERE id = $1
	`, link.OwnerID).Scan(
		&owner.ID, &owner.Username, &owner.AcceptMessages, &owner.QAEnabled,
		&owner.AnalyticsOptIn, &owner.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return Consumption{}, ErrNotFound
	}
	if err != nil {
		return Consumption{}, fmt.Errorf("failed to query link owner: %w", err)
	}

	if (link.Mode == models.ModeMessage || link.Mode == models.ModeQA) && !owner.AcceptMessages {
		return Consumption{}, ErrNotAccepting
	}

	c := Consumption{Link: link, Owner: owner}

	if link.Mode == models.ModePoll {
		var pollID string
		err := dbc.QueryRow(`
			SELECT poll_id FROM poll WHERE link_id = $1 AND is_active = TRUE
		`, linkID).Scan(&pollID)
		if err == nil {
			c.PollID = pollID
		} else if err != sql.ErrNoRows {
			return Consumption{}, fmt.Errorf("failed to query attached poll: %w", err)
		}
	}

	return c, nil
}
