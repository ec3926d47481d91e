// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package qna

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/candidbox/auth"
	"github.com/danielhkuo/candidbox/db"
	"github.com/danielhkuo/candidbox/models"
)

var (
	ErrNotFound     = errors.New("qna entry not found")
	ErrInvalidInput = errors.New("answer text is required")
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

// Mirror creates the Q&A record for a message that arrived through a link
// in Q&A mode. Callers treat a failure here as best-effort: log it and keep
// the original message receipt intact.
func Mirror(dbc Querier, ownerID, linkID, sourceMessageID, questionText, visitorID string) (models.QnAEntry, error) {
	now := time.Now()

	entry := models.QnAEntry{
		OwnerID:      ownerID,
		QuestionText: questionText,
		AskedAt:      now,
		IsPublic:     true,
	}
	if linkID != "" {
		entry.LinkID = &linkID
	}
	if sourceMessageID != "" {
		entry.SourceMessageID = &sourceMessageID
	}
	if visitorID != "" {
		entry.VisitorID = &visitorID
	}

	for attempt := 0; attempt < 3; attempt++ {
		qnaID, err := auth.GenerateID(8)
		if err != nil {
			return models.QnAEntry{}, fmt.Errorf("failed to generate qna ID: %w", err)
		}

		_, err = dbc.Exec(`
			INSERT INTO qna (qna_id, owner_id, link_id, source_message_id, question_text, asked_at, visitor_id, is_public)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, qnaID, ownerID, entry.LinkID, entry.SourceMessageID, questionText, now, entry.VisitorID, true)

		if db.IsUniqueViolation(err) {
			continue
		}
		if err != nil {
			return models.QnAEntry{}, fmt.Errorf("failed to insert qna entry: %w", err)
		}

		entry.QnAID = qnaID
		return entry, nil
	}

	return models.QnAEntry{}, errors.New("failed to allocate a unique qna ID")
}

// Answer sets (or overwrites) the owner's answer on an entry. answered_at
// and answer_text move together: both set here, never cleared by any
// consumption path. Re-answering replaces the previous answer entirely.
func Answer(dbc Querier, qnaID, ownerID, answerText string) (models.QnAEntry, error) {
	if strings.TrimSpace(answerText) == "" {
		return models.QnAEntry{}, ErrInvalidInput
	}

	entry, err := getOwned(dbc, qnaID, ownerID)
	if err != nil {
		return models.QnAEntry{}, err
	}

	answeredAt := time.Now()
	_, err = dbc.Exec(`
		UPDATE qna SET answer_text = $1, answered_at = $2 WHERE qna_id = $3
	`, answerText, answeredAt, qnaID)
	if err != nil {
		return models.QnAEntry{}, fmt.Errorf("failed to save answer: %w", err)
	}

	entry.AnswerText = &answerText
	entry.AnsweredAt = &answeredAt
	return entry, nil
}

// ListByOwner returns all of an owner's entries, newest first.
func ListByOwner(dbc Querier, ownerID string) ([]models.QnAEntry, error) {
	rows, err := dbc.Query(`
		SELECT qna_id, owner_id, link_id, source_message_id, question_text, answer_text, asked_at, answered_at, visitor_id, is_public
		FROM qna
		WHERE owner_id = $1
		ORDER BY asked_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query qna entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// PublicAnswered returns a user's answered, public entries for the public
// answers feed, newest first.
func PublicAnswered(dbc Querier, username string) ([]models.QnAEntry, error) {
	var ownerID string
	err := dbc.QueryRow(`
		SELECT id FROM account WHERE username = $1
	`, username).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	rows, err := dbc.Query(`
		SELECT qna_id, owner_id, link_id, source_message_id, question_text, answer_text, asked_at, answered_at, visitor_id, is_public
		FROM qna
		WHERE owner_id = $1 AND is_public = TRUE AND answered_at IS NOT NULL
		ORDER BY answered_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answered entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func getOwned(dbc Querier, qnaID, ownerID string) (models.QnAEntry, error) {
	rows, err := dbc.Query(`
		SELECT qna_id, owner_id, link_id, source_message_id, question_text, answer_text, asked_at, answered_at, visitor_id, is_public
		FROM qna
		WHERE qna_id = $1 AND owner_id = $2
	`, qnaID, ownerID)
	if err != nil {
		return models.QnAEntry{}, fmt.Errorf("failed to query qna entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return models.QnAEntry{}, err
	}
	if len(entries) == 0 {
		return models.QnAEntry{}, ErrNotFound
	}
	return entries[0], nil
}

func scanEntries(rows *sql.Rows) ([]models.QnAEntry, error) {
	entries := []models.QnAEntry{}
	for rows.Next() {
		var e models.QnAEntry
		var linkID, sourceMessageID, answerText, visitorID sql.NullString
		var answeredAt sql.NullTime

		err := rows.Scan(
			&e.QnAID, &e.OwnerID, &linkID, &sourceMessageID, &e.QuestionText,
			&answerText, &e.AskedAt, &answeredAt, &visitorID, &e.IsPublic,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan qna entry: %w", err)
		}

		if linkID.Valid {
			v := linkID.String
			e.LinkID = &v
		}
		if sourceMessageID.Valid {
			v := sourceMessageID.String
			e.SourceMessageID = &v
		}
		if answerText.Valid {
			v := answerText.String
			e.AnswerText = &v
		}
		if answeredAt.Valid {
			v := answeredAt.Time
			e.AnsweredAt = &v
		}
		if visitorID.Valid {
			v := visitorID.String
			e.VisitorID = &v
		}

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read qna entries: %w", err)
	}
	return entries, nil
}
