// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Link mode constants
const (
	ModeMessage = "message"
	ModeQA      = "qa"
	ModePoll    = "poll"
)

// Message status constants
const (
	MessageStatusNew      = "new"
	MessageStatusRead     = "read"
	MessageStatusArchived = "archived"
)

// Analytics event type constants
const (
	EventVisit  = "visit"
	EventSubmit = "submit"
	EventVote   = "vote"
)

// Machine-readable error kinds returned in ErrorResponse.Error
const (
	KindNotFound      = "not_found"
	KindForbidden     = "forbidden"
	KindExpired       = "expired"
	KindLimitReached  = "limit_reached"
	KindAlreadyVoted  = "already_voted"
	KindInvalidOption = "invalid_option"
	KindInvalidInput  = "invalid_input"
	KindNotAccepting  = "not_accepting"
	KindConflict      = "conflict"
	KindInternal      = "internal"
)

// Request types

type RegisterAccountRequest struct {
	Username string `json:"username"`
}

type UpdateSettingsRequest struct {
	AcceptMessages *bool `json:"accept_messages,omitempty"`
	QAEnabled      *bool `json:"qa_enabled,omitempty"`
	AnalyticsOptIn *bool `json:"analytics_opt_in,omitempty"`
}

type CreateLinkRequest struct {
	Mode           string `json:"mode"`
	ExpiresInHours int    `json:"expires_in_hours,omitempty"`
	MaxUses        int    `json:"max_uses,omitempty"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
}

type SendMessageRequest struct {
	Content   string `json:"content"`
	VisitorID string `json:"visitor_id,omitempty"`
}

type CreatePollRequest struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	AllowMultiple  bool     `json:"allow_multiple"`
	ExpiresInHours int      `json:"expires_in_hours,omitempty"`
	LinkID         string   `json:"link_id,omitempty"`
}

type VoteRequest struct {
	OptionID  string `json:"option_id"`
	VisitorID string `json:"visitor_id,omitempty"`
}

type AnswerRequest struct {
	AnswerText string `json:"answer_text"`
}

type AnalyticsEventRequest struct {
	LinkID    string `json:"link_id,omitempty"`
	Username  string `json:"username,omitempty"`
	EventType string `json:"event_type"`
	Page      string `json:"page,omitempty"`
	VisitorID string `json:"visitor_id,omitempty"`
}

type ModerationCheckRequest struct {
	Text string `json:"text"`
}

type CheckVisitorRequest struct {
	VisitorID string `json:"visitor_id,omitempty"`
}

// Response types

type RegisterAccountResponse struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	OwnerKey  string `json:"owner_key"`
}

type CreateLinkResponse struct {
	LinkID string `json:"link_id"`
	URL    string `json:"url"`
}

type ResolveLinkResponse struct {
	LinkID      string     `json:"link_id"`
	Username    string     `json:"username"`
	Mode        string     `json:"mode"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	MaxUses     *int       `json:"max_uses,omitempty"`
	UsesCount   int        `json:"uses_count"`
	PollID      string     `json:"poll_id,omitempty"`
}

type RecordUseResponse struct {
	OK bool `json:"ok"`
}

type SendMessageResponse struct {
	MessageID string `json:"message_id"`
	Message   string `json:"message"`
}

type CreatePollResponse struct {
	PollID string `json:"poll_id"`
	URL    string `json:"url"`
}

type OptionResult struct {
	OptionID   string `json:"option_id"`
	Label      string `json:"label"`
	Votes      int    `json:"votes"`
	Percentage int    `json:"percentage"`
	Leading    bool   `json:"leading"`
}

type VoteResponse struct {
	TotalVotes int            `json:"total_votes"`
	Results    []OptionResult `json:"results"`
}

type PollResultsResponse struct {
	Question   string         `json:"question"`
	TotalVotes int            `json:"total_votes"`
	Results    []OptionResult `json:"results"`
	IsActive   bool           `json:"is_active"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
}

type ModerationCheckResponse struct {
	Safe       bool     `json:"safe"`
	Toxicity   float64  `json:"toxicity"`
	Categories []string `json:"categories"`
	Method     string   `json:"method"`
}

type MessageExportResponse struct {
	Username      string    `json:"username"`
	ExportDate    time.Time `json:"export_date"`
	TotalMessages int       `json:"total_messages"`
	Messages      []Message `json:"messages"`
}

type CheckVisitorResponse struct {
	IsSignedUp   bool   `json:"is_signed_up"`
	AccountID    string `json:"account_id,omitempty"`
	KnownVisitor bool   `json:"known_visitor"`
}

type AnalyticsOverviewResponse struct {
	TotalEvents int            `json:"total_events"`
	Visits      int            `json:"visits"`
	Submits     int            `json:"submits"`
	Votes       int            `json:"votes"`
	ByDevice    map[string]int `json:"by_device"`
}

// Domain types

type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	AcceptMessages bool      `json:"accept_messages"`
	QAEnabled      bool      `json:"qa_enabled"`
	AnalyticsOptIn bool      `json:"analytics_opt_in"`
	CreatedAt      time.Time `json:"created_at"`
}

type Link struct {
	LinkID      string     `json:"link_id"`
	OwnerID     string     `json:"owner_id"`
	Mode        string     `json:"mode"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	MaxUses     *int       `json:"max_uses,omitempty"`
	UsesCount   int        `json:"uses_count"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Message struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"-"`
	LinkID     *string   `json:"link_id,omitempty"`
	Content    string    `json:"content"`
	IsFlagged  bool      `json:"is_flagged"`
	Toxicity   float64   `json:"toxicity"`
	Categories []string  `json:"categories,omitempty"`
	VisitorID  *string   `json:"-"` // Never expose in JSON
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type PollOption struct {
	OptionID   string `json:"option_id"`
	Label      string `json:"label"`
	VotesCount int    `json:"votes_count"`
}

type PollVote struct {
	VoterID   string    `json:"-"` // Never expose in JSON
	OptionID  string    `json:"option_id"`
	Timestamp time.Time `json:"timestamp"`
}

type Poll struct {
	PollID        string       `json:"poll_id"`
	OwnerID       string       `json:"owner_id"`
	LinkID        *string      `json:"link_id,omitempty"`
	Question      string       `json:"question"`
	Options       []PollOption `json:"options"`
	AllowMultiple bool         `json:"allow_multiple"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
	IsActive      bool         `json:"is_active"`
	CreatedAt     time.Time    `json:"created_at"`
}

type QnAEntry struct {
	QnAID           string     `json:"qna_id"`
	OwnerID         string     `json:"owner_id"`
	LinkID          *string    `json:"link_id,omitempty"`
	SourceMessageID *string    `json:"source_message_id,omitempty"`
	QuestionText    string     `json:"question_text"`
	AnswerText      *string    `json:"answer_text,omitempty"`
	AskedAt         time.Time  `json:"asked_at"`
	AnsweredAt      *time.Time `json:"answered_at,omitempty"`
	VisitorID       *string    `json:"-"` // Never expose in JSON
	IsPublic        bool       `json:"is_public"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
