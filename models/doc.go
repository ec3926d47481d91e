// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterAccountRequest: username
  - UpdateSettingsRequest: accept_messages, qa_enabled, analytics_opt_in
  - CreateLinkRequest: mode, expires_in_hours, max_uses, title, description
  - SendMessageRequest: content, visitor_id
  - CreatePollRequest: question, options, allow_multiple, expires_in_hours
  - VoteRequest: option_id, visitor_id
  - AnswerRequest: answer_text
  - AnalyticsEventRequest: link_id, username, event_type, page, visitor_id
  - ModerationCheckRequest: text

# Response Types

Types for JSON responses:

  - RegisterAccountResponse: account_id, username, owner_key
  - CreateLinkResponse: link_id, url
  - ResolveLinkResponse: public link metadata plus owner username
  - SendMessageResponse: message_id, message
  - CreatePollResponse: poll_id, url
  - VoteResponse / PollResultsResponse: tallies with per-option percentages
  - ModerationCheckResponse: safe, toxicity, categories
  - AnalyticsOverviewResponse: aggregates for the owner dashboard
  - ErrorResponse: error (machine-readable kind), message

# Domain Types

Internal data structures:

  - Account: link owner, accept-messages and Q&A flags
  - Link: shareable token, mode, expiry and capacity state
  - Message: anonymous message with moderation verdict
  - Poll, PollOption, PollVote: poll option set and append-only vote ledger
  - QnAEntry: question mirrored from a Q&A-mode submission

# Constants

Link modes:

	ModeMessage = "message"
	ModeQA      = "qa"
	ModePoll    = "poll"

Error kinds (stable, machine-readable):

	KindNotFound, KindForbidden, KindExpired, KindLimitReached,
	KindAlreadyVoted, KindInvalidOption, KindInvalidInput,
	KindNotAccepting, KindConflict, KindInternal
*/
package models
