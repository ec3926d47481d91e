// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the candidbox API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Accounts (owner, requires X-Account-ID + X-Owner-Key):

	POST /accounts             - Register and mint owner key (public)
	GET  /accounts/me          - Account profile
	POST /accounts/me/settings - Update settings

Links:

	POST /links                       - Create link (owner)
	GET  /links                       - List links (owner)
	GET  /links/{linkId}              - Resolve link (public)
	POST /links/{linkId}/uses         - Record one use (public)
	POST /links/{linkId}/deactivate   - Deactivate (owner)
	POST /links/{linkId}/messages     - Submit message or question (public)

Messages:

	GET /messages        - Owner inbox
	GET /messages/export - Download inbox as JSON or CSV (?format=csv)

Polls:

	POST /polls                   - Create poll (owner)
	GET  /polls                   - List polls (owner)
	POST /polls/{pollId}/votes    - Cast vote (public)
	GET  /polls/{pollId}/results  - Current tally (public)

Q&A:

	POST /qna/{qnaId}/answer - Answer a question (owner)
	GET  /qna                - List questions (owner)
	GET  /qna/answers        - Public answered feed (?username=)
	POST /qna/check-visitor  - Visitor sign-up / prior-submission check (public)

Analytics:

	POST /analytics/events   - Ingest event (public)
	GET  /analytics/overview - Owner aggregates

Moderation:

	POST /moderation/check - Pre-check text (public)

# Handler Initialization

The router builds the shared services (analytics recorder, moderation
checker) and injects them with the database connection and configuration
into the handler structs.
*/
package router
