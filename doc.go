// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the candidbox API server.

Candidbox is an anonymous-feedback service: account owners mint shareable
links through which visitors submit anonymous messages, ask questions, or
vote in quick polls, without any visitor login.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:candidbox.db OWNER_KEY_SALT=... VISITOR_SALT=... go run main.go

Or with flags:

	go run main.go -p 3319 -t sqlite -d "file:candidbox.db"

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string (postgres URL or sqlite file)
  - OWNER_KEY_SALT (--owner-salt): Secret for owner key HMAC
  - VISITOR_SALT (--visitor-salt): Secret for visitor/IP hashing

Optional settings:

  - PORT (-p): Server port (default: 3319)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - BASE_URL (-b): Public base URL used in share links
  - MODERATION_API_KEY: enables API-backed content moderation
  - MODERATION_THRESHOLD: toxicity score above which messages are rejected

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (accounts, links, messages, polls, qna,
    analytics, moderation)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - lifecycle: Link creation, resolution, usability, use recording
  - tally: Poll creation, voting, results
  - qna: Question mirroring and answers
  - moderation: Content safety verdicts
  - analytics: Usage event recording and aggregation
  - auth: Token generation and owner-key validation
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
