// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3319)
  - DatabaseURL: Connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - BaseURL: Public base URL used when building share links
  - OwnerKeySalt: Secret for owner key HMAC (required)
  - VisitorSalt: Secret for IP hashing (required)
  - ModerationAPIKey: Optional key for the external moderation API
  - ModerationThreshold: Toxicity above which messages are blocked

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-b            Public base URL
	-owner-salt   Owner key salt
	-visitor-salt Visitor/IP hash salt

# Environment Variables

Flags fall back to environment variables:

	PORT                 → -p
	DATABASE_URL         → -d
	DATABASE_TYPE        → -t
	BASE_URL             → -b
	OWNER_KEY_SALT       → -owner-salt
	VISITOR_SALT         → -visitor-salt
	MODERATION_API_KEY   (env only)
	MODERATION_THRESHOLD (env only)

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing or malformed.
*/
package cliparse
