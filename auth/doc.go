// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and owner-key validation.

# ID Generation

GenerateID creates cryptographically random hex tokens for links, polls,
Q&A entries, and accounts:

	linkID, err := auth.GenerateID(8) // 16 hex chars

Tokens carry entropy, not a uniqueness guarantee: callers writing them into
a UNIQUE column retry with a fresh token if the insert is rejected.

# Owner Keys

Owner keys are HMAC-SHA256 over the account ID with a server-side salt,
so they are verifiable without a lookup:

	key := auth.GenerateOwnerKey(accountID, cfg.OwnerKeySalt)
	err := auth.ValidateOwnerKey(accountID, presentedKey, cfg.OwnerKeySalt)

Keys are URL-safe base64 without padding. Validation uses constant-time
comparison.

# IP Hashing

HashIP produces a salted, truncated one-way hash of a client IP for
analytics deduplication. Raw IPs are never stored.
*/
package auth
