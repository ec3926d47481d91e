// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package testutil provides shared helpers for handler and integration
// tests: an in-memory sqlite database with the full schema, a standard
// test configuration, and fixture builders for accounts, links, and polls.
package testutil
