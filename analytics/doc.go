// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package analytics records usage events and aggregates them for the
// owner dashboard. Recording is fire-and-forget and respects the
// account-level opt-out.
package analytics
