// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lifecycle owns a link's activation state and the consumption-time
routing decision.

# Usability

A link is usable iff it is active, its expiry (if any) has not passed, and
its use counter (if capped) is below max_uses:

	ok := lifecycle.IsUsable(link, time.Now())

IsUsable is pure and evaluated per consumption; nothing caches its answer.

# Recording Uses

RecordUse is the only writer of uses_count. It is a single conditional
UPDATE, so two consumers racing for a link's last remaining use resolve to
exactly one success:

	err := lifecycle.RecordUse(tx, linkID) // nil, ErrNotFound, or ErrLimitReached

uses_count is monotonic: incremented by exactly 1 per successful
consumption, never decremented.

# Consumption Routing

ResolveForConsumption turns a raw token into everything a mode handler
needs, rejecting with a specific sentinel at each gate:

	c, err := lifecycle.ResolveForConsumption(db, linkID)
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):     // 404
	case errors.Is(err, lifecycle.ErrExpired):      // 400 expired
	case errors.Is(err, lifecycle.ErrLimitReached): // 400 limit_reached
	case errors.Is(err, lifecycle.ErrNotAccepting): // 400 not_accepting
	}

It never records the use itself; a submission that is later rejected (for
example by moderation) must not consume link capacity.
*/
package lifecycle
