// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package moderation produces safety verdicts for visitor-submitted text.

The message pipeline consumes it as an opaque Checker:

	verdict := checker.Check(ctx, content)
	if !verdict.Safe || verdict.Toxicity >= cfg.ModerationThreshold {
		// reject the submission
	}

Two implementations: a keyword blocklist (default) and an OpenAI
moderation API client used when MODERATION_API_KEY is set. The API client
falls back to the keyword check on any failure, so Check always returns a
verdict and never an error.
*/
package moderation
