// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP request handlers.

Handlers are grouped by resource, each a struct holding the database
connection and parsed configuration:

  - AccountHandler: registration, profile, settings
  - LinkHandler: link creation, listing, public resolve, use recording,
    deactivation
  - MessageHandler: the public submission pipeline, the owner inbox, and
    the inbox export download
  - PollHandler: poll creation, voting, results
  - QnAHandler: owner answers, the public answered feed, and the visitor
    sign-up check
  - AnalyticsHandler: event ingestion and the owner overview
  - ModerationHandler: the standalone text pre-check

Owner-only endpoints authenticate via the X-Account-ID and X-Owner-Key
headers; the key is a stateless HMAC minted at registration. Errors go out
as models.ErrorResponse with a stable machine-readable kind.
*/
package handlers
