// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/candidbox/auth"
)

// ownerFromRequest authenticates the X-Account-ID / X-Owner-Key header pair
// and returns the account id. The key is stateless (HMAC over the account
// id), so no database read happens here.
func ownerFromRequest(r *http.Request, salt string) (string, error) {
	accountID := r.Header.Get("X-Account-ID")
	ownerKey := r.Header.Get("X-Owner-Key")
	if err := auth.ValidateOwnerKey(accountID, ownerKey, salt); err != nil {
		return "", err
	}
	return accountID, nil
}
