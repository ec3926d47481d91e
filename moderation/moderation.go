// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Verdict is the safety assessment for a piece of text.
type Verdict struct {
	Safe       bool
	Toxicity   float64
	Categories []string
	Method     string
}

// Checker produces a safety verdict for visitor-submitted text. The rest of
// the app treats it as a black box.
type Checker interface {
	Check(ctx context.Context, text string) Verdict
}

// New returns an API-backed checker when a key is configured, otherwise the
// keyword checker.
func New(apiKey string) Checker {
	if apiKey == "" {
		return KeywordChecker{}
	}
	return &APIChecker{
		apiKey: apiKey,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// toxicKeywords is the fallback blocklist used when no moderation API is
// configured or the API call fails.
var toxicKeywords = []string{"hate", "kill", "die", "stupid", "idiot"}

// KeywordChecker flags text containing any blocklisted keyword.
type KeywordChecker struct{}

func (KeywordChecker) Check(_ context.Context, text string) Verdict {
	return keywordVerdict(text, "keyword")
}

func keywordVerdict(text, method string) Verdict {
	lower := strings.ToLower(text)
	for _, kw := range toxicKeywords {
		if strings.Contains(lower, kw) {
			return Verdict{Safe: false, Toxicity: 0.7, Categories: []string{"toxicity"}, Method: method}
		}
	}
	return Verdict{Safe: true, Toxicity: 0.1, Categories: []string{}, Method: method}
}

// APIChecker calls the OpenAI moderation endpoint, falling back to the
// keyword check if the call fails. Check never returns an error: a verdict
// always comes back, by keyword if necessary.
type APIChecker struct {
	apiKey   string
	client   *http.Client
	endpoint string // overridable in tests; defaults to the OpenAI API
}

const defaultEndpoint = "https://api.openai.com/v1/moderations"

func (c *APIChecker) Check(ctx context.Context, text string) Verdict {
	v, err := c.checkAPI(ctx, text)
	if err != nil {
		slog.Warn("moderation API failed, using keyword fallback", "error", err)
		return keywordVerdict(text, "keyword-fallback")
	}
	return v
}

func (c *APIChecker) checkAPI(ctx context.Context, text string) (Verdict, error) {
	endpoint := c.endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	body, err := json.Marshal(map[string]string{"input": text})
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to encode moderation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to build moderation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("moderation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("moderation API returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Results []struct {
			Flagged    bool            `json:"flagged"`
			Categories map[string]bool `json:"categories"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Verdict{}, fmt.Errorf("failed to decode moderation response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return Verdict{}, fmt.Errorf("moderation API returned no results")
	}

	result := parsed.Results[0]
	toxicity := 0.1
	if result.Flagged {
		toxicity = 0.9
	}

	categories := []string{}
	for name, hit := range result.Categories {
		if hit {
			categories = append(categories, name)
		}
	}

	return Verdict{
		Safe:       !result.Flagged,
		Toxicity:   toxicity,
		Categories: categories,
		Method:     "api",
	}, nil
}
