// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analytics

import (
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/candidbox/models"
)

// Recorder writes usage events. Internal callers emit through Record,
// which is fire-and-forget: failures are logged and never propagate into
// the operation that triggered the event.
type Recorder struct {
	db *sql.DB
}

func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// Event is one usage observation. OwnerID may be empty for events not tied
// to a known account.
type Event struct {
	OwnerID    string
	LinkID     string
	VisitorID  string
	EventType  string
	Page       string
	DeviceType string
	IPHash     string
}

// Record persists the event on a separate goroutine and returns
// immediately. Errors are swallowed after logging.
func (r *Recorder) Record(e Event) {
	go func() {
		if err := r.RecordSync(e); err != nil {
			slog.Warn("failed to record analytics event", "event_type", e.EventType, "error", err)
		}
	}()
}

// RecordSync persists the event, honoring the owner's analytics opt-out.
// Skipping an opted-out owner's event is success, not an error.
func (r *Recorder) RecordSync(e Event) error {
	switch e.EventType {
	case models.EventVisit, models.EventSubmit, models.EventVote:
	default:
		return fmt.Errorf("unknown event type %q", e.EventType)
	}

	if e.OwnerID != "" {
		var optIn bool
		err := r.db.QueryRow(`
			SELECT analytics_opt_in FROM account WHERE id = $1
		`, e.OwnerID).Scan(&optIn)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to check analytics opt-in: %w", err)
		}
		if err == nil && !optIn {
			return nil
		}
	}

	nullable := func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}

	deviceType := e.DeviceType
	if deviceType == "" {
		deviceType = "unknown"
	}

	_, err := r.db.Exec(`
		INSERT INTO analytics_event (id, owner_id, link_id, visitor_id, event_type, page, device_type, ip_hash, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, uuid.NewString(), nullable(e.OwnerID), nullable(e.LinkID), nullable(e.VisitorID),
		e.EventType, e.Page, deviceType, e.IPHash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert analytics event: %w", err)
	}
	return nil
}

// Overview aggregates an owner's events for the dashboard.
func (r *Recorder) Overview(ownerID string) (models.AnalyticsOverviewResponse, error) {
	resp := models.AnalyticsOverviewResponse{ByDevice: map[string]int{}}

	rows, err := r.db.Query(`
		SELECT event_type, device_type FROM analytics_event WHERE owner_id = $1
	`, ownerID)
	if err != nil {
		return resp, fmt.Errorf("failed to query analytics events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventType, deviceType string
		if err := rows.Scan(&eventType, &deviceType); err != nil {
			return resp, fmt.Errorf("failed to scan analytics event: %w", err)
		}
		resp.TotalEvents++
		resp.ByDevice[deviceType]++
		switch eventType {
		case models.EventVisit:
			resp.Visits++
		case models.EventSubmit:
			resp.Submits++
		case models.EventVote:
			resp.Votes++
		}
	}
	if err := rows.Err(); err != nil {
		return resp, fmt.Errorf("failed to read analytics events: %w", err)
	}

	return resp, nil
}

var (
	tabletUA  = regexp.MustCompile(`(?i)tablet|ipad|playbook|silk`)
	mobileUA  = regexp.MustCompile(`(?i)mobi|iphone|ipod|iemobile|blackberry|kindle|opera mini`)
	androidUA = regexp.MustCompile(`(?i)android`)
)

// DeviceType classifies a User-Agent as mobile, tablet, desktop, or unknown.
// Android without a Mobile token is a tablet.
func DeviceType(userAgent string) string {
	if userAgent == "" {
		return "unknown"
	}
	if tabletUA.MatchString(userAgent) {
		return "tablet"
	}
	if mobileUA.MatchString(userAgent) {
		return "mobile"
	}
	if androidUA.MatchString(userAgent) {
		return "tablet"
	}
	return "desktop"
}
