package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/notariadigital/escribano/internal/google"
)

// Client wraps the Google Calendar service with the read-only surface the
// calendar tool needs.
type Client struct {
	svc *calendar.Service
}

// NewClient creates a Calendar client authenticated with the given credential.
func NewClient(ctx context.Context, cred *google.Credential) (*Client, error) {
	if !cred.Valid() {
		return nil, fmt.Errorf("credential is not valid for Calendar access")
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(cred.HTTPClient(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// NewClientWithService wraps an existing Calendar service.
func NewClientWithService(svc *calendar.Service) *Client {
	return &Client{svc: svc}
}

// ListEvents lists events in a calendar within a time range, expanded to
// single events and ordered by start time.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int) ([]EventSummary, error) {
	if calendarID == "" {
		calendarID = "primary"
	}

	call := c.svc.Events.List(calendarID).
		Context(ctx).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	if maxResults > 0 {
		call = call.MaxResults(int64(maxResults))
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}
	return summaries, nil
}

// ListUpcomingEvents lists events between now and now+window.
func (c *Client) ListUpcomingEvents(ctx context.Context, calendarID string, window time.Duration, maxResults int) ([]EventSummary, error) {
	now := time.Now()
	return c.ListEvents(ctx, calendarID, now, now.Add(window), maxResults)
}
