// Package calendar wraps the Google Calendar and userinfo APIs behind the
// tracking.EventSource contract.
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/annie-elequin/timetracking/internal/tracking"
)

// Source reads events from one authenticated user's primary calendar.
type Source struct {
	service    *gcal.Service
	calendarID string
	logger     *slog.Logger
}

// NewSource builds a calendar client on top of the per-request token
// source. Expired access tokens are refreshed transparently by ts.
func NewSource(ctx context.Context, ts oauth2.TokenSource, logger *slog.Logger) (*Source, error) {
	service, err := gcal.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{service: service, calendarID: "primary", logger: logger}, nil
}

// Events lists single (non-recurring-expanded) events in [start, end),
// ordered by start time and capped at max results.
func (s *Source) Events(ctx context.Context, start, end time.Time, max int64) ([]tracking.CalendarEvent, error) {
	call := s.service.Events.List(s.calendarID).
		Context(ctx).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(start.Format(time.RFC3339)).
		MaxResults(max)
	if !end.IsZero() {
		call = call.TimeMax(end.Format(time.RFC3339))
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}

	out := make([]tracking.CalendarEvent, 0, len(res.Items))
	for _, item := range res.Items {
		ev := tracking.CalendarEvent{
			ID:          item.Id,
			Summary:     item.Summary,
			Description: item.Description,
		}
		if item.Start != nil {
			ev.StartDateTime = item.Start.DateTime
			ev.StartDate = item.Start.Date
		}
		if item.End != nil {
			ev.EndDateTime = item.End.DateTime
			ev.EndDate = item.End.Date
		}
		out = append(out, ev)
	}

	s.logger.Info("Fetched events from Google Calendar", "count", len(out), "calendar_id", s.calendarID)
	return out, nil
}

// UserInfo fetches the Google profile (id, email, name) for the token.
func UserInfo(ctx context.Context, ts oauth2.TokenSource) (*goauth2.Userinfo, error) {
	svc, err := goauth2.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create oauth2 service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	return info, nil
}
