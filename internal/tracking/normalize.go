package tracking

import "time"

// CalendarEvent is the provider-neutral shape of one raw source event.
// Google all-day events carry only the date fields, timed events only the
// RFC3339 ones.
type CalendarEvent struct {
	ID            string
	Summary       string
	Description   string
	StartDateTime string // RFC3339, empty for all-day events
	StartDate     string // YYYY-MM-DD, all-day fallback
	EndDateTime   string
	EndDate       string
}

// TimeKind says which source field an EventTime was resolved from.
type TimeKind int

const (
	TimeUnknown TimeKind = iota
	TimePrecise
	TimeDateOnly
)

// EventTime is the resolved start or end of a calendar event. The explicit
// kind keeps the precise-vs-date-only fallback observable instead of
// hiding it behind a zero time.
type EventTime struct {
	Kind TimeKind
	Time time.Time
}

// ResolveTime prefers the precise timestamp field and falls back to the
// date-only field. When neither parses the result is TimeUnknown with a
// zero time.
func ResolveTime(dateTime, date string) EventTime {
	if dateTime != "" {
		if t, err := time.Parse(time.RFC3339, dateTime); err == nil {
			return EventTime{Kind: TimePrecise, Time: t}
		}
	}
	if date != "" {
		if t, err := time.Parse("2006-01-02", date); err == nil {
			return EventTime{Kind: TimeDateOnly, Time: t}
		}
	}
	return EventTime{Kind: TimeUnknown}
}

// NormalizedEvent is the canonical record derived from one CalendarEvent.
type NormalizedEvent struct {
	GoogleEventID string
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	Duration      int // minutes; 0 when either endpoint is unknown
	Tags          []TagMatch
}

// Normalize turns a raw calendar event into the canonical record: identifier
// and text are copied verbatim, start/end resolved via ResolveTime, duration
// recomputed (never trusted from the source) and tags extracted from the
// field the policy prescribes. Events with unparsable endpoints get zero
// times and duration 0 instead of failing the batch.
func Normalize(ev CalendarEvent, policy Policy) NormalizedEvent {
	start := ResolveTime(ev.StartDateTime, ev.StartDate)
	end := ResolveTime(ev.EndDateTime, ev.EndDate)

	duration := 0
	if start.Kind != TimeUnknown && end.Kind != TimeUnknown {
		duration = DurationMinutes(start.Time, end.Time)
	}

	source := ev.Description
	if policy == PolicySummaryOnly {
		source = ev.Summary
	}

	return NormalizedEvent{
		GoogleEventID: ev.ID,
		Summary:       ev.Summary,
		Description:   ev.Description,
		Start:         start.Time,
		End:           end.Time,
		Duration:      duration,
		Tags:          ExtractTags(source, policy),
	}
}
