// Package tracking contains the calendar-to-time-tracking core: tag
// extraction from event text, duration derivation, normalization of raw
// Google Calendar events and the synchronizer that mirrors a time window
// into the database.
package tracking

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// TagMatch is one extracted (tag, description) pair.
type TagMatch struct {
	Tag         string `json:"tag"`
	Description string `json:"description"`
}

// Policy selects how tags are extracted and from which event field.
type Policy int

const (
	// PolicySummaryOnly scans the event summary for bare #tag markers.
	// Descriptions are always empty under this policy.
	PolicySummaryOnly Policy = iota
	// PolicyWithDescription scans the event description for #tag markers,
	// each optionally followed by a free-text phrase that runs until the
	// next marker or the end of the text.
	PolicyWithDescription
)

var (
	tagOnlyRe     = regexp.MustCompile(`#(\w+)`)
	tagWithTextRe = regexp.MustCompile(`#(\w+)([^#]*)`)
)

// ExtractTags returns all (tag, description) pairs found in text, in
// left-to-right order. A lone '#' with no word character after it is not
// a marker. Empty input yields an empty slice; ExtractTags never fails.
func ExtractTags(text string, policy Policy) []TagMatch {
	matches := []TagMatch{}
	if text == "" {
		return matches
	}

	if policy == PolicySummaryOnly {
		for _, m := range tagOnlyRe.FindAllStringSubmatch(text, -1) {
			matches = append(matches, TagMatch{Tag: m[1]})
		}
		return matches
	}

	for _, m := range tagWithTextRe.FindAllStringSubmatch(text, -1) {
		matches = append(matches, TagMatch{
			Tag:         m[1],
			Description: strings.TrimSpace(m[2]),
		})
	}
	return matches
}

// DurationMinutes returns the elapsed whole minutes between start and end,
// rounded to the nearest minute. When end precedes start the result is
// negative; reversed timestamps come straight from the calendar source and
// are preserved rather than clamped, so bad data stays visible.
func DurationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}
