package tracking

import (
	"sort"

	"github.com/annie-elequin/timetracking/models"
)

// TagGroup is one report bucket: all events carrying a tag plus their
// summed duration.
type TagGroup struct {
	Tag          string         `json:"tag"`
	TotalMinutes int            `json:"totalMinutes"`
	Events       []models.Event `json:"events"`
}

// GroupByTag fans events out into per-tag groups and sums each group's
// duration. An event tagged #a #b contributes its full duration to both
// groups, so the group totals may exceed the plain sum of the input - that
// is the intended reading, not double counting by accident.
//
// When selected is non-empty only those tags are reported (case-sensitive).
// Groups come back sorted by tag for stable output.
func GroupByTag(events []models.Event, selected []string) []TagGroup {
	wanted := make(map[string]bool, len(selected))
	for _, tag := range selected {
		wanted[tag] = true
	}

	groups := make(map[string]*TagGroup)
	for _, ev := range events {
		for _, t := range ev.ProjectTags {
			if len(wanted) > 0 && !wanted[t.Tag] {
				continue
			}
			g, ok := groups[t.Tag]
			if !ok {
				g = &TagGroup{Tag: t.Tag}
				groups[t.Tag] = g
			}
			g.TotalMinutes += ev.Duration
			g.Events = append(g.Events, ev)
		}
	}

	out := make([]TagGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}
