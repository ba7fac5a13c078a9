package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/annie-elequin/timetracking/models"
)

// EventSource returns raw calendar events inside [start, end), capped at
// max results. The Google client in internal/calendar implements it;
// tests substitute their own.
type EventSource interface {
	Events(ctx context.Context, start, end time.Time, max int64) ([]CalendarEvent, error)
}

// Syncer mirrors a window of a user's calendar into the database:
// fetch -> normalize -> upsert tags and events -> return the normalized set.
type Syncer struct {
	db     *gorm.DB
	source EventSource
	policy Policy
	max    int64
	logger *slog.Logger
}

func NewSyncer(db *gorm.DB, source EventSource, policy Policy, maxResults int64, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{db: db, source: source, policy: policy, max: maxResults, logger: logger}
}

// Sync runs one synchronization pass for userID over [start, end).
//
// Everything fetched is persisted unconditionally; the optional tag filter
// restricts the returned slice only. There is no transaction across the
// batch: upserts that succeeded before a failure stay committed and the
// error is returned to the caller.
func (s *Syncer) Sync(ctx context.Context, userID uint, start, end time.Time, filter []string) ([]models.Event, error) {
	raw, err := s.source.Events(ctx, start, end, s.max)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar events: %w", err)
	}
	s.logger.Info("Fetched events from calendar source", "count", len(raw), "user_id", userID)

	synced := make([]models.Event, 0, len(raw))
	for _, item := range raw {
		if item.ID == "" {
			// Without an external identifier there is nothing to key the
			// upsert on.
			s.logger.Warn("Skipping calendar event without ID", "summary", item.Summary)
			continue
		}

		normalized := Normalize(item, s.policy)

		tags, err := s.upsertTags(ctx, userID, normalized.Tags)
		if err != nil {
			return nil, fmt.Errorf("upsert tags for event %s: %w", item.ID, err)
		}

		event := models.Event{
			UserID:        userID,
			GoogleEventID: normalized.GoogleEventID,
			Summary:       normalized.Summary,
			Description:   normalized.Description,
			StartTime:     normalized.Start,
			EndTime:       normalized.End,
			Duration:      normalized.Duration,
		}
		if err := s.upsertEvent(ctx, &event, tags); err != nil {
			return nil, err
		}
		synced = append(synced, event)
	}

	if len(filter) == 0 {
		return synced, nil
	}
	filtered := make([]models.Event, 0, len(synced))
	for _, ev := range synced {
		if hasAnyTag(ev.ProjectTags, filter) {
			filtered = append(filtered, ev)
		}
	}
	return filtered, nil
}

// FindOrUpdateTag upserts the (userID, tag) registry record, overwriting
// its description unconditionally (last write wins, empty included), and
// returns the stored row. The write is a single atomic ON CONFLICT
// statement, never a read-then-write pair.
func FindOrUpdateTag(ctx context.Context, db *gorm.DB, userID uint, tag, description string) (models.ProjectTag, error) {
	rec := models.ProjectTag{UserID: userID, Tag: tag, Description: description}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "tag"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return rec, err
	}
	if rec.ID == 0 {
		err = db.WithContext(ctx).Where("user_id = ? AND tag = ?", userID, tag).First(&rec).Error
	}
	return rec, err
}

// upsertTags resolves the extracted tag set to registry rows. A sync pass
// only overwrites descriptions with non-empty text, so a summary-only
// extraction never erases what a richer one recorded earlier.
func (s *Syncer) upsertTags(ctx context.Context, userID uint, tags []TagMatch) ([]models.ProjectTag, error) {
	out := make([]models.ProjectTag, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, m := range tags {
		if seen[m.Tag] {
			continue
		}
		seen[m.Tag] = true

		if m.Description != "" {
			rec, err := FindOrUpdateTag(ctx, s.db, userID, m.Tag, m.Description)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
			continue
		}

		rec := models.ProjectTag{UserID: userID, Tag: m.Tag}
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "tag"}},
				DoNothing: true,
			}).
			Create(&rec).Error
		if err != nil {
			return nil, err
		}
		if rec.ID == 0 {
			if err := s.db.WithContext(ctx).Where("user_id = ? AND tag = ?", userID, m.Tag).First(&rec).Error; err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// upsertEvent replaces the stored event keyed by google_event_id. All
// mutable columns are overwritten, then the tag associations are replaced
// with the freshly extracted set.
func (s *Syncer) upsertEvent(ctx context.Context, event *models.Event, tags []models.ProjectTag) error {
	err := s.db.WithContext(ctx).
		Omit("ProjectTags").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "google_event_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id", "summary", "description", "start_time", "end_time", "duration", "updated_at",
			}),
		}).
		Create(event).Error
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", event.GoogleEventID, err)
	}

	if event.ID == 0 {
		if err := s.db.WithContext(ctx).Where("google_event_id = ?", event.GoogleEventID).First(event).Error; err != nil {
			return fmt.Errorf("reload event %s: %w", event.GoogleEventID, err)
		}
	}

	if err := s.db.WithContext(ctx).Model(event).Association("ProjectTags").Replace(&tags); err != nil {
		return fmt.Errorf("replace tag associations for event %s: %w", event.GoogleEventID, err)
	}
	event.ProjectTags = tags
	return nil
}

// hasAnyTag reports whether the event carries at least one of the wanted
// tags. Matching is case-sensitive: tags are raw captured text.
func hasAnyTag(tags []models.ProjectTag, wanted []string) bool {
	for _, t := range tags {
		for _, w := range wanted {
			if t.Tag == w {
				return true
			}
		}
	}
	return false
}
