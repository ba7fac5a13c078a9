package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/annie-elequin/timetracking/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Именованная in-memory база, чтобы пул соединений GORM видел одну и ту же схему.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ProjectTag{}, &models.Event{}))
	return db
}

type fakeSource struct {
	events []CalendarEvent
	err    error
	calls  int
}

func (f *fakeSource) Events(ctx context.Context, start, end time.Time, max int64) ([]CalendarEvent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func timedEvent(id, summary, description, start, end string) CalendarEvent {
	return CalendarEvent{
		ID:            id,
		Summary:       summary,
		Description:   description,
		StartDateTime: start,
		EndDateTime:   end,
	}
}

func countEvents(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Event{}).Count(&n).Error)
	return n
}

func TestSyncIdempotent(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{events: []CalendarEvent{
		timedEvent("evt-1", "Planning", "#proj Sprint planning", "2025-03-10T09:00:00Z", "2025-03-10T10:30:00Z"),
	}}
	s := NewSyncer(db, src, PolicyWithDescription, 100, nil)

	first, err := s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.Equal(t, int64(1), countEvents(t, db))

	var stored models.Event
	require.NoError(t, db.Preload("ProjectTags").Where("google_event_id = ?", "evt-1").First(&stored).Error)
	assert.Equal(t, "Planning", stored.Summary)
	assert.Equal(t, 90, stored.Duration)
	require.Len(t, stored.ProjectTags, 1)
	assert.Equal(t, "proj", stored.ProjectTags[0].Tag)
	assert.Equal(t, "Sprint planning", stored.ProjectTags[0].Description)
}

func TestSyncOverwritesChangedFields(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{events: []CalendarEvent{
		timedEvent("evt-1", "Old summary", "#proj", "2025-03-10T09:00:00Z", "2025-03-10T10:00:00Z"),
	}}
	s := NewSyncer(db, src, PolicyWithDescription, 100, nil)

	_, err := s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)

	// Второй проход с измененными данными: полная замена, не merge.
	src.events = []CalendarEvent{
		timedEvent("evt-1", "New summary", "#proj", "2025-03-10T09:00:00Z", "2025-03-10T11:00:00Z"),
	}
	_, err = s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), countEvents(t, db))

	var stored models.Event
	require.NoError(t, db.Where("google_event_id = ?", "evt-1").First(&stored).Error)
	assert.Equal(t, "New summary", stored.Summary)
	assert.Equal(t, 120, stored.Duration)
}

func TestSyncTagRegistryLastWriteWins(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{events: []CalendarEvent{
		timedEvent("evt-1", "Standup", "#proj First description", "2025-03-10T09:00:00Z", "2025-03-10T09:15:00Z"),
	}}
	s := NewSyncer(db, src, PolicyWithDescription, 100, nil)

	_, err := s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)

	src.events[0].Description = "#proj Second description"
	_, err = s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)

	var tags []models.ProjectTag
	require.NoError(t, db.Where("user_id = ?", 1).Find(&tags).Error)
	require.Len(t, tags, 1)
	assert.Equal(t, "Second description", tags[0].Description)
}

func TestSyncEmptyDescriptionKeepsStoredOne(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{events: []CalendarEvent{
		timedEvent("evt-1", "Standup", "#proj Rich description", "2025-03-10T09:00:00Z", "2025-03-10T09:15:00Z"),
	}}
	s := NewSyncer(db, src, PolicyWithDescription, 100, nil)

	_, err := s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)

	src.events[0].Description = "#proj"
	_, err = s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)

	var tag models.ProjectTag
	require.NoError(t, db.Where("user_id = ? AND tag = ?", 1, "proj").First(&tag).Error)
	assert.Equal(t, "Rich description", tag.Description)
}

func TestFindOrUpdateTagOverwritesUnconditionally(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := FindOrUpdateTag(ctx, db, 1, "proj", "First")
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := FindOrUpdateTag(ctx, db, 1, "proj", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "", second.Description)

	var n int64
	require.NoError(t, db.Model(&models.ProjectTag{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestFindOrUpdateTagScopedByUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a, err := FindOrUpdateTag(ctx, db, 1, "proj", "mine")
	require.NoError(t, err)
	b, err := FindOrUpdateTag(ctx, db, 2, "proj", "theirs")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestSyncFilterIsResponseOnly(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{events: []CalendarEvent{
		timedEvent("evt-a", "A", "#alpha work", "2025-03-10T09:00:00Z", "2025-03-10T10:00:00Z"),
		timedEvent("evt-b", "B", "#beta work", "2025-03-10T10:00:00Z", "2025-03-10T11:00:00Z"),
	}}
	s := NewSyncer(db, src, PolicyWithDescription, 100, nil)

	got, err := s.Sync(context.Background(), 1, time.Now(), time.Time{}, []string{"alpha"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "evt-a", got[0].GoogleEventID)

	// Персистентность безусловна: в базе оба события.
	assert.Equal(t, int64(2), countEvents(t, db))
}

func TestSyncFilterIsCaseSensitive(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{events: []CalendarEvent{
		timedEvent("evt-a", "A", "#Alpha work", "2025-03-10T09:00:00Z", "2025-03-10T10:00:00Z"),
	}}
	s := NewSyncer(db, src, PolicyWithDescription, 100, nil)

	got, err := s.Sync(context.Background(), 1, time.Now(), time.Time{}, []string{"alpha"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSyncPreservesNegativeDuration(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{events: []CalendarEvent{
		timedEvent("evt-1", "Reversed", "", "2025-03-10T10:00:00Z", "2025-03-10T09:00:00Z"),
	}}
	s := NewSyncer(db, src, PolicyWithDescription, 100, nil)

	got, err := s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, -60, got[0].Duration)
}

func TestSyncUnknownTimesSentinel(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{events: []CalendarEvent{
		{ID: "evt-1", Summary: "No times at all"},
	}}
	s := NewSyncer(db, src, PolicyWithDescription, 100, nil)

	got, err := s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Duration)
	assert.True(t, got[0].StartTime.IsZero())

	// Событие все равно сохранено: повторная синхронизация сможет его починить.
	assert.Equal(t, int64(1), countEvents(t, db))
}

func TestSyncSkipsEventsWithoutID(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{events: []CalendarEvent{
		{Summary: "ghost"},
		timedEvent("evt-1", "Real", "", "2025-03-10T09:00:00Z", "2025-03-10T10:00:00Z"),
	}}
	s := NewSyncer(db, src, PolicyWithDescription, 100, nil)

	got, err := s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(1), countEvents(t, db))
}

func TestSyncFetchFailureWritesNothing(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{err: errors.New("upstream exploded")}
	s := NewSyncer(db, src, PolicyWithDescription, 100, nil)

	_, err := s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.Error(t, err)
	assert.Equal(t, int64(0), countEvents(t, db))
}

func TestSyncReassociatesTagsOnResync(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{events: []CalendarEvent{
		timedEvent("evt-1", "Meeting", "#alpha notes", "2025-03-10T09:00:00Z", "2025-03-10T10:00:00Z"),
	}}
	s := NewSyncer(db, src, PolicyWithDescription, 100, nil)

	_, err := s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)

	// Тег в тексте заменили - ассоциации заменяются, а не накапливаются.
	src.events[0].Description = "#beta notes"
	_, err = s.Sync(context.Background(), 1, time.Now(), time.Time{}, nil)
	require.NoError(t, err)

	var stored models.Event
	require.NoError(t, db.Preload("ProjectTags").Where("google_event_id = ?", "evt-1").First(&stored).Error)
	require.Len(t, stored.ProjectTags, 1)
	assert.Equal(t, "beta", stored.ProjectTags[0].Tag)

	// Сама запись реестра при этом не удаляется.
	var tags int64
	require.NoError(t, db.Model(&models.ProjectTag{}).Count(&tags).Error)
	assert.Equal(t, int64(2), tags)
}
