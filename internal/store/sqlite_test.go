package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trigger-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleEvent(title string, score float64) model.TriggerEvent {
	return model.TriggerEvent{
		SourceType:      model.SourceNews,
		SourceName:      "rss_pharmabiz",
		Title:           title,
		Content:         "Details about " + title,
		URL:             "https://example.com/" + title,
		CompanyName:     "XYZ Pharma",
		TriggerKeywords: []string{"seeks manufacturing partner"},
		SentimentScore:  0.25,
		TriggerScore:    score,
		DetectedAt:      time.Now().UTC(),
	}
}

func TestSQLite_InsertAndGetTrigger(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.InsertTrigger(ctx, sampleEvent("partner deal", 7.5))
	require.NoError(t, err)
	require.Positive(t, id)

	ev, err := st.GetTrigger(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "partner deal", ev.Title)
	assert.Equal(t, model.SourceNews, ev.SourceType)
	assert.Equal(t, []string{"seeks manufacturing partner"}, ev.TriggerKeywords)
	assert.Equal(t, 7.5, ev.TriggerScore)
	assert.False(t, ev.Processed)
	assert.False(t, ev.Archived)
}

func TestSQLite_InsertDuplicateReturnsZero(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	ev := sampleEvent("same story", 6.0)
	id, err := st.InsertTrigger(ctx, ev)
	require.NoError(t, err)
	require.Positive(t, id)

	// Same title, content, and URL: same fingerprint.
	dup, err := st.InsertTrigger(ctx, ev)
	require.NoError(t, err)
	assert.Zero(t, dup)

	events, err := st.QueryTriggers(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSQLite_QueryTriggersFilters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i, tc := range []struct {
		title string
		src   model.SourceType
		score float64
	}{
		{"low news", model.SourceNews, 3.0},
		{"high news", model.SourceNews, 8.5},
		{"mid tender", model.SourceTender, 7.2},
	} {
		ev := sampleEvent(tc.title, tc.score)
		ev.SourceType = tc.src
		ev.URL = ev.URL + suffix(i)
		_, err := st.InsertTrigger(ctx, ev)
		require.NoError(t, err)
	}

	byType, err := st.QueryTriggers(ctx, Filter{SourceType: "news"})
	require.NoError(t, err)
	require.Len(t, byType, 2)
	// Ordered by score descending.
	assert.Equal(t, "high news", byType[0].Title)

	byScore, err := st.QueryTriggers(ctx, Filter{MinScore: 7.0, Limit: 5})
	require.NoError(t, err)
	require.Len(t, byScore, 2)
	assert.Equal(t, "high news", byScore[0].Title)
	assert.Equal(t, "mid tender", byScore[1].Title)

	byCompany, err := st.QueryTriggers(ctx, Filter{Company: "xyz"})
	require.NoError(t, err)
	// LIKE is case-insensitive for ASCII in SQLite.
	assert.Len(t, byCompany, 3)
}

func suffix(i int) string {
	return string(rune('a' + i))
}

func TestSQLite_QueryTriggersExcludesArchived(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.InsertTrigger(ctx, sampleEvent("to archive", 5.0))
	require.NoError(t, err)
	require.NoError(t, st.Archive(ctx, id))

	events, err := st.QueryTriggers(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, events)

	all, err := st.QueryTriggers(ctx, Filter{IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Archived)
}

func TestSQLite_MarkProcessed(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.InsertTrigger(ctx, sampleEvent("to process", 5.0))
	require.NoError(t, err)
	require.NoError(t, st.MarkProcessed(ctx, id))

	ev, err := st.GetTrigger(ctx, id)
	require.NoError(t, err)
	assert.True(t, ev.Processed)
}

func TestSQLite_MarkProcessedNotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	err := st.MarkProcessed(context.Background(), 9999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_SetNotes(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.InsertTrigger(ctx, sampleEvent("noted", 5.0))
	require.NoError(t, err)
	require.NoError(t, st.SetNotes(ctx, id, "called the company"))

	ev, err := st.GetTrigger(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "called the company", ev.Notes)
}

func TestSQLite_Stats(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	high := sampleEvent("big deal", 9.0)
	_, err := st.InsertTrigger(ctx, high)
	require.NoError(t, err)

	low := sampleEvent("small deal", 4.0)
	low.SourceType = model.SourceTender
	low.CompanyName = "Acme Labs"
	_, err = st.InsertTrigger(ctx, low)
	require.NoError(t, err)

	archived := sampleEvent("old deal", 8.0)
	archivedID, err := st.InsertTrigger(ctx, archived)
	require.NoError(t, err)
	require.NoError(t, st.Archive(ctx, archivedID))

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTriggers)
	assert.Equal(t, 1, stats.BySource["news"])
	assert.Equal(t, 1, stats.BySource["tender"])
	assert.Equal(t, 1, stats.HighScoreCount)
	assert.Equal(t, 2, stats.RecentTriggers)
	require.Len(t, stats.TopCompanies, 2)
}

func TestSQLite_RecordAndListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	run := model.MonitorRun{
		ID:         "run-1",
		SourceType: model.SourceNews,
		Monitor:    "NewsMonitor",
		Items:      10,
		Triggers:   3,
		Stored:     2,
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
	}
	require.NoError(t, st.RecordRun(ctx, run))

	runs, err := st.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "NewsMonitor", runs[0].Monitor)
	assert.Equal(t, 3, runs[0].Triggers)
	assert.Equal(t, model.SourceNews, runs[0].SourceType)
}

func TestSQLite_GetTriggerNotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.GetTrigger(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
