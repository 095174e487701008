package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trigger-cli/internal/model"
	"github.com/sells-group/trigger-cli/internal/store"
)

func newTestAPI(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	srv := httptest.NewServer(newAPIHandler(st))
	t.Cleanup(srv.Close)
	return srv, st
}

func seedTrigger(t *testing.T, st store.Store, title string, score float64) int64 {
	t.Helper()
	id, err := st.InsertTrigger(context.Background(), model.TriggerEvent{
		SourceType:      model.SourceNews,
		SourceName:      "rss_pharmabiz",
		Title:           title,
		Content:         "Details about " + title,
		URL:             "https://example.com/" + title,
		CompanyName:     "XYZ Pharma",
		TriggerKeywords: []string{"contract manufacturing"},
		SentimentScore:  0.2,
		TriggerScore:    score,
		DetectedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Positive(t, id)
	return id
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestAPIHealth(t *testing.T) {
	srv, _ := newTestAPI(t)

	var body map[string]string
	code := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestAPITriggersFiltered(t *testing.T) {
	srv, st := newTestAPI(t)
	seedTrigger(t, st, "big deal", 8.5)
	seedTrigger(t, st, "small deal", 3.0)

	var body struct {
		Count    int                  `json:"count"`
		Triggers []model.TriggerEvent `json:"triggers"`
	}
	code := getJSON(t, srv.URL+"/triggers?min_score=7", &body)
	assert.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "big deal", body.Triggers[0].Title)
}

func TestAPITriggersBadQuery(t *testing.T) {
	srv, _ := newTestAPI(t)

	var body map[string]string
	code := getJSON(t, srv.URL+"/triggers?min_score=high", &body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "min_score")
}

func TestAPITriggerByID(t *testing.T) {
	srv, st := newTestAPI(t)
	id := seedTrigger(t, st, "lookup me", 6.0)

	var ev model.TriggerEvent
	code := getJSON(t, srv.URL+"/triggers/"+itoa(id), &ev)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "lookup me", ev.Title)

	var errBody map[string]string
	code = getJSON(t, srv.URL+"/triggers/9999", &errBody)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAPIStats(t *testing.T) {
	srv, st := newTestAPI(t)
	seedTrigger(t, st, "one", 8.0)
	seedTrigger(t, st, "two", 4.0)

	var stats model.TriggerStats
	code := getJSON(t, srv.URL+"/stats", &stats)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, stats.TotalTriggers)
	assert.Equal(t, 1, stats.HighScoreCount)
}

func TestAPIRuns(t *testing.T) {
	srv, st := newTestAPI(t)
	require.NoError(t, st.RecordRun(context.Background(), model.MonitorRun{
		ID:         "run-1",
		SourceType: model.SourceNews,
		Monitor:    "NewsMonitor",
		Items:      5,
		Triggers:   2,
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}))

	var body struct {
		Count int                `json:"count"`
		Runs  []model.MonitorRun `json:"runs"`
	}
	code := getJSON(t, srv.URL+"/runs", &body)
	assert.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "NewsMonitor", body.Runs[0].Monitor)
}

func itoa(id int64) string {
	return fmt.Sprintf("%d", id)
}
