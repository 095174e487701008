package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/trigger-cli/internal/model"
	"github.com/sells-group/trigger-cli/internal/text"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS triggers (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	source_type      TEXT NOT NULL,
	source_name      TEXT NOT NULL,
	title            TEXT NOT NULL,
	content          TEXT NOT NULL DEFAULT '',
	url              TEXT NOT NULL DEFAULT '',
	company_name     TEXT NOT NULL DEFAULT '',
	trigger_keywords TEXT NOT NULL DEFAULT '[]',
	sentiment_score  REAL NOT NULL DEFAULT 0,
	trigger_score    REAL NOT NULL DEFAULT 0,
	detected_at      DATETIME NOT NULL,
	published_at     DATETIME,
	is_processed     INTEGER NOT NULL DEFAULT 0,
	is_archived      INTEGER NOT NULL DEFAULT 0,
	notes            TEXT NOT NULL DEFAULT '',
	content_hash     TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS monitor_runs (
	id          TEXT PRIMARY KEY,
	source_type TEXT NOT NULL,
	monitor     TEXT NOT NULL,
	items       INTEGER NOT NULL DEFAULT 0,
	triggers    INTEGER NOT NULL DEFAULT 0,
	stored      INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_triggers_source_type ON triggers(source_type);
CREATE INDEX IF NOT EXISTS idx_triggers_score ON triggers(trigger_score DESC);
CREATE INDEX IF NOT EXISTS idx_triggers_company ON triggers(company_name);
CREATE INDEX IF NOT EXISTS idx_triggers_detected ON triggers(detected_at DESC);
CREATE INDEX IF NOT EXISTS idx_monitor_runs_started ON monitor_runs(started_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertTrigger(ctx context.Context, ev model.TriggerEvent) (int64, error) {
	keywordsJSON, err := json.Marshal(ev.TriggerKeywords)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: marshal keywords")
	}

	detectedAt := ev.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now().UTC()
	}
	hash := text.Fingerprint(ev.Title, ev.Content, ev.URL)

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO triggers (
			source_type, source_name, title, content, url,
			company_name, trigger_keywords, sentiment_score,
			trigger_score, detected_at, published_at,
			is_processed, is_archived, notes, content_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(ev.SourceType), ev.SourceName, ev.Title, ev.Content, ev.URL,
		ev.CompanyName, string(keywordsJSON), ev.SentimentScore,
		ev.TriggerScore, detectedAt, ev.PublishedAt,
		boolToInt(ev.Processed), boolToInt(ev.Archived), ev.Notes, hash,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert trigger")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		// Duplicate content hash.
		return 0, nil
	}
	id, err := res.LastInsertId()
	return id, eris.Wrap(err, "sqlite: last insert id")
}

const triggerColumns = `id, source_type, source_name, title, content, url,
	company_name, trigger_keywords, sentiment_score, trigger_score,
	detected_at, published_at, is_processed, is_archived, notes`

func (s *SQLiteStore) QueryTriggers(ctx context.Context, filter Filter) ([]model.TriggerEvent, error) {
	query := `SELECT ` + triggerColumns + ` FROM triggers WHERE 1=1`
	var args []any

	if !filter.IncludeArchived {
		query += ` AND is_archived = 0`
	}
	if filter.SourceType != "" {
		query += ` AND source_type = ?`
		args = append(args, filter.SourceType)
	}
	if filter.Company != "" {
		query += ` AND company_name LIKE ?`
		args = append(args, "%"+filter.Company+"%")
	}
	if filter.MinScore > 0 {
		query += ` AND trigger_score >= ?`
		args = append(args, filter.MinScore)
	}

	query += ` ORDER BY trigger_score DESC, detected_at DESC LIMIT ?`
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query triggers")
	}
	defer rows.Close()

	var events []model.TriggerEvent
	for rows.Next() {
		ev, err := scanTrigger(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: query triggers iterate")
}

func (s *SQLiteStore) GetTrigger(ctx context.Context, id int64) (*model.TriggerEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+triggerColumns+` FROM triggers WHERE id = ?`, id,
	)
	ev, err := scanTrigger(row)
	if err == errTriggerNotFound {
		return nil, eris.Errorf("trigger not found: %d", id)
	}
	return ev, err
}

func (s *SQLiteStore) MarkProcessed(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE triggers SET is_processed = 1 WHERE id = ?`, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark processed %d", id)
	}
	return checkRowsAffected(res, "trigger", id)
}

func (s *SQLiteStore) Archive(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE triggers SET is_archived = 1 WHERE id = ?`, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: archive trigger %d", id)
	}
	return checkRowsAffected(res, "trigger", id)
}

func (s *SQLiteStore) SetNotes(ctx context.Context, id int64, notes string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE triggers SET notes = ? WHERE id = ?`, notes, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set notes %d", id)
	}
	return checkRowsAffected(res, "trigger", id)
}

func (s *SQLiteStore) Stats(ctx context.Context) (*model.TriggerStats, error) {
	stats := &model.TriggerStats{BySource: make(map[string]int)}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM triggers WHERE is_archived = 0`,
	).Scan(&stats.TotalTriggers)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count triggers")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_type, COUNT(*) FROM triggers WHERE is_archived = 0 GROUP BY source_type`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count by source")
	}
	defer rows.Close()
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan source count")
		}
		stats.BySource[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: count by source iterate")
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM triggers WHERE trigger_score >= ? AND is_archived = 0`,
		highScoreThreshold,
	).Scan(&stats.HighScoreCount)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count high score")
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM triggers
		 WHERE detected_at >= datetime('now', '-1 day') AND is_archived = 0`,
	).Scan(&stats.RecentTriggers)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count recent")
	}

	companyRows, err := s.db.QueryContext(ctx,
		`SELECT company_name, COUNT(*) AS count FROM triggers
		 WHERE company_name != '' AND is_archived = 0
		 GROUP BY company_name ORDER BY count DESC LIMIT 10`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: top companies")
	}
	defer companyRows.Close()
	for companyRows.Next() {
		var cc model.CompanyCount
		if err := companyRows.Scan(&cc.Company, &cc.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company count")
		}
		stats.TopCompanies = append(stats.TopCompanies, cc)
	}
	return stats, eris.Wrap(companyRows.Err(), "sqlite: top companies iterate")
}

func (s *SQLiteStore) RecordRun(ctx context.Context, run model.MonitorRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO monitor_runs (id, source_type, monitor, items, triggers, stored, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.SourceType), run.Monitor, run.Items, run.Triggers,
		run.Stored, run.Error, run.StartedAt, run.FinishedAt,
	)
	return eris.Wrap(err, "sqlite: record run")
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.MonitorRun, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_type, monitor, items, triggers, stored, error, started_at, finished_at
		 FROM monitor_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.MonitorRun
	for rows.Next() {
		var r model.MonitorRun
		var sourceType string
		if err := rows.Scan(&r.ID, &sourceType, &r.Monitor, &r.Items, &r.Triggers,
			&r.Stored, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.SourceType = model.SourceType(sourceType)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

var errTriggerNotFound = eris.New("trigger not found")

func checkRowsAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %d", entity, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTrigger(row scannable) (*model.TriggerEvent, error) {
	var ev model.TriggerEvent
	var sourceType, keywordsJSON string
	var publishedAt sql.NullTime
	var processed, archived int

	err := row.Scan(&ev.ID, &sourceType, &ev.SourceName, &ev.Title, &ev.Content,
		&ev.URL, &ev.CompanyName, &keywordsJSON, &ev.SentimentScore,
		&ev.TriggerScore, &ev.DetectedAt, &publishedAt, &processed, &archived, &ev.Notes)
	if err == sql.ErrNoRows {
		return nil, errTriggerNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan trigger")
	}

	ev.SourceType = model.SourceType(sourceType)
	if err := json.Unmarshal([]byte(keywordsJSON), &ev.TriggerKeywords); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal keywords")
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		ev.PublishedAt = &t
	}
	ev.Processed = processed != 0
	ev.Archived = archived != 0
	return &ev, nil
}
