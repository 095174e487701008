package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/trigger-cli/internal/model"
	"github.com/sells-group/trigger-cli/internal/text"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock implements
// it, which is what the unit tests rely on.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS triggers (
	id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	source_type      TEXT NOT NULL,
	source_name      TEXT NOT NULL,
	title            TEXT NOT NULL,
	content          TEXT NOT NULL DEFAULT '',
	url              TEXT NOT NULL DEFAULT '',
	company_name     TEXT NOT NULL DEFAULT '',
	trigger_keywords JSONB NOT NULL DEFAULT '[]',
	sentiment_score  DOUBLE PRECISION NOT NULL DEFAULT 0,
	trigger_score    DOUBLE PRECISION NOT NULL DEFAULT 0,
	detected_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at     TIMESTAMPTZ,
	is_processed     BOOLEAN NOT NULL DEFAULT false,
	is_archived      BOOLEAN NOT NULL DEFAULT false,
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
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_triggers_source_type ON triggers(source_type);
CREATE INDEX IF NOT EXISTS idx_triggers_score ON triggers(trigger_score DESC);
CREATE INDEX IF NOT EXISTS idx_triggers_company ON triggers(company_name);
CREATE INDEX IF NOT EXISTS idx_triggers_detected ON triggers(detected_at DESC);
CREATE INDEX IF NOT EXISTS idx_monitor_runs_started ON monitor_runs(started_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) InsertTrigger(ctx context.Context, ev model.TriggerEvent) (int64, error) {
	keywordsJSON, err := json.Marshal(ev.TriggerKeywords)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: marshal keywords")
	}

	detectedAt := ev.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now().UTC()
	}
	hash := text.Fingerprint(ev.Title, ev.Content, ev.URL)

	var id int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO triggers (
			source_type, source_name, title, content, url,
			company_name, trigger_keywords, sentiment_score,
			trigger_score, detected_at, published_at,
			is_processed, is_archived, notes, content_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (content_hash) DO NOTHING
		RETURNING id`,
		string(ev.SourceType), ev.SourceName, ev.Title, ev.Content, ev.URL,
		ev.CompanyName, keywordsJSON, ev.SentimentScore,
		ev.TriggerScore, detectedAt, ev.PublishedAt,
		ev.Processed, ev.Archived, ev.Notes, hash,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Duplicate content hash.
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert trigger")
	}
	return id, nil
}

func (s *PostgresStore) QueryTriggers(ctx context.Context, filter Filter) ([]model.TriggerEvent, error) {
	query := `SELECT ` + triggerColumns + ` FROM triggers WHERE true`
	args := []any{}
	argIdx := 1

	if !filter.IncludeArchived {
		query += ` AND is_archived = false`
	}
	if filter.SourceType != "" {
		query += fmt.Sprintf(` AND source_type = $%d`, argIdx)
		args = append(args, filter.SourceType)
		argIdx++
	}
	if filter.Company != "" {
		query += fmt.Sprintf(` AND company_name ILIKE $%d`, argIdx)
		args = append(args, "%"+filter.Company+"%")
		argIdx++
	}
	if filter.MinScore > 0 {
		query += fmt.Sprintf(` AND trigger_score >= $%d`, argIdx)
		args = append(args, filter.MinScore)
		argIdx++
	}

	query += fmt.Sprintf(` ORDER BY trigger_score DESC, detected_at DESC LIMIT $%d`, argIdx)
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query triggers")
	}
	defer rows.Close()

	var events []model.TriggerEvent
	for rows.Next() {
		ev, err := scanPgTrigger(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, eris.Wrap(rows.Err(), "postgres: query triggers iterate")
}

func (s *PostgresStore) GetTrigger(ctx context.Context, id int64) (*model.TriggerEvent, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+triggerColumns+` FROM triggers WHERE id = $1`, id,
	)
	ev, err := scanPgTrigger(row)
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("trigger not found: %d", id)
	}
	return ev, err
}

func (s *PostgresStore) MarkProcessed(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE triggers SET is_processed = true WHERE id = $1`, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark processed %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("trigger not found: %d", id)
	}
	return nil
}

func (s *PostgresStore) Archive(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE triggers SET is_archived = true WHERE id = $1`, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: archive trigger %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("trigger not found: %d", id)
	}
	return nil
}

func (s *PostgresStore) SetNotes(ctx context.Context, id int64, notes string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE triggers SET notes = $1 WHERE id = $2`, notes, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set notes %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("trigger not found: %d", id)
	}
	return nil
}

func (s *PostgresStore) Stats(ctx context.Context) (*model.TriggerStats, error) {
	stats := &model.TriggerStats{BySource: make(map[string]int)}

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM triggers WHERE is_archived = false`,
	).Scan(&stats.TotalTriggers)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count triggers")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT source_type, COUNT(*) FROM triggers WHERE is_archived = false GROUP BY source_type`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count by source")
	}
	defer rows.Close()
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan source count")
		}
		stats.BySource[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: count by source iterate")
	}

	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM triggers WHERE trigger_score >= $1 AND is_archived = false`,
		highScoreThreshold,
	).Scan(&stats.HighScoreCount)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count high score")
	}

	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM triggers
		 WHERE detected_at >= now() - interval '1 day' AND is_archived = false`,
	).Scan(&stats.RecentTriggers)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count recent")
	}

	companyRows, err := s.pool.Query(ctx,
		`SELECT company_name, COUNT(*) AS count FROM triggers
		 WHERE company_name != '' AND is_archived = false
		 GROUP BY company_name ORDER BY count DESC LIMIT 10`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: top companies")
	}
	defer companyRows.Close()
	for companyRows.Next() {
		var cc model.CompanyCount
		if err := companyRows.Scan(&cc.Company, &cc.Count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company count")
		}
		stats.TopCompanies = append(stats.TopCompanies, cc)
	}
	return stats, eris.Wrap(companyRows.Err(), "postgres: top companies iterate")
}

func (s *PostgresStore) RecordRun(ctx context.Context, run model.MonitorRun) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO monitor_runs (id, source_type, monitor, items, triggers, stored, error, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, string(run.SourceType), run.Monitor, run.Items, run.Triggers,
		run.Stored, run.Error, run.StartedAt, run.FinishedAt,
	)
	return eris.Wrap(err, "postgres: record run")
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.MonitorRun, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_type, monitor, items, triggers, stored, error, started_at, finished_at
		 FROM monitor_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.MonitorRun
	for rows.Next() {
		var r model.MonitorRun
		var sourceType string
		if err := rows.Scan(&r.ID, &sourceType, &r.Monitor, &r.Items, &r.Triggers,
			&r.Stored, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.SourceType = model.SourceType(sourceType)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func scanPgTrigger(row pgx.Row) (*model.TriggerEvent, error) {
	var ev model.TriggerEvent
	var sourceType string
	var keywordsJSON []byte
	var publishedAt *time.Time

	err := row.Scan(&ev.ID, &sourceType, &ev.SourceName, &ev.Title, &ev.Content,
		&ev.URL, &ev.CompanyName, &keywordsJSON, &ev.SentimentScore,
		&ev.TriggerScore, &ev.DetectedAt, &publishedAt, &ev.Processed, &ev.Archived, &ev.Notes)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan trigger")
	}

	ev.SourceType = model.SourceType(sourceType)
	if err := json.Unmarshal(keywordsJSON, &ev.TriggerKeywords); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal keywords")
	}
	ev.PublishedAt = publishedAt
	return &ev, nil
}
