package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trigger-cli/internal/config"
	"github.com/sells-group/trigger-cli/internal/model"
	"github.com/sells-group/trigger-cli/internal/monitor"
	"github.com/sells-group/trigger-cli/internal/store"
)

// initStore opens the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		path := cfg.Store.Path
		if path == "" {
			path = "triggers.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("store.database_url is required for the postgres driver")
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initDeps builds the monitor dependency set, loading the keyword table
// override when one is configured.
func initDeps() (*monitor.Deps, error) {
	var keywords map[string][]string
	if cfg.KeywordsFile != "" {
		var err error
		keywords, err = config.LoadKeywordsFile(cfg.KeywordsFile)
		if err != nil {
			return nil, err
		}
	}
	return monitor.NewDeps(cfg, keywords), nil
}

// storeResults persists one run's results and its audit record. Stored
// counts rows actually inserted; fingerprint duplicates are skipped.
func storeResults(ctx context.Context, st store.Store, results []model.TriggerResult, run model.MonitorRun) (stored, duplicates int) {
	for _, r := range results {
		id, err := st.InsertTrigger(ctx, r.Event())
		if err != nil {
			zap.L().Warn("trigger insert failed",
				zap.String("title", r.Title),
				zap.Error(err),
			)
			continue
		}
		if id == 0 {
			duplicates++
			continue
		}
		stored++
	}

	run.Stored = stored
	if err := st.RecordRun(ctx, run); err != nil {
		zap.L().Warn("run record failed", zap.String("run_id", run.ID), zap.Error(err))
	}
	return stored, duplicates
}
