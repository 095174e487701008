// Package monitor implements the trigger detection monitors. Each monitor
// covers one source type (news, regulatory, tender, financial) and turns
// source data into scored trigger results.
package monitor

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/trigger-cli/internal/analyze"
	"github.com/sells-group/trigger-cli/internal/config"
	"github.com/sells-group/trigger-cli/internal/fetch"
	"github.com/sells-group/trigger-cli/internal/model"
	"github.com/sells-group/trigger-cli/internal/text"
)

// Monitor is one trigger source. Fetch pulls source data and parses it
// into items, deduplicating within the run; Analyze turns items into
// scored trigger results.
type Monitor interface {
	Name() string
	SourceType() model.SourceType
	Fetch(ctx context.Context) ([]model.Item, error)
	Analyze(items []model.Item) []model.TriggerResult
}

// Deps bundles the fetchers and analyzers the monitors share.
type Deps struct {
	Client    *fetch.Client
	Feeds     *fetch.FeedFetcher
	Keywords  *analyze.KeywordDetector
	Sentiment *analyze.SentimentAnalyzer
	Quantity  *analyze.QuantityAnalyzer
	Cfg       *config.Config
}

// NewDeps builds the shared dependency set from configuration.
func NewDeps(cfg *config.Config, keywords map[string][]string) *Deps {
	client := fetch.NewClient(fetch.Options{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
		RatePerSec: cfg.Fetch.RatePerSec,
	})
	return &Deps{
		Client:    client,
		Feeds:     fetch.NewFeedFetcher(client, cfg.Fetch.ItemsPerFeed),
		Keywords:  analyze.NewKeywordDetector(keywords),
		Sentiment: analyze.NewSentimentAnalyzer(cfg.Sentiment.Engine, nil),
		Quantity:  analyze.NewQuantityAnalyzer(nil),
		Cfg:       cfg,
	}
}

// All returns every monitor enabled in the configuration.
func All(deps *Deps) []Monitor {
	var monitors []Monitor
	if deps.Cfg.Monitors.News.Enabled {
		monitors = append(monitors, NewNewsMonitor(deps))
	}
	if deps.Cfg.Monitors.Regulatory.Enabled {
		monitors = append(monitors, NewRegulatoryMonitor(deps))
	}
	if deps.Cfg.Monitors.Tender.Enabled {
		monitors = append(monitors, NewTenderMonitor(deps))
	}
	if deps.Cfg.Monitors.Financial.Enabled {
		monitors = append(monitors, NewFinancialMonitor(deps))
	}
	return monitors
}

// ByName returns the monitor for a source type name, or nil.
func ByName(deps *Deps, name string) Monitor {
	switch model.SourceType(name) {
	case model.SourceNews:
		return NewNewsMonitor(deps)
	case model.SourceRegulatory:
		return NewRegulatoryMonitor(deps)
	case model.SourceTender:
		return NewTenderMonitor(deps)
	case model.SourceFinancial:
		return NewFinancialMonitor(deps)
	default:
		return nil
	}
}

// Run executes one full monitoring cycle and returns the results sorted by
// trigger score, highest first, together with an audit record. A fetch
// failure is recorded on the run rather than returned; a monitor that
// cannot reach its source yields zero results.
func Run(ctx context.Context, m Monitor) ([]model.TriggerResult, model.MonitorRun) {
	run := model.MonitorRun{
		ID:         uuid.NewString(),
		SourceType: m.SourceType(),
		Monitor:    m.Name(),
		StartedAt:  time.Now(),
	}
	log := zap.L().With(zap.String("monitor", m.Name()))
	log.Info("monitor run started")

	items, err := m.Fetch(ctx)
	if err != nil {
		run.Error = err.Error()
		run.FinishedAt = time.Now()
		log.Error("monitor fetch failed", zap.Error(err))
		return nil, run
	}
	run.Items = len(items)
	if len(items) == 0 {
		run.FinishedAt = time.Now()
		log.Warn("no items fetched")
		return nil, run
	}

	results := m.Analyze(items)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TriggerScore > results[j].TriggerScore
	})

	run.Triggers = len(results)
	run.FinishedAt = time.Now()
	log.Info("monitor run finished",
		zap.Int("items", run.Items),
		zap.Int("triggers", run.Triggers),
		zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)),
	)
	return results, run
}

// seenSet deduplicates items within a single run by content fingerprint.
// Cross-run deduplication happens at the store via the persisted hash.
type seenSet map[string]bool

func (s seenSet) duplicate(parts ...string) bool {
	fp := text.Fingerprint(parts...)
	if s[fp] {
		return true
	}
	s[fp] = true
	return false
}

// itemAge returns the time since publication, or zero when the publish
// date is unknown.
func itemAge(published *time.Time) time.Duration {
	if published == nil {
		return 0
	}
	return time.Since(*published)
}

// truncate limits stored content to n runes.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// dedupKeywords removes repeated keywords preserving first-seen order.
func dedupKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := keywords[:0]
	for _, kw := range keywords {
		if seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// containsAny reports whether the lower-cased text contains any term.
func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// sortedNames returns map keys in stable order so feeds are always
// fetched in the same sequence.
func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
