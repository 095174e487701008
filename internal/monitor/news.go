package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/trigger-cli/internal/analyze"
	"github.com/sells-group/trigger-cli/internal/model"
	"github.com/sells-group/trigger-cli/internal/text"
)

// NewsMonitor scans pharma industry RSS feeds for business triggers:
// partnership announcements, approvals, expansions, and competitor issues.
type NewsMonitor struct {
	deps *Deps
	seen seenSet
}

// NewNewsMonitor creates the news monitor.
func NewNewsMonitor(deps *Deps) *NewsMonitor {
	return &NewsMonitor{deps: deps, seen: make(seenSet)}
}

func (m *NewsMonitor) Name() string                 { return "NewsMonitor" }
func (m *NewsMonitor) SourceType() model.SourceType { return model.SourceNews }

// Fetch pulls every configured news feed. A feed that fails to fetch or
// parse is logged and skipped; the run continues with the rest.
func (m *NewsMonitor) Fetch(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	for _, name := range sortedNames(m.deps.Cfg.Feeds.News) {
		url := m.deps.Cfg.Feeds.News[name]
		entries, err := m.deps.Feeds.Fetch(ctx, url)
		if err != nil {
			zap.L().Warn("news feed fetch failed",
				zap.String("feed", name),
				zap.Error(err),
			)
			continue
		}

		for _, e := range entries {
			if m.seen.duplicate(e.Title, e.Description) {
				continue
			}
			items = append(items, model.Item{
				Source:      "rss_" + name,
				Title:       text.Clean(e.Title),
				Content:     text.Clean(e.Description),
				URL:         e.Link,
				PublishedAt: e.Published,
				Raw: map[string]any{
					"feed": name,
					"link": e.Link,
				},
			})
		}
	}
	return items, nil
}

// Analyze keeps only items that contain trigger keywords and scores them.
func (m *NewsMonitor) Analyze(items []model.Item) []model.TriggerResult {
	reliability := m.deps.Cfg.Monitors.News.Reliability
	maxLen := m.deps.Cfg.Fetch.MaxContentLen

	var results []model.TriggerResult
	for _, item := range items {
		fullText := item.Title + " " + item.Content

		keywords := m.deps.Keywords.MatchedKeywords(fullText)
		if len(keywords) == 0 {
			continue
		}

		sentiment := m.deps.Sentiment.Analyze(fullText)
		score := analyze.TriggerScore(
			len(keywords),
			sentiment.Polarity,
			itemAge(item.PublishedAt),
			reliability,
		)

		results = append(results, model.TriggerResult{
			SourceType:      m.SourceType(),
			SourceName:      item.Source,
			Title:           item.Title,
			Content:         truncate(item.Content, maxLen),
			URL:             item.URL,
			CompanyName:     text.ExtractCompanyName(fullText),
			TriggerKeywords: keywords,
			SentimentScore:  sentiment.Polarity,
			TriggerScore:    score,
			DetectedAt:      time.Now(),
			PublishedAt:     item.PublishedAt,
			Raw:             item.Raw,
		})
	}
	return results
}
