package monitor

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/trigger-cli/internal/analyze"
	"github.com/sells-group/trigger-cli/internal/model"
	"github.com/sells-group/trigger-cli/internal/text"
)

// tenderTerms gates which feed entries count as procurement news.
var tenderTerms = []string{
	"tender", "procurement", "bid", "contract", "supply order",
	"gem portal", "government supply", "hospital supply", "bulk drug",
	"rate contract", "purchase order", "empanelment", "auction",
}

// tenderDefaultAge is assumed when a tender has no publish date.
const tenderDefaultAge = 7 * 24 * time.Hour

// TenderMonitor scans procurement news for supply opportunities and sizes
// them by the quantities mentioned in the text.
type TenderMonitor struct {
	deps *Deps
	seen seenSet
}

// NewTenderMonitor creates the tender monitor.
func NewTenderMonitor(deps *Deps) *TenderMonitor {
	return &TenderMonitor{deps: deps, seen: make(seenSet)}
}

func (m *TenderMonitor) Name() string                 { return "TenderMonitor" }
func (m *TenderMonitor) SourceType() model.SourceType { return model.SourceTender }

// Fetch pulls the tender feeds and keeps entries mentioning procurement
// terms.
func (m *TenderMonitor) Fetch(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	for _, name := range sortedNames(m.deps.Cfg.Feeds.Tender) {
		url := m.deps.Cfg.Feeds.Tender[name]
		entries, err := m.deps.Feeds.Fetch(ctx, url)
		if err != nil {
			zap.L().Warn("tender feed fetch failed",
				zap.String("feed", name),
				zap.Error(err),
			)
			continue
		}

		for _, e := range entries {
			fullText := e.Title + " " + e.Description
			if !containsAny(strings.ToLower(fullText), tenderTerms) {
				continue
			}
			if m.seen.duplicate(e.Title, e.Description) {
				continue
			}

			organization := text.ExtractCompanyName(fullText)
			if organization == "" {
				organization = name
			}
			items = append(items, model.Item{
				Source:      "rss_" + name + "_tender",
				Title:       text.Clean(e.Title),
				Content:     text.Clean(e.Description),
				URL:         e.Link,
				Company:     organization,
				PublishedAt: e.Published,
				Raw: map[string]any{
					"feed": name,
				},
			})
		}
	}
	return items, nil
}

// Analyze scores tenders. The quantity analysis feeds the score two ways:
// large volumes earn the high_volume_tender tag, and the opportunity
// score adds up to one point of sentiment on top of the neutral-positive
// baseline. The stored sentiment stays at the 0.5 baseline since tender
// text carries no real polarity.
func (m *TenderMonitor) Analyze(items []model.Item) []model.TriggerResult {
	cfg := m.deps.Cfg.Monitors.Tender
	maxLen := m.deps.Cfg.Fetch.MaxContentLen

	var results []model.TriggerResult
	for _, item := range items {
		fullText := item.Title + " " + item.Content

		keywords := m.deps.Keywords.MatchedKeywords(fullText)
		keywords = append(keywords, "tender_opportunity")

		tender := m.deps.Quantity.AnalyzeTender(fullText)
		if tender.OpportunityScore > 5 {
			keywords = append(keywords, "high_volume_tender")
		}
		keywords = dedupKeywords(keywords)

		age := tenderDefaultAge
		if item.PublishedAt != nil {
			age = time.Since(*item.PublishedAt)
		}

		quantityBonus := tender.OpportunityScore / 10
		score := analyze.TriggerScore(len(keywords), 0.5+quantityBonus, age, cfg.Reliability)

		raw := item.Raw
		if raw == nil {
			raw = make(map[string]any)
		}
		raw["scale"] = string(tender.MaxScale)
		raw["estimated_value_inr"] = tender.TotalEstimatedValue
		raw["estimated_value"] = text.FormatINR(tender.TotalEstimatedValue)
		raw["recommendation"] = tender.Recommendation

		results = append(results, model.TriggerResult{
			SourceType:      m.SourceType(),
			SourceName:      item.Source,
			Title:           item.Title,
			Content:         truncate(item.Content, maxLen),
			URL:             item.URL,
			CompanyName:     item.Company,
			TriggerKeywords: keywords,
			SentimentScore:  0.5,
			TriggerScore:    score,
			DetectedAt:      time.Now(),
			PublishedAt:     item.PublishedAt,
			Raw:             raw,
		})
	}
	return results
}
