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

// Regulatory item classes.
const (
	regApproval = "approval"
	regFDAAlert = "fda_alert"
	regPatent   = "patent"
)

// regulatoryTerms gates which feed entries count as regulatory news.
var regulatoryTerms = []string{
	"cdsco", "dcgi", "fda", "approval", "patent", "recall",
	"warning letter", "import alert", "483", "inspection", "license",
}

// RegulatoryMonitor scans regulator and industry feeds for approvals,
// alerts, and patent news. An adverse alert against a competitor is an
// opportunity for the monitored business, so high-severity alerts get
// their sentiment flipped when the source is configured for it.
type RegulatoryMonitor struct {
	deps *Deps
	seen seenSet
}

// NewRegulatoryMonitor creates the regulatory monitor.
func NewRegulatoryMonitor(deps *Deps) *RegulatoryMonitor {
	return &RegulatoryMonitor{deps: deps, seen: make(seenSet)}
}

func (m *RegulatoryMonitor) Name() string                 { return "RegulatoryMonitor" }
func (m *RegulatoryMonitor) SourceType() model.SourceType { return model.SourceRegulatory }

// Fetch pulls the regulatory feeds and keeps entries that mention a
// regulatory term, classifying each by type and severity.
func (m *RegulatoryMonitor) Fetch(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	for _, name := range sortedNames(m.deps.Cfg.Feeds.Regulatory) {
		url := m.deps.Cfg.Feeds.Regulatory[name]
		entries, err := m.deps.Feeds.Fetch(ctx, url)
		if err != nil {
			zap.L().Warn("regulatory feed fetch failed",
				zap.String("feed", name),
				zap.Error(err),
			)
			continue
		}

		for _, e := range entries {
			fullText := e.Title + " " + e.Description
			lower := strings.ToLower(fullText)
			if !containsAny(lower, regulatoryTerms) {
				continue
			}
			if m.seen.duplicate(e.Title, e.Description) {
				continue
			}

			regType, severity := classifyRegulatory(name, lower)
			items = append(items, model.Item{
				Source:      "reg_" + name,
				Title:       text.Clean(e.Title),
				Content:     text.Clean(e.Description),
				URL:         e.Link,
				Company:     text.ExtractCompanyName(fullText),
				PublishedAt: e.Published,
				Raw: map[string]any{
					"feed":     name,
					"reg_type": regType,
					"severity": severity,
				},
			})
		}
	}
	return items, nil
}

// classifyRegulatory buckets an entry by regulator and severity. FDA
// alerts mentioning a warning are high severity.
func classifyRegulatory(feed, lower string) (regType, severity string) {
	switch {
	case strings.Contains(feed, "fda") || strings.Contains(lower, "fda"):
		if strings.Contains(lower, "warning") {
			return regFDAAlert, "high"
		}
		return regFDAAlert, "medium"
	case strings.Contains(lower, "patent"):
		return regPatent, "neutral"
	default:
		return regApproval, "positive"
	}
}

// Analyze scores regulatory items. Every item counts one extra keyword
// match for being regulatory, and type-specific tags are appended so the
// keyword list always names what kind of event this is.
func (m *RegulatoryMonitor) Analyze(items []model.Item) []model.TriggerResult {
	cfg := m.deps.Cfg.Monitors.Regulatory
	maxLen := m.deps.Cfg.Fetch.MaxContentLen

	var results []model.TriggerResult
	for _, item := range items {
		fullText := item.Title + " " + item.Content
		lower := strings.ToLower(fullText)

		keywords := m.deps.Keywords.MatchedKeywords(fullText)
		regType, _ := item.Raw["reg_type"].(string)
		severity, _ := item.Raw["severity"].(string)

		if regType == regApproval || strings.Contains(lower, "approval") {
			keywords = append(keywords, "product_approval")
		}
		if regType == regFDAAlert {
			keywords = append(keywords, "fda_alert")
		}
		if regType == regPatent {
			keywords = append(keywords, "patent_news")
		}

		sentiment := m.deps.Sentiment.Analyze(fullText).Polarity
		if regType == regFDAAlert && severity == "high" && cfg.FlipAdverseSentiment {
			sentiment = -sentiment
			keywords = append(keywords, "competitor_issue")
		}
		keywords = dedupKeywords(keywords)

		score := analyze.TriggerScore(
			len(keywords)+1,
			sentiment,
			itemAge(item.PublishedAt),
			cfg.Reliability,
		)

		results = append(results, model.TriggerResult{
			SourceType:      m.SourceType(),
			SourceName:      item.Source,
			Title:           item.Title,
			Content:         truncate(item.Content, maxLen),
			URL:             item.URL,
			CompanyName:     item.Company,
			TriggerKeywords: keywords,
			SentimentScore:  sentiment,
			TriggerScore:    score,
			DetectedAt:      time.Now(),
			PublishedAt:     item.PublishedAt,
			Raw:             item.Raw,
		})
	}
	return results
}
