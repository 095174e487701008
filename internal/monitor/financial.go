package monitor

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/trigger-cli/internal/analyze"
	"github.com/sells-group/trigger-cli/internal/model"
	"github.com/sells-group/trigger-cli/internal/text"
)

// jobSignalScore is the fixed trigger score for a detected outsourcing
// hiring pattern. The signal is strong enough that the usual four-part
// score would undersell it.
const jobSignalScore = 8.0

// maxTrackedCompanies caps how many companies get a job posting scan per
// run.
const maxTrackedCompanies = 10

var financialTerms = []string{
	"result", "revenue", "profit", "growth", "expansion",
	"capex", "capacity", "quarter", "annual",
}

var salesJobTerms = []string{
	"sales", "marketing", "business development", "mr ", "medical representative",
}

var manufacturingJobTerms = []string{
	"production", "manufacturing", "plant", "operator", "quality control", "qc", "qa",
}

// jobPattern is the hiring profile scraped for one company.
type jobPattern struct {
	Company           string
	SalesJobs         int
	ManufacturingJobs int
	TotalJobs         int
}

// outsourcing reports whether the pattern suggests the company sells but
// does not make: heavy sales hiring with zero manufacturing roles.
func (p jobPattern) outsourcing() bool {
	return p.SalesJobs > 3 && p.ManufacturingJobs == 0 && p.TotalJobs >= 5
}

// FinancialMonitor watches growth indicators: screener tables of quarterly
// results, exchange filings, and job posting patterns that suggest a
// company is outsourcing manufacturing.
type FinancialMonitor struct {
	deps *Deps
	seen seenSet
}

// NewFinancialMonitor creates the financial monitor.
func NewFinancialMonitor(deps *Deps) *FinancialMonitor {
	return &FinancialMonitor{deps: deps, seen: make(seenSet)}
}

func (m *FinancialMonitor) Name() string                 { return "FinancialMonitor" }
func (m *FinancialMonitor) SourceType() model.SourceType { return model.SourceFinancial }

// Fetch gathers quarterly results, exchange filings, and job posting
// signals. Every source is best-effort; a run with partial data is still
// useful.
func (m *FinancialMonitor) Fetch(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	items = append(items, m.fetchQuarterlyResults(ctx)...)
	items = append(items, m.fetchFilings(ctx)...)
	items = append(items, m.fetchJobSignals(ctx)...)
	return items, nil
}

// fetchQuarterlyResults scrapes the screener table of pharma companies.
// When no screener URL yields rows, the fallback feed fills in with
// financial news items.
func (m *FinancialMonitor) fetchQuarterlyResults(ctx context.Context) []model.Item {
	var items []model.Item
	for _, screenerURL := range m.deps.Cfg.Financial.ScreenerURLs {
		body, err := m.deps.Client.Get(ctx, screenerURL)
		if err != nil {
			zap.L().Debug("screener fetch failed",
				zap.String("url", screenerURL),
				zap.Error(err),
			)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			continue
		}

		doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
			if i == 0 || i > 30 || len(items) >= 30 {
				return
			}
			cells := row.Find("td")
			if cells.Length() < 4 {
				return
			}
			link := cells.Eq(0).Find("a")
			company := text.Clean(link.Text())
			if company == "" {
				return
			}

			salesGrowth := text.Clean(cells.Eq(2).Text())
			profitGrowth := text.Clean(cells.Eq(3).Text())
			content := fmt.Sprintf("Sales Growth: %s, Profit Growth: %s", salesGrowth, profitGrowth)
			if m.seen.duplicate(company, content) {
				return
			}

			href, _ := link.Attr("href")
			if href == "" {
				href = screenerURL
			}
			items = append(items, model.Item{
				Source:  "screener",
				Title:   company + " Financial Update",
				Content: content,
				URL:     href,
				Company: company,
				Raw: map[string]any{
					"data_type":     "quarterly_result",
					"market_cap":    text.Clean(cells.Eq(1).Text()),
					"sales_growth":  salesGrowth,
					"profit_growth": profitGrowth,
				},
			})
		})

		if len(items) > 0 {
			return items
		}
	}

	return m.fetchFallbackFeed(ctx)
}

func (m *FinancialMonitor) fetchFallbackFeed(ctx context.Context) []model.Item {
	feedURL := m.deps.Cfg.Financial.FallbackFeed
	if feedURL == "" {
		return nil
	}
	zap.L().Info("screener unavailable, using fallback feed",
		zap.String("feed", feedURL),
	)

	entries, err := m.deps.Feeds.Fetch(ctx, feedURL)
	if err != nil {
		zap.L().Warn("fallback feed fetch failed", zap.Error(err))
		return nil
	}

	var items []model.Item
	for _, e := range entries {
		fullText := e.Title + " " + e.Description
		if !containsAny(strings.ToLower(fullText), financialTerms) {
			continue
		}
		if m.seen.duplicate(e.Title, e.Description) {
			continue
		}

		company := text.ExtractCompanyName(fullText)
		if company == "" {
			company = "Unknown"
		}
		items = append(items, model.Item{
			Source:      "financial_rss",
			Title:       company + " Financial Update",
			Content:     truncate(text.Clean(e.Title+". "+e.Description), 300),
			URL:         e.Link,
			Company:     company,
			PublishedAt: e.Published,
			Raw: map[string]any{
				"data_type": "quarterly_result",
			},
		})
	}
	return items
}

// fetchFilings scrapes the exchange announcements page for pharma
// expansion filings.
func (m *FinancialMonitor) fetchFilings(ctx context.Context) []model.Item {
	filingsURL := m.deps.Cfg.Financial.FilingsURL
	if filingsURL == "" {
		return nil
	}

	body, err := m.deps.Client.Get(ctx, filingsURL)
	if err != nil {
		zap.L().Debug("filings fetch failed", zap.Error(err))
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	pharmaTerms := []string{"pharma", "pharmaceutical", "drug", "medicine"}
	expansionTerms := []string{"expansion", "capacity", "capex", "future", "outlook", "guidance"}

	var items []model.Item
	doc.Find("tr, div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		lowClass := strings.ToLower(class)
		if !strings.Contains(lowClass, "ann") && !strings.Contains(lowClass, "result") {
			return true
		}

		raw := text.Clean(sel.Text())
		lower := strings.ToLower(raw)
		if !containsAny(lower, pharmaTerms) || !containsAny(lower, expansionTerms) {
			return true
		}
		if m.seen.duplicate(raw) {
			return true
		}

		company := text.ExtractCompanyName(raw)
		if company == "" {
			company = "Unknown"
		}
		items = append(items, model.Item{
			Source:  "exchange_filing",
			Title:   company + " Exchange Filing",
			Content: truncate(raw, 300),
			URL:     filingsURL,
			Company: company,
			Raw: map[string]any{
				"data_type": "stock_filing",
			},
		})
		return len(items) < 20
	})
	return items
}

// fetchJobSignals scans job board postings for each tracked company and
// emits an item only when the hiring pattern signals outsourcing.
func (m *FinancialMonitor) fetchJobSignals(ctx context.Context) []model.Item {
	jobsURL := m.deps.Cfg.Financial.JobsURL
	if jobsURL == "" {
		return nil
	}

	companies := m.deps.Cfg.Companies
	if len(companies) > maxTrackedCompanies {
		companies = companies[:maxTrackedCompanies]
	}

	var items []model.Item
	for _, company := range companies {
		pattern, err := m.scanJobs(ctx, jobsURL, company)
		if err != nil {
			zap.L().Debug("job scan failed",
				zap.String("company", company),
				zap.Error(err),
			)
			continue
		}
		if !pattern.outsourcing() {
			continue
		}

		items = append(items, model.Item{
			Source:  "job_analysis",
			Title:   company + " - Outsourcing Signal Detected",
			Content: fmt.Sprintf("Hiring %d sales roles, 0 manufacturing roles", pattern.SalesJobs),
			Company: company,
			Raw: map[string]any{
				"data_type":  "job_signal",
				"sales_jobs": pattern.SalesJobs,
				"total_jobs": pattern.TotalJobs,
			},
		})
	}
	return items
}

func (m *FinancialMonitor) scanJobs(ctx context.Context, jobsURL, company string) (jobPattern, error) {
	pattern := jobPattern{Company: company}

	slug := url.PathEscape(strings.ToLower(strings.ReplaceAll(company, " ", "-")))
	body, err := m.deps.Client.Get(ctx, fmt.Sprintf(jobsURL, slug))
	if err != nil {
		return pattern, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pattern, err
	}

	doc.Find("h2 a, h2[title], a.title, .job-title, [class*=jobTitle]").Each(func(_ int, sel *goquery.Selection) {
		title := strings.ToLower(text.Clean(sel.Text()))
		if title == "" {
			return
		}
		pattern.TotalJobs++
		switch {
		case containsAny(title, salesJobTerms):
			pattern.SalesJobs++
		case containsAny(title, manufacturingJobTerms):
			pattern.ManufacturingJobs++
		}
	})
	return pattern, nil
}

// Analyze scores financial items. Job signals bypass the composite score:
// they carry a fixed high score and their own tag. Everything else must
// match at least one trigger keyword.
func (m *FinancialMonitor) Analyze(items []model.Item) []model.TriggerResult {
	cfg := m.deps.Cfg.Monitors.Financial
	maxLen := m.deps.Cfg.Fetch.MaxContentLen

	var results []model.TriggerResult
	for _, item := range items {
		fullText := item.Title + " " + item.Content
		dataType, _ := item.Raw["data_type"].(string)

		keywords := m.deps.Keywords.MatchedKeywords(fullText)
		sentiment := m.deps.Sentiment.Analyze(fullText).Polarity

		var score float64
		if dataType == "job_signal" {
			keywords = append(keywords, "job_outsourcing_signal")
			score = jobSignalScore
		} else {
			if len(keywords) == 0 {
				continue
			}
			// Financial data is aggregated without a publish date, so
			// assume it is about a week old.
			score = analyze.TriggerScore(len(keywords), sentiment, tenderDefaultAge, cfg.Reliability)
		}

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
