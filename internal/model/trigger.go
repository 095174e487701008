package model

import "time"

// SourceType identifies the kind of source a trigger came from.
type SourceType string

const (
	SourceNews       SourceType = "news"
	SourceRegulatory SourceType = "regulatory"
	SourceTender     SourceType = "tender"
	SourceFinancial  SourceType = "financial"
)

// Item is a single parsed record handed to a monitor's analysis phase.
// The fetch/parse layer fills these from RSS entries, search results, or
// scraped announcements; PublishedAt is nil when the source date was
// unparsable.
type Item struct {
	Source      string         `json:"source"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	URL         string         `json:"url"`
	Company     string         `json:"company,omitempty"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	Raw         map[string]any `json:"raw,omitempty"`
}

// TriggerResult is the pipeline's output unit for one accepted item.
// SentimentScore is always in [-1, 1] and TriggerScore in [0, 10].
type TriggerResult struct {
	SourceType      SourceType     `json:"source_type"`
	SourceName      string         `json:"source_name"`
	Title           string         `json:"title"`
	Content         string         `json:"content"`
	URL             string         `json:"url"`
	CompanyName     string         `json:"company_name,omitempty"`
	TriggerKeywords []string       `json:"trigger_keywords"`
	SentimentScore  float64        `json:"sentiment_score"`
	TriggerScore    float64        `json:"trigger_score"`
	DetectedAt      time.Time      `json:"detected_at"`
	PublishedAt     *time.Time     `json:"published_at,omitempty"`
	Raw             map[string]any `json:"raw,omitempty"`
}

// TriggerEvent is the durable form of a TriggerResult. Content fields are
// immutable after insert; only Processed, Archived, and Notes change.
type TriggerEvent struct {
	ID              int64      `json:"id"`
	SourceType      SourceType `json:"source_type"`
	SourceName      string     `json:"source_name"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	URL             string     `json:"url"`
	CompanyName     string     `json:"company_name,omitempty"`
	TriggerKeywords []string   `json:"trigger_keywords"`
	SentimentScore  float64    `json:"sentiment_score"`
	TriggerScore    float64    `json:"trigger_score"`
	DetectedAt      time.Time  `json:"detected_at"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	Processed       bool       `json:"is_processed"`
	Archived        bool       `json:"is_archived"`
	Notes           string     `json:"notes,omitempty"`
}

// Event converts a pipeline result into its durable form.
func (r TriggerResult) Event() TriggerEvent {
	return TriggerEvent{
		SourceType:      r.SourceType,
		SourceName:      r.SourceName,
		Title:           r.Title,
		Content:         r.Content,
		URL:             r.URL,
		CompanyName:     r.CompanyName,
		TriggerKeywords: r.TriggerKeywords,
		SentimentScore:  r.SentimentScore,
		TriggerScore:    r.TriggerScore,
		DetectedAt:      r.DetectedAt,
		PublishedAt:     r.PublishedAt,
	}
}

// MonitorRun is an audit record for one monitor execution.
type MonitorRun struct {
	ID         string     `json:"id"`
	SourceType SourceType `json:"source_type"`
	Monitor    string     `json:"monitor"`
	Items      int        `json:"items"`
	Triggers   int        `json:"triggers"`
	Stored     int        `json:"stored"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}

// TriggerStats aggregates store-wide counts for reporting.
type TriggerStats struct {
	TotalTriggers  int            `json:"total_triggers"`
	BySource       map[string]int `json:"by_source"`
	HighScoreCount int            `json:"high_score_count"`
	RecentTriggers int            `json:"recent_triggers"`
	TopCompanies   []CompanyCount `json:"top_companies"`
}

// CompanyCount is one entry of the top-companies ranking.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}
