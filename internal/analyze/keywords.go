// Package analyze implements the trigger analysis pipeline: keyword
// detection, quantity estimation, sentiment, and composite scoring.
package analyze

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// KeywordMatch is one occurrence of a trigger phrase in a text.
type KeywordMatch struct {
	Keyword  string
	Category string
	Position int
	Context  string // ±50 chars around the match, trimmed
}

const contextRadius = 50

type keywordPattern struct {
	keyword string
	re      *regexp.Regexp
}

// KeywordDetector scans text against a category -> phrase table.
// Matching is case-insensitive on whole-word boundaries: a phrase never
// matches as a substring of a larger word.
type KeywordDetector struct {
	categories []string
	patterns   map[string][]keywordPattern
}

// NewKeywordDetector compiles the given keyword table. A nil table uses
// the built-in defaults.
func NewKeywordDetector(keywords map[string][]string) *KeywordDetector {
	if keywords == nil {
		keywords = DefaultKeywords()
	}

	d := &KeywordDetector{patterns: make(map[string][]keywordPattern, len(keywords))}
	for category, phrases := range keywords {
		d.categories = append(d.categories, category)
		for _, kw := range phrases {
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
			d.patterns[category] = append(d.patterns[category], keywordPattern{keyword: kw, re: re})
		}
	}
	// Deterministic scan order regardless of map iteration.
	sort.Strings(d.categories)
	return d
}

// Detect returns every keyword occurrence in the text with its category
// and surrounding context.
func (d *KeywordDetector) Detect(text string) []KeywordMatch {
	if text == "" {
		return nil
	}

	var matches []KeywordMatch
	for _, category := range d.categories {
		for _, p := range d.patterns[category] {
			for _, loc := range p.re.FindAllStringIndex(text, -1) {
				start := max(0, loc[0]-contextRadius)
				end := min(len(text), loc[1]+contextRadius)
				matches = append(matches, KeywordMatch{
					Keyword:  p.keyword,
					Category: category,
					Position: loc[0],
					Context:  strings.TrimSpace(text[start:end]),
				})
			}
		}
	}
	return matches
}

// DetectCategories groups distinct matched keywords by category.
func (d *KeywordDetector) DetectCategories(text string) map[string][]string {
	result := make(map[string][]string)
	seen := make(map[string]bool)
	for _, m := range d.Detect(text) {
		key := m.Category + "\x00" + m.Keyword
		if seen[key] {
			continue
		}
		seen[key] = true
		result[m.Category] = append(result[m.Category], m.Keyword)
	}
	return result
}

// CountMatches counts all keyword occurrences in the text.
func (d *KeywordDetector) CountMatches(text string) int {
	return len(d.Detect(text))
}

// HasTrigger reports whether the text contains any trigger keyword.
func (d *KeywordDetector) HasTrigger(text string) bool {
	return d.CountMatches(text) > 0
}

// MatchedKeywords returns the distinct keywords found, in first-seen order.
func (d *KeywordDetector) MatchedKeywords(text string) []string {
	var keywords []string
	seen := make(map[string]bool)
	for _, m := range d.Detect(text) {
		if seen[m.Keyword] {
			continue
		}
		seen[m.Keyword] = true
		keywords = append(keywords, m.Keyword)
	}
	return keywords
}

// ScoreRelevance scores keyword relevance 0-10: up to 5 points each for
// distinct keywords and distinct categories, 1.5 points apiece.
func (d *KeywordDetector) ScoreRelevance(text string) float64 {
	matches := d.Detect(text)
	if len(matches) == 0 {
		return 0
	}

	keywords := make(map[string]bool)
	categories := make(map[string]bool)
	for _, m := range matches {
		keywords[m.Keyword] = true
		categories[m.Category] = true
	}

	keywordScore := math.Min(float64(len(keywords))*1.5, 5.0)
	categoryScore := math.Min(float64(len(categories))*1.5, 5.0)
	return round1(keywordScore + categoryScore)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// DefaultKeywords returns the built-in trigger phrase table, keyed by
// opportunity category.
func DefaultKeywords() map[string][]string {
	return map[string][]string{
		"manufacturing_partner": {
			"seeks manufacturing partner",
			"looking for contract manufacturer",
			"manufacturing partnership",
			"CMO agreement",
			"contract manufacturing deal",
			"outsource manufacturing",
			"third party manufacturing",
		},
		"product_approval": {
			"new product approval",
			"DCGI approval",
			"CDSCO approval",
			"drug approval",
			"product launch",
			"new drug application approved",
		},
		"expansion": {
			"capacity expansion",
			"new product line",
			"expanding portfolio",
			"geographic expansion",
			"market expansion plans",
		},
		"licensing": {
			"loan license agreement",
			"licensing deal",
			"in-licensing",
			"out-licensing",
			"technology transfer",
		},
		"competitor_issues": {
			"FDA warning letter",
			"import alert",
			"recall",
			"manufacturing deficiency",
			"quality issue",
			"plant shutdown",
		},
	}
}
