package analyze

import (
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
)

// SentimentResult holds polarity in [-1, 1], subjectivity in [0, 1], and
// a label of positive/negative/neutral.
type SentimentResult struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
	Label        string  `json:"label"`
}

// Lexicon is the word list for the deterministic keyword fallback.
type Lexicon struct {
	Positive []string
	Negative []string
}

// DefaultLexicon returns the pharma/business sentiment word lists.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Positive: []string{
			"growth", "expansion", "approval", "success", "partnership",
			"launch", "profit", "milestone", "achievement", "breakthrough",
			"innovation", "leading", "strong", "positive", "increase",
			"revenue", "opportunity", "winning", "awarded", "excellent",
		},
		Negative: []string{
			"recall", "warning", "failure", "decline", "loss", "issue",
			"problem", "shutdown", "closure", "lawsuit", "penalty",
			"violation", "deficiency", "concern", "risk", "drop",
			"shortage", "delay", "rejected", "suspended",
		},
	}
}

// EngineVADER selects the govader lexicon model; EngineKeywords forces
// the deterministic fallback.
const (
	EngineVADER    = "vader"
	EngineKeywords = "keywords"
)

var wordRE = regexp.MustCompile(`\b\w+\b`)

// SentimentAnalyzer estimates text sentiment. When the VADER engine is
// selected it provides polarity; the keyword fallback is always available
// and fully deterministic.
type SentimentAnalyzer struct {
	vader    *govader.SentimentIntensityAnalyzer
	positive map[string]bool
	negative map[string]bool
}

// NewSentimentAnalyzer creates an analyzer for the given engine. A nil
// lexicon uses the defaults.
func NewSentimentAnalyzer(engine string, lex *Lexicon) *SentimentAnalyzer {
	if lex == nil {
		lex = DefaultLexicon()
	}

	a := &SentimentAnalyzer{
		positive: make(map[string]bool, len(lex.Positive)),
		negative: make(map[string]bool, len(lex.Negative)),
	}
	for _, w := range lex.Positive {
		a.positive[strings.ToLower(w)] = true
	}
	for _, w := range lex.Negative {
		a.negative[strings.ToLower(w)] = true
	}

	if engine == EngineVADER {
		a.vader = govader.NewSentimentIntensityAnalyzer()
	}
	return a
}

// Analyze estimates polarity and subjectivity for the text.
func (a *SentimentAnalyzer) Analyze(text string) SentimentResult {
	if text == "" {
		return SentimentResult{Label: "neutral"}
	}
	if a.vader != nil {
		return a.analyzeVADER(text)
	}
	return a.analyzeKeywords(text)
}

func (a *SentimentAnalyzer) analyzeVADER(text string) SentimentResult {
	scores := a.vader.PolarityScores(text)

	// Compound is already normalized to [-1, 1]; the positive and
	// negative proportions together approximate subjectivity.
	polarity := scores.Compound
	subjectivity := math.Min(scores.Positive+scores.Negative, 1.0)

	return SentimentResult{
		Polarity:     round3(polarity),
		Subjectivity: round3(subjectivity),
		Label:        label(polarity),
	}
}

func (a *SentimentAnalyzer) analyzeKeywords(text string) SentimentResult {
	words := wordRE.FindAllString(strings.ToLower(text), -1)

	var pos, neg int
	for _, w := range words {
		if a.positive[w] {
			pos++
		}
		if a.negative[w] {
			neg++
		}
	}

	total := pos + neg
	var polarity float64
	if total > 0 {
		polarity = float64(pos-neg) / float64(total)
	}

	var subjectivity float64
	if len(words) > 0 {
		subjectivity = math.Min(float64(total)/float64(len(words))*5, 1.0)
	}

	return SentimentResult{
		Polarity:     round3(polarity),
		Subjectivity: round3(subjectivity),
		Label:        label(polarity),
	}
}

// Polarity returns just the polarity score.
func (a *SentimentAnalyzer) Polarity(text string) float64 {
	return a.Analyze(text).Polarity
}

// Label returns just the sentiment label.
func (a *SentimentAnalyzer) Label(text string) string {
	return a.Analyze(text).Label
}

// IsNegative reports whether the text reads negative.
func (a *SentimentAnalyzer) IsNegative(text string) bool {
	return a.Analyze(text).Polarity < -0.1
}

// IsPositive reports whether the text reads positive.
func (a *SentimentAnalyzer) IsPositive(text string) bool {
	return a.Analyze(text).Polarity > 0.1
}

func label(polarity float64) string {
	switch {
	case polarity > 0.1:
		return "positive"
	case polarity < -0.1:
		return "negative"
	default:
		return "neutral"
	}
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
