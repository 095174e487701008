package analyze

import (
	"math"
	"time"
)

// Score term weights. Keyword matches contribute up to 4 points, the
// remaining three signals up to 2 points each.
const (
	maxKeywordPoints = 4.0
	maxScore         = 10.0
)

// TriggerScore fuses four signals into a 0-10 importance score:
//
//	keyword matches   -> min(n, 4)
//	sentiment [-1,1]  -> 1 + polarity, i.e. [0,2]
//	age               -> 2 / 1.5 / 1 / 0.5 as the event ages
//	reliability [0,1] -> reliability * 2
//
// The result is rounded to one decimal and capped at 10.
func TriggerScore(keywordMatches int, sentiment float64, age time.Duration, reliability float64) float64 {
	keywordScore := math.Min(float64(keywordMatches), maxKeywordPoints)
	sentimentScore := 1.0 + sentiment
	recencyScore := recencyTerm(age)
	reliabilityScore := reliability * 2.0

	total := keywordScore + sentimentScore + recencyScore + reliabilityScore
	return math.Min(round1(total), maxScore)
}

func recencyTerm(age time.Duration) float64 {
	switch {
	case age <= 24*time.Hour:
		return 2.0
	case age <= 7*24*time.Hour:
		return 1.5
	case age <= 30*24*time.Hour:
		return 1.0
	default:
		return 0.5
	}
}
