package analyze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTriggerScoreCap(t *testing.T) {
	// 4 + 2 + 2 + 2 caps exactly at the maximum.
	score := TriggerScore(10, 1.0, time.Hour, 1.0)
	assert.Equal(t, 10.0, score)
}

func TestTriggerScoreFloor(t *testing.T) {
	score := TriggerScore(0, -1.0, 90*24*time.Hour, 0)
	assert.Equal(t, 0.5, score)
}

func TestTriggerScoreKeywordSaturation(t *testing.T) {
	base := TriggerScore(4, 0, time.Hour, 0.5)
	assert.Equal(t, base, TriggerScore(8, 0, time.Hour, 0.5))
	assert.Less(t, TriggerScore(3, 0, time.Hour, 0.5), base)
}

func TestTriggerScoreRecencyTiers(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want float64
	}{
		{12 * time.Hour, 2.0},
		{24 * time.Hour, 2.0},
		{3 * 24 * time.Hour, 1.5},
		{7 * 24 * time.Hour, 1.5},
		{20 * 24 * time.Hour, 1.0},
		{60 * 24 * time.Hour, 0.5},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, recencyTerm(tc.age), "age=%v", tc.age)
	}
}

func TestTriggerScoreComposition(t *testing.T) {
	// 2 keywords + (1 + 0.5) sentiment + 1.5 recency + 1.4 reliability.
	score := TriggerScore(2, 0.5, 3*24*time.Hour, 0.7)
	assert.Equal(t, 6.4, score)
}
