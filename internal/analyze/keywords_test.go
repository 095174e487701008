package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDetector() *KeywordDetector {
	return NewKeywordDetector(map[string][]string{
		"manufacturing_partner": {"seeks manufacturing partner", "CMO agreement"},
		"competitor_issues":     {"recall", "FDA warning letter"},
	})
}

func TestDetectWholeWordOnly(t *testing.T) {
	d := testDetector()

	matches := d.Detect("The company issued a recall of the batch.")
	require.Len(t, matches, 1)
	assert.Equal(t, "recall", matches[0].Keyword)
	assert.Equal(t, "competitor_issues", matches[0].Category)
	assert.Equal(t, 21, matches[0].Position)

	// "recalling" must not match the phrase "recall".
	assert.Empty(t, d.Detect("The company is recalling nothing."))
}

func TestDetectCaseInsensitive(t *testing.T) {
	d := testDetector()
	assert.True(t, d.HasTrigger("Product RECALL announced"))
	assert.True(t, d.HasTrigger("Firm Seeks Manufacturing Partner for new line"))
}

func TestDetectContextWindow(t *testing.T) {
	d := testDetector()

	matches := d.Detect("Sun Pharma signed a CMO agreement with a European firm.")
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0].Context, "CMO agreement")
	assert.Contains(t, matches[0].Context, "Sun Pharma")
}

func TestMatchedKeywordsDeduplicates(t *testing.T) {
	d := testDetector()

	keywords := d.MatchedKeywords("recall after recall, then an FDA warning letter")
	assert.Equal(t, []string{"recall", "FDA warning letter"}, keywords)
	assert.Equal(t, 3, d.CountMatches("recall after recall, then an FDA warning letter"))
}

func TestDetectCategories(t *testing.T) {
	d := testDetector()

	cats := d.DetectCategories("A recall followed the CMO agreement news.")
	require.Len(t, cats, 2)
	assert.Equal(t, []string{"CMO agreement"}, cats["manufacturing_partner"])
	assert.Equal(t, []string{"recall"}, cats["competitor_issues"])
}

func TestScoreRelevance(t *testing.T) {
	d := testDetector()

	assert.Zero(t, d.ScoreRelevance("nothing interesting here"))

	// Two distinct keywords across two categories: 2*1.5 + 2*1.5.
	score := d.ScoreRelevance("recall news and a CMO agreement")
	assert.Equal(t, 6.0, score)
}

func TestDefaultKeywordsCompile(t *testing.T) {
	d := NewKeywordDetector(nil)
	assert.True(t, d.HasTrigger("Lupin seeks manufacturing partner for exports"))
	assert.True(t, d.HasTrigger("DCGI approval granted for the new formulation"))
}
