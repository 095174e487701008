// Package text provides normalization, extraction, and hashing helpers
// shared by the analysis pipeline.
package text

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

var (
	tagRE        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRE = regexp.MustCompile(`\s+`)
	safelistRE   = regexp.MustCompile(`[^\w\s.,!?'"-]`)
	urlRE        = regexp.MustCompile(`https?://(?:[-\w.]|(?:%[\da-fA-F]{2}))+[^\s]*`)
)

// Clean normalizes raw text for analysis: markup stripped, unicode folded
// to NFKC, whitespace collapsed, characters outside the safelist dropped.
// Cleaning already-clean text is a no-op. Empty input yields "".
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = tagRE.ReplaceAllString(s, "")
	s = norm.NFKC.String(s)
	s = whitespaceRE.ReplaceAllString(s, " ")
	s = safelistRE.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// companyRE matches a run of capitalized words ending in a common
// pharma/business suffix, e.g. "Aurobindo Pharma Ltd" or "Alkem
// Laboratories Limited".
var companyRE = regexp.MustCompile(`\b([A-Z][A-Za-z&'-]*(?:\s+[A-Z][A-Za-z&'-]*)*\s+(?:Pharma(?:ceuticals?)?|Life ?Sciences?|Labs?(?:oratories)?|Healthcare|Biotech|Ltd\.?|Pvt\.?|Limited|Private|Inc\.?|Corp(?:oration)?\.?)\b)`)

// ExtractCompanyName pulls the most likely company name out of free text.
// Returns "" when nothing matches.
func ExtractCompanyName(s string) string {
	if s == "" {
		return ""
	}
	matches := companyRE.FindAllString(s, -1)
	if len(matches) == 0 {
		return ""
	}
	// The longest match is most likely the complete name.
	best := matches[0]
	for _, m := range matches[1:] {
		if len(m) > len(best) {
			best = m
		}
	}
	return strings.TrimSpace(best)
}

// dateFormats are tried in order before falling back to a lenient parse.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	"02-01-2006",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC1123Z, // RSS style
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

// ParseDate parses the date formats seen across feeds and source pages.
// Unparsable input yields nil, never an error.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Fingerprint returns the content hash used for deduplication.
func Fingerprint(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(h[:])
}

// ExtractURLs returns all URLs found in the text.
func ExtractURLs(s string) []string {
	if s == "" {
		return nil
	}
	return urlRE.FindAllString(s, -1)
}

// FormatINR renders an amount in Indian business notation (crore/lakh).
func FormatINR(amount float64) string {
	switch {
	case amount >= 1e7:
		return fmt.Sprintf("₹%.2f Cr", amount/1e7)
	case amount >= 1e5:
		return fmt.Sprintf("₹%.2f L", amount/1e5)
	default:
		return fmt.Sprintf("₹%.0f", amount)
	}
}
