package analyze

import (
	"regexp"
	"strconv"
	"strings"
)

// Scale is a coarse manufacturing-volume bucket.
type Scale string

const (
	ScaleSmall      Scale = "small"
	ScaleMedium     Scale = "medium"
	ScaleLarge      Scale = "large"
	ScaleEnterprise Scale = "enterprise"
	ScaleUnknown    Scale = "unknown"
)

// QuantityEstimate is one quantity parsed out of tender text.
type QuantityEstimate struct {
	RawText            string
	Quantity           float64 // after Indian-numbering multiplier
	Unit               string
	NormalizedQuantity float64 // in base units (tablets/ml/grams)
	EstimatedValueINR  float64
	Scale              Scale
}

// TenderAnalysis aggregates all quantities found in a tender description.
type TenderAnalysis struct {
	HasQuantities       bool
	Quantities          []QuantityEstimate
	TotalEstimatedValue float64
	MaxScale            Scale
	OpportunityScore    float64
	Recommendation      string
}

// ScaleBand is a half-open [Min, Max) range of normalized quantity.
type ScaleBand struct {
	Scale Scale
	Min   float64
	Max   float64 // exclusive; <= 0 means unbounded
}

// QuantityConfig holds the unit, price, and scale tables for the analyzer.
type QuantityConfig struct {
	// UnitConversions maps a unit alias to its base-unit multiplier.
	UnitConversions map[string]float64
	// Prices maps a price class (tablet, capsule, vial, ml, gram, default)
	// to an average per-unit price in INR.
	Prices map[string]float64
	// Bands are checked in order, low-inclusive.
	Bands []ScaleBand
}

// DefaultQuantityConfig returns the built-in pharma unit tables.
func DefaultQuantityConfig() *QuantityConfig {
	return &QuantityConfig{
		UnitConversions: map[string]float64{
			"tablet": 1, "tablets": 1, "tab": 1, "tabs": 1,
			"capsule": 1, "capsules": 1, "cap": 1, "caps": 1,

			// strips and packs hold ~10 doses
			"strip": 10, "strips": 10, "pack": 10, "packs": 10,
			"blister": 10, "blisters": 10,

			// boxes and bottles hold ~100
			"box": 100, "boxes": 100, "carton": 100, "cartons": 100,
			"bottle": 100, "bottles": 100,

			"vial": 1, "vials": 1, "ampoule": 1, "ampoules": 1,
			"amp": 1, "amps": 1,

			"ml": 1, "liter": 1000, "liters": 1000,
			"litre": 1000, "litres": 1000, "l": 1000,

			"mg": 0.001, "gram": 1, "grams": 1, "gm": 1, "g": 1,
			"kg": 1000, "kilogram": 1000, "kilograms": 1000,
		},
		Prices: map[string]float64{
			"tablet":  2.0,
			"capsule": 3.0,
			"vial":    50.0,
			"ml":      0.5,
			"gram":    5.0,
			"default": 2.0,
		},
		Bands: []ScaleBand{
			{Scale: ScaleSmall, Min: 0, Max: 10_000},
			{Scale: ScaleMedium, Min: 10_000, Max: 100_000},
			{Scale: ScaleLarge, Min: 100_000, Max: 1_000_000},
			{Scale: ScaleEnterprise, Min: 1_000_000, Max: 0},
		},
	}
}

// magnitudeMultipliers maps Indian-numbering words to their factor.
var magnitudeMultipliers = map[string]float64{
	"lakh": 100_000, "lakhs": 100_000, "lac": 100_000, "lacs": 100_000,
	"crore": 10_000_000, "crores": 10_000_000, "cr": 10_000_000,
	"million": 1_000_000, "mil": 1_000_000,
	"k": 1000, "thousand": 1000,
}

// quantityRE captures number, optional magnitude word, optional unit word.
var quantityRE = regexp.MustCompile(
	`(?i)(\d+(?:,\d{3})*(?:\.\d+)?)\s*(lakhs?|lacs?|crores?|cr|million|mil|k|thousand)?\s*([a-zA-Z]+)?`)

// QuantityAnalyzer extracts quantities from tender text and estimates
// manufacturing scale and value.
type QuantityAnalyzer struct {
	cfg *QuantityConfig
}

// NewQuantityAnalyzer creates an analyzer. A nil config uses the defaults.
func NewQuantityAnalyzer(cfg *QuantityConfig) *QuantityAnalyzer {
	if cfg == nil {
		cfg = DefaultQuantityConfig()
	}
	return &QuantityAnalyzer{cfg: cfg}
}

// ExtractQuantities parses every quantity expression in the text.
func (a *QuantityAnalyzer) ExtractQuantities(text string) []QuantityEstimate {
	if text == "" {
		return nil
	}

	var estimates []QuantityEstimate
	for _, m := range quantityRE.FindAllStringSubmatch(text, -1) {
		raw := m[0]
		numberStr := strings.ReplaceAll(m[1], ",", "")
		magnitude := strings.ToLower(m[2])
		unit := strings.ToLower(m[3])

		base, err := strconv.ParseFloat(numberStr, 64)
		if err != nil {
			continue
		}

		multiplier := 1.0
		if f, ok := magnitudeMultipliers[magnitude]; ok {
			multiplier = f
		}
		quantity := base * multiplier

		if unit == "" {
			unit = "unit"
		}
		conversion := 1.0
		if c, ok := a.cfg.UnitConversions[unit]; ok {
			conversion = c
		}
		normalized := quantity * conversion

		price, ok := a.cfg.Prices[priceClass(unit)]
		if !ok {
			price = a.cfg.Prices["default"]
		}

		estimates = append(estimates, QuantityEstimate{
			RawText:            strings.TrimSpace(raw),
			Quantity:           quantity,
			Unit:               unit,
			NormalizedQuantity: normalized,
			EstimatedValueINR:  quantity * price,
			Scale:              a.classify(normalized),
		})
	}
	return estimates
}

// classify walks the bands in order; low bound inclusive, high exclusive.
func (a *QuantityAnalyzer) classify(normalized float64) Scale {
	for _, b := range a.cfg.Bands {
		if normalized >= b.Min && (b.Max <= 0 || normalized < b.Max) {
			return b.Scale
		}
	}
	return ScaleEnterprise
}

// opportunityScores maps the dominant scale to a 0-10 opportunity score.
var opportunityScores = map[Scale]float64{
	ScaleSmall:      2,
	ScaleMedium:     5,
	ScaleLarge:      8,
	ScaleEnterprise: 10,
}

// AnalyzeTender extracts all quantities, totals their estimated value, and
// rates the opportunity by the largest normalized quantity found.
func (a *QuantityAnalyzer) AnalyzeTender(text string) TenderAnalysis {
	quantities := a.ExtractQuantities(text)
	if len(quantities) == 0 {
		return TenderAnalysis{
			MaxScale:       ScaleUnknown,
			Recommendation: "Quantity information not found",
		}
	}

	var total float64
	largest := quantities[0]
	for _, q := range quantities {
		total += q.EstimatedValueINR
		if q.NormalizedQuantity > largest.NormalizedQuantity {
			largest = q
		}
	}

	var recommendation string
	switch largest.Scale {
	case ScaleEnterprise:
		recommendation = "High-value opportunity - requires major manufacturing capacity"
	case ScaleLarge:
		recommendation = "Significant opportunity - suitable for medium-sized manufacturers"
	case ScaleMedium:
		recommendation = "Good opportunity - manageable for small manufacturers"
	default:
		recommendation = "Small batch - consider feasibility"
	}

	return TenderAnalysis{
		HasQuantities:       true,
		Quantities:          quantities,
		TotalEstimatedValue: total,
		MaxScale:            largest.Scale,
		OpportunityScore:    opportunityScores[largest.Scale],
		Recommendation:      recommendation,
	}
}

// priceClass maps a unit alias to its pricing class.
func priceClass(unit string) string {
	switch unit {
	case "tablet", "tablets", "tab", "tabs":
		return "tablet"
	case "capsule", "capsules", "cap", "caps":
		return "capsule"
	case "vial", "vials", "ampoule", "ampoules", "amp", "amps":
		return "vial"
	case "ml", "liter", "liters", "litre", "litres", "l":
		return "ml"
	case "mg", "gram", "grams", "gm", "g", "kg", "kilogram", "kilograms":
		return "gram"
	default:
		return "default"
	}
}
