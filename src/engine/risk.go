// backend/src/engine/risk.go
package engine

import (
	"fmt"
	"sort"

	"github.com/username/atlasfolio/backend/src/models"
)

// NoConcentration is the sentinel ticker reported when a portfolio holds
// nothing.
const NoConcentration = "none"

// CalculateRiskMetrics scores a portfolio from its enriched holdings, which
// must already be sorted by base market value descending (the order
// AggregateHoldings produces). It is a pure function with no side effects;
// thresholds are passed in and read fresh by the caller on every request.
//
// Scoring: base 10; +30 when the largest holding's weight exceeds the
// concentration limit; +20 when the largest sector aggregate exceeds the
// sector limit; clamped to [0,100]. Currency and country breakdowns carry
// no score, they are informational.
func CalculateRiskMetrics(holdings []models.EnrichedHolding, thresholds models.RiskThresholdConfig) models.RiskMetric {
	warnings := []string{}
	score := 10

	topTicker := NoConcentration
	var concentrationHigh bool
	if len(holdings) > 0 {
		top := holdings[0]
		topTicker = top.Security.Ticker
		if top.Weight > thresholds.ConcentrationLimit {
			concentrationHigh = true
			score += 30
			warnings = append(warnings, fmt.Sprintf(
				"holdings concentrated in %s (>%.0f%%)",
				top.Security.Ticker, thresholds.ConcentrationLimit*100))
		}
	}

	sectors := groupWeights(holdings, func(h models.EnrichedHolding) string { return h.Security.Sector })
	// Stable so equal-weight sectors keep first-encounter order.
	sort.SliceStable(sectors, func(i, j int) bool { return sectors[i].weight > sectors[j].weight })
	if len(sectors) > 0 && sectors[0].weight > thresholds.SectorLimit {
		score += 20
		warnings = append(warnings, fmt.Sprintf(
			"%s sector exposure too high (>%.0f%%)",
			sectors[0].key, thresholds.SectorLimit*100))
	}

	currencies := groupWeights(holdings, func(h models.EnrichedHolding) string { return h.Security.Currency })
	countries := groupWeights(holdings, func(h models.EnrichedHolding) string { return h.Security.Country })

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	metric := models.RiskMetric{
		Score:                  score,
		ConcentrationHigh:      concentrationHigh,
		TopConcentrationTicker: topTicker,
		SectorConcentration:    make([]models.SectorExposure, 0, len(sectors)),
		CurrencyExposure:       make([]models.CurrencyExposure, 0, len(currencies)),
		CountryExposure:        make([]models.CountryExposure, 0, len(countries)),
		Warnings:               warnings,
	}
	for _, s := range sectors {
		metric.SectorConcentration = append(metric.SectorConcentration, models.SectorExposure{Sector: s.key, Percent: s.weight})
	}
	for _, c := range currencies {
		metric.CurrencyExposure = append(metric.CurrencyExposure, models.CurrencyExposure{Currency: c.key, Percent: c.weight})
	}
	for _, c := range countries {
		metric.CountryExposure = append(metric.CountryExposure, models.CountryExposure{Country: c.key, Percent: c.weight})
	}
	return metric
}

type weightGroup struct {
	key    string
	weight float64
}

// groupWeights sums holding weights by key, preserving first-encounter
// insertion order.
func groupWeights(holdings []models.EnrichedHolding, keyFn func(models.EnrichedHolding) string) []weightGroup {
	index := make(map[string]int)
	var groups []weightGroup
	for _, h := range holdings {
		key := keyFn(h)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, weightGroup{key: key})
		}
		groups[i].weight += h.Weight
	}
	return groups
}
