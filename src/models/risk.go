package models

// RiskThresholdConfig holds the per-organization limits read by risk
// scoring on every call. MinCashWeight is stored and served but has no
// scoring effect.
type RiskThresholdConfig struct {
	ConcentrationLimit float64 `json:"concentration_limit"`
	SectorLimit        float64 `json:"sector_limit"`
	MinCashWeight      float64 `json:"min_cash_weight"`
}

// SectorExposure is one entry of the sector breakdown, ordered by weight
// descending.
type SectorExposure struct {
	Sector  string  `json:"sector"`
	Percent float64 `json:"percent"`
}

// CurrencyExposure is one entry of the currency breakdown.
type CurrencyExposure struct {
	Currency string  `json:"currency"`
	Percent  float64 `json:"percent"`
}

// CountryExposure is one entry of the country breakdown.
type CountryExposure struct {
	Country string  `json:"country"`
	Percent float64 `json:"percent"`
}

// RiskMetric is the derived risk report for a portfolio. Score is 0-100,
// higher is riskier. The exposure breakdowns are informational only.
type RiskMetric struct {
	Score                  int                `json:"score"`
	ConcentrationHigh      bool               `json:"concentration_high"`
	TopConcentrationTicker string             `json:"top_concentration_ticker"`
	SectorConcentration    []SectorExposure   `json:"sector_concentration"`
	CurrencyExposure       []CurrencyExposure `json:"currency_exposure"`
	CountryExposure        []CountryExposure  `json:"country_exposure"`
	Warnings               []string           `json:"warnings"`
}
