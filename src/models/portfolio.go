package models

// Position is the derived net holding for one (account, security) pair.
// It is recomputed from the transaction ledger on every query and never
// persisted, so it cannot drift from the ledger.
type Position struct {
	ID         string  `json:"id"` // composite "<account_id>-<security_id>"
	AccountID  string  `json:"account_id"`
	SecurityID string  `json:"security_id"`
	Quantity   float64 `json:"quantity"`
	CostBasis  float64 `json:"cost_basis"` // weighted-average cost per unit
	UpdatedAt  string  `json:"updated_at"` // date of the newest transaction folded in
}

// EnrichedHolding is a Position joined with its reference data and valued
// in both the security currency and the organization's base currency.
type EnrichedHolding struct {
	Position
	Security           Security      `json:"security"`
	Account            Account       `json:"account"`
	MarketValueLocal   float64       `json:"market_value_local"`
	MarketValueBase    float64       `json:"market_value_base"`
	GainLossPercent    float64       `json:"gain_loss_percent"`
	Weight             float64       `json:"weight"` // share of total portfolio value, 0..1
	RecentTransactions []Transaction `json:"recent_transactions,omitempty"`
}
