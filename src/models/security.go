package models

// SecurityType classifies a security.
type SecurityType string

const (
	SecurityStock  SecurityType = "STOCK"
	SecurityETF    SecurityType = "ETF"
	SecurityBond   SecurityType = "BOND"
	SecurityCrypto SecurityType = "CRYPTO"
	SecurityCash   SecurityType = "CASH"
)

// Security is a reference-data record. Immutable except CurrentPrice and
// LastUpdated, which a price refresh may overwrite. Securities are created
// on first reference (manual entry or snapshot import) when unknown.
type Security struct {
	ID           string       `json:"id"`
	Ticker       string       `json:"ticker"`
	Name         string       `json:"name"`
	Type         SecurityType `json:"type"`
	Sector       string       `json:"sector"`
	Industry     string       `json:"industry"`
	Country      string       `json:"country"`
	Currency     string       `json:"currency"`
	CurrentPrice float64      `json:"current_price"`
	LastUpdated  string       `json:"last_updated"` // "2006-01-02"
}
