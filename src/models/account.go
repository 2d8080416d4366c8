package models

// OrgRole is an advisory role label supplied by the surrounding UI. It is
// not a security boundary; the engine only uses it to gate settings writes.
type OrgRole string

const (
	RoleOwner  OrgRole = "OWNER"
	RoleEditor OrgRole = "EDITOR"
	RoleViewer OrgRole = "VIEWER"
)

// Organization owns accounts and reports in a single base currency.
type Organization struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BaseCurrency string `json:"base_currency"`
}

// Member links a user to an organization with an advisory role.
type Member struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	OrgID    string  `json:"org_id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     OrgRole `json:"role"`
	JoinedAt string  `json:"joined_at"`
}

// CsvMappingConfig maps snapshot CSV column names for one account. Only the
// snapshot reconciliation path reads it; when absent, reconciliation falls
// back to a fixed synonym list.
type CsvMappingConfig struct {
	TickerColumn   string `json:"ticker_column"`
	QuantityColumn string `json:"quantity_column"`
	CostColumn     string `json:"cost_column,omitempty"`
}

// Account is a brokerage or bank account. Its lifecycle is independent of
// transactions; an account may exist with zero positions.
type Account struct {
	ID              string            `json:"id"`
	OrgID           string            `json:"org_id"`
	Name            string            `json:"name"`
	Broker          string            `json:"broker"`
	Currency        string            `json:"currency"`
	IsTaxAdvantaged bool              `json:"is_tax_advantaged"`
	CsvMapping      *CsvMappingConfig `json:"csv_mapping,omitempty"`
}
