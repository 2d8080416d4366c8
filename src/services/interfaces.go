// backend/src/services/interfaces.go
package services

import (
	"errors"

	"github.com/username/atlasfolio/backend/src/models"
)

// Common service errors.
var (
	// ErrTargetAccountNotFound aborts a write before any mutation when the
	// addressed account does not exist (or belongs to another organization).
	ErrTargetAccountNotFound = errors.New("target account not found")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrInvalidInput          = errors.New("invalid input")
)

// Store interfaces are declared here, where they are consumed, so services
// can be exercised against fakes. The sqlite implementations live in
// src/storage.

// LedgerStore is the append-only transaction log. There is deliberately no
// update or delete: positions are always re-derived from the full log.
type LedgerStore interface {
	Append(tx models.Transaction) error
	ListByAccount(accountID string) ([]models.Transaction, error)
	ListByAccounts(accountIDs []string) ([]models.Transaction, error)
}

type SecurityStore interface {
	GetByID(id string) (*models.Security, error)
	GetByTicker(ticker string) (*models.Security, error)
	Insert(sec models.Security) error
	UpdatePrice(id string, price float64, asOf string) error
	ListAll() ([]models.Security, error)
}

type AccountStore interface {
	GetByID(id string) (*models.Account, error)
	ListByOrg(orgID string) ([]models.Account, error)
	UpdateCsvMapping(accountID string, mapping *models.CsvMappingConfig) error
}

type OrganizationStore interface {
	List() ([]models.Organization, error)
	GetByID(id string) (*models.Organization, error)
	ListMembers(orgID string) ([]models.Member, error)
}

// ThresholdStore returns nil when an organization has no stored config;
// callers fall back to the configured defaults.
type ThresholdStore interface {
	Get(orgID string) (*models.RiskThresholdConfig, error)
	Put(orgID string, cfg models.RiskThresholdConfig) error
}

type FxRateStore interface {
	GetRate(pair string) (float64, bool, error)
}

// FxService resolves FX pair keys like "JPY-USD". The boolean is false for
// unmodeled pairs, which valuation treats as rate 1.0.
type FxService interface {
	Lookup(pair string) (float64, bool)
}

// RiskReport bundles the valued holdings with their risk metrics and the
// thresholds that produced them.
type RiskReport struct {
	Holdings   []models.EnrichedHolding   `json:"holdings"`
	Metrics    models.RiskMetric          `json:"metrics"`
	Thresholds models.RiskThresholdConfig `json:"thresholds"`
}

// PortfolioService serves ledger-derived, currency-converted views of an
// organization's holdings.
type PortfolioService interface {
	// GetAggregatedHoldings values the organization's positions in
	// baseCurrency; an empty baseCurrency means the organization's own.
	GetAggregatedHoldings(orgID, baseCurrency string) ([]models.EnrichedHolding, error)
	GetRiskReport(orgID, baseCurrency string) (*RiskReport, error)
	InvalidateOrgCache(orgID string)
}

// ReportInvalidator is the slice of PortfolioService that ledger writers
// need to drop stale cached reports.
type ReportInvalidator interface {
	InvalidateOrgCache(orgID string)
}

// ReconcileResult summarizes one snapshot reconciliation run.
type ReconcileResult struct {
	Adjustments       []models.Transaction `json:"adjustments"`
	RowsRead          int                  `json:"rows_read"`
	RowsSkipped       int                  `json:"rows_skipped"`
	SecuritiesCreated int                  `json:"securities_created"`
}

// SnapshotService reconciles externally supplied holdings snapshots against
// the ledger by appending corrective ADJUST transactions.
type SnapshotService interface {
	Reconcile(orgID, accountID, csvContent string) (*ReconcileResult, error)
}

// ManualTransactionInput is one manually entered ledger transaction.
// Type defaults to BUY and Date to today when empty.
type ManualTransactionInput struct {
	Ticker    string                 `json:"ticker"`
	AccountID string                 `json:"account_id"`
	Quantity  float64                `json:"quantity"`
	Price     float64                `json:"price"`
	Currency  string                 `json:"currency,omitempty"`
	Type      models.TransactionType `json:"type,omitempty"`
	Date      string                 `json:"date,omitempty"`
	Note      string                 `json:"note,omitempty"`
}

type TransactionService interface {
	AddManual(input ManualTransactionInput) (*models.Transaction, error)
	ListByAccount(accountID string) ([]models.Transaction, error)
}

// QuoteProvider supplies a current price for a ticker from an external
// reference-data feed.
type QuoteProvider interface {
	Quote(ticker string) (float64, error)
}

// PriceService refreshes stored security prices from a QuoteProvider. The
// engine treats stored prices as authoritative at read time.
type PriceService interface {
	RefreshAll() (updated int, err error)
}
