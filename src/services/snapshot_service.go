// backend/src/services/snapshot_service.go
package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/username/atlasfolio/backend/src/engine"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/models"
	"github.com/username/atlasfolio/backend/src/security/validation"
)

// placeholderPrice is assigned to securities first seen in a snapshot; a
// later price refresh corrects it.
const placeholderPrice = 100

type snapshotServiceImpl struct {
	accountStore  AccountStore
	securityStore SecurityStore
	ledger        LedgerStore
	locks         *AccountLocks
	invalidator   ReportInvalidator
}

func NewSnapshotService(
	accountStore AccountStore,
	securityStore SecurityStore,
	ledger LedgerStore,
	locks *AccountLocks,
	invalidator ReportInvalidator,
) SnapshotService {
	return &snapshotServiceImpl{
		accountStore:  accountStore,
		securityStore: securityStore,
		ledger:        ledger,
		locks:         locks,
		invalidator:   invalidator,
	}
}

// Reconcile diffs a holdings snapshot against the ledger-derived positions
// of one account and appends one ADJUST transaction per drifted security.
// Existing transactions are never touched; the ledger only grows. Re-running
// the same snapshot immediately produces no new entries because every diff
// collapses below the closed-position epsilon.
//
// Structural problems (unknown account, unresolvable ticker/quantity
// columns) abort before any write. Row-level problems are silent skips, and
// adjustments already appended for earlier rows are kept — the upload is
// deliberately not atomic.
//
// Snapshot lines are split on plain commas; quoted-field escaping is not
// supported in this format.
func (s *snapshotServiceImpl) Reconcile(orgID, accountID, csvContent string) (*ReconcileResult, error) {
	unlock := s.locks.Lock(accountID)
	defer unlock()

	account, err := s.accountStore.GetByID(accountID)
	if err != nil {
		return nil, fmt.Errorf("loading account %s: %w", accountID, err)
	}
	if account == nil || account.OrgID != orgID {
		return nil, ErrTargetAccountNotFound
	}

	result := &ReconcileResult{Adjustments: []models.Transaction{}}

	lines := strings.Split(strings.ReplaceAll(csvContent, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return result, nil
	}

	headers := strings.Split(lines[0], ",")
	cols, err := engine.ResolveColumns(headers, account.CsvMapping)
	if err != nil {
		return nil, err
	}

	ledgerTxs, err := s.ledger.ListByAccount(accountID)
	if err != nil {
		return nil, fmt.Errorf("loading ledger for account %s: %w", accountID, err)
	}
	baseline := make(map[string]models.Position)
	for _, pos := range engine.CalculateRawHoldings(ledgerTxs) {
		baseline[pos.SecurityID] = pos
	}

	today := time.Now().Format("2006-01-02")

	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		result.RowsRead++

		row := strings.Split(line, ",")
		ticker := cellValue(row, cols.Ticker)
		qtyStr := cellValue(row, cols.Quantity)
		costStr := cellValue(row, cols.Cost)

		if ticker == "" || qtyStr == "" {
			result.RowsSkipped++
			continue
		}
		csvQty, ok := parseFiniteFloat(qtyStr)
		if !ok {
			logger.L.Debug("Skipping snapshot row with non-numeric quantity", "row", i, "quantity", qtyStr)
			result.RowsSkipped++
			continue
		}

		ticker = validation.SanitizeText(strings.ToUpper(ticker))
		security, err := s.resolveOrCreateSecurity(ticker, account.Currency, today, result)
		if err != nil {
			return result, fmt.Errorf("resolving security %s: %w", ticker, err)
		}

		var ledgerQty, avgCost float64
		if existing, ok := baseline[security.ID]; ok {
			ledgerQty = existing.Quantity
			avgCost = existing.CostBasis
		}
		diff := csvQty - ledgerQty
		if math.Abs(diff) <= engine.ClosedEpsilon {
			continue
		}

		price := avgCost
		if costStr != "" {
			if parsed, ok := parseFiniteFloat(costStr); ok {
				price = parsed
			}
		}

		adjustment := models.Transaction{
			ID:         "tx_sync_" + uuid.New().String(),
			AccountID:  accountID,
			SecurityID: security.ID,
			Type:       models.TransactionAdjust,
			Quantity:   diff,
			Price:      price,
			Date:       today,
			Note:       fmt.Sprintf("snapshot sync: ledger %g -> snapshot %g (diff %+g)", ledgerQty, csvQty, diff),
		}
		if err := s.ledger.Append(adjustment); err != nil {
			// Earlier rows' appends stay in place; see contract above.
			s.invalidator.InvalidateOrgCache(orgID)
			return result, fmt.Errorf("appending adjustment for %s: %w", ticker, err)
		}
		result.Adjustments = append(result.Adjustments, adjustment)
	}

	if len(result.Adjustments) > 0 {
		s.invalidator.InvalidateOrgCache(orgID)
	}
	logger.L.Info("Snapshot reconciled",
		"orgID", orgID, "accountID", accountID,
		"rows", result.RowsRead, "skipped", result.RowsSkipped,
		"adjustments", len(result.Adjustments), "newSecurities", result.SecuritiesCreated)
	return result, nil
}

func (s *snapshotServiceImpl) resolveOrCreateSecurity(ticker, accountCurrency, today string, result *ReconcileResult) (*models.Security, error) {
	security, err := s.securityStore.GetByTicker(ticker)
	if err != nil {
		return nil, err
	}
	if security != nil {
		return security, nil
	}

	created := models.Security{
		ID:           "sec_" + uuid.New().String(),
		Ticker:       ticker,
		Name:         ticker,
		Type:         models.SecurityStock,
		Sector:       "Other",
		Industry:     "Unknown",
		Country:      "Global",
		Currency:     accountCurrency,
		CurrentPrice: placeholderPrice,
		LastUpdated:  today,
	}
	if err := s.securityStore.Insert(created); err != nil {
		return nil, err
	}
	result.SecuritiesCreated++
	logger.L.Info("Created security from snapshot", "ticker", ticker, "currency", accountCurrency)
	return &created, nil
}

// parseFiniteFloat parses s as a float64 and rejects NaN and the infinities,
// which ParseFloat otherwise accepts as literals. A non-finite quantity would
// poison the ledger: the diff against it never collapses below the epsilon.
func parseFiniteFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// cellValue returns the trimmed cell at idx, or "" when the column is
// unresolved (-1) or the row is short.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(validation.StripUnprintable(row[idx]))
}
