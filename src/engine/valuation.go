// backend/src/engine/valuation.go
package engine

import (
	"sort"

	"github.com/username/atlasfolio/backend/src/models"
)

// RateLookup resolves an FX pair key like "JPY-USD" to a conversion rate.
// The second return is false when the pair is not modeled.
type RateLookup func(pair string) (float64, bool)

// recentTransactionWindow bounds the per-holding transaction preview.
const recentTransactionWindow = 5

// AggregateHoldings joins raw positions to their reference data and values
// them in baseCurrency. Two passes: the first computes market values, FX
// conversion, gain/loss and the running portfolio total; the second sets
// each holding's weight against that total (0 when the total is 0).
//
// A position whose security or account is missing from the reference maps
// fails the whole read with ReferenceNotFoundError. An unmodeled FX pair is
// not an error: the rate defaults to 1.0, an explicit fallback for
// same-currency and unconfigured pairs.
//
// The result is sorted by MarketValueBase descending (stable); risk scoring
// depends on this ordering for its top-concentration notion.
func AggregateHoldings(
	positions []models.Position,
	securities map[string]models.Security,
	accounts map[string]models.Account,
	ledger []models.Transaction,
	baseCurrency string,
	rate RateLookup,
) ([]models.EnrichedHolding, error) {
	var totalBase float64
	enriched := make([]models.EnrichedHolding, 0, len(positions))

	for _, pos := range positions {
		security, ok := securities[pos.SecurityID]
		if !ok {
			return nil, &ReferenceNotFoundError{Kind: "security", ID: pos.SecurityID}
		}
		account, ok := accounts[pos.AccountID]
		if !ok {
			return nil, &ReferenceNotFoundError{Kind: "account", ID: pos.AccountID}
		}

		marketValueLocal := pos.Quantity * security.CurrentPrice

		fxRate, ok := rate(security.Currency + "-" + baseCurrency)
		if !ok {
			fxRate = 1.0
		}
		marketValueBase := marketValueLocal * fxRate
		totalBase += marketValueBase

		costBasisLocal := pos.CostBasis * pos.Quantity
		var gainLossPercent float64
		if costBasisLocal != 0 {
			gainLossPercent = (marketValueLocal - costBasisLocal) / costBasisLocal * 100
		}

		enriched = append(enriched, models.EnrichedHolding{
			Position:           pos,
			Security:           security,
			Account:            account,
			MarketValueLocal:   marketValueLocal,
			MarketValueBase:    marketValueBase,
			GainLossPercent:    gainLossPercent,
			RecentTransactions: recentTransactions(ledger, pos.AccountID, pos.SecurityID),
		})
	}

	for i := range enriched {
		if totalBase > 0 {
			enriched[i].Weight = enriched[i].MarketValueBase / totalBase
		}
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		return enriched[i].MarketValueBase > enriched[j].MarketValueBase
	})
	return enriched, nil
}

// recentTransactions returns the newest transactions for one pair, newest
// first, capped at recentTransactionWindow.
func recentTransactions(ledger []models.Transaction, accountID, securityID string) []models.Transaction {
	var matched []models.Transaction
	for _, tx := range ledger {
		if tx.AccountID == accountID && tx.SecurityID == securityID {
			matched = append(matched, tx)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date > matched[j].Date
	})
	if len(matched) > recentTransactionWindow {
		matched = matched[:recentTransactionWindow]
	}
	return matched
}
