// backend/src/engine/holdings.go
package engine

import (
	"math"
	"sort"

	"github.com/username/atlasfolio/backend/src/models"
)

// ClosedEpsilon is the quantity below which a position counts as fully
// closed. Floating-point residue from sell-offs lands in this band.
const ClosedEpsilon = 1e-4

type holdingAccumulator struct {
	accountID  string
	securityID string
	qty        float64
	totalCost  float64
	lastUpdate string
}

// CalculateRawHoldings folds a transaction list into one Position per
// (account, security) pair, using weighted-average cost.
//
// The fold sorts its input by date (stable) before accumulating, so callers
// carry no ordering obligation. BUY and positive ADJUST entries add quantity
// at the execution price; SELL and negative ADJUST entries remove the
// absolute quantity at the running average cost, regardless of the sign the
// caller stored on a SELL. A sell exceeding the held quantity drives the
// position negative; that is accepted behavior, not an error.
//
// Pairs whose net quantity ends within ClosedEpsilon of zero are omitted.
func CalculateRawHoldings(txs []models.Transaction) []models.Position {
	ordered := make([]models.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date < ordered[j].Date
	})

	accs := make(map[string]*holdingAccumulator)
	var keys []string // first-seen order, keeps output deterministic

	for _, tx := range ordered {
		// NUL separator: ids may themselves contain "-", which would let two
		// distinct (account, security) pairs fold into one bucket.
		key := tx.AccountID + "\x00" + tx.SecurityID
		rec, ok := accs[key]
		if !ok {
			rec = &holdingAccumulator{
				accountID:  tx.AccountID,
				securityID: tx.SecurityID,
				lastUpdate: tx.Date,
			}
			accs[key] = rec
			keys = append(keys, key)
		}

		switch {
		case tx.Type == models.TransactionBuy,
			tx.Type == models.TransactionAdjust && tx.Quantity > 0:
			rec.qty += tx.Quantity
			rec.totalCost += tx.Quantity * tx.Price

		case tx.Type == models.TransactionSell,
			tx.Type == models.TransactionAdjust && tx.Quantity < 0:
			var avgCost float64
			if rec.qty != 0 {
				avgCost = rec.totalCost / rec.qty
			}
			absQty := math.Abs(tx.Quantity)
			rec.qty -= absQty
			rec.totalCost -= absQty * avgCost
		}

		if tx.Date > rec.lastUpdate {
			rec.lastUpdate = tx.Date
		}
	}

	var holdings []models.Position
	for _, key := range keys {
		rec := accs[key]
		if math.Abs(rec.qty) <= ClosedEpsilon {
			continue
		}
		holdings = append(holdings, models.Position{
			ID:         rec.accountID + "-" + rec.securityID,
			AccountID:  rec.accountID,
			SecurityID: rec.securityID,
			Quantity:   rec.qty,
			CostBasis:  rec.totalCost / rec.qty,
			UpdatedAt:  rec.lastUpdate,
		})
	}
	return holdings
}
