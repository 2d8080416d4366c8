// backend/src/engine/columns.go
package engine

import (
	"fmt"
	"strings"

	"github.com/username/atlasfolio/backend/src/models"
)

// Synonym fallback, tried in order when an account has no mapping
// configured. Includes the Chinese broker-export headers.
var (
	tickerSynonyms   = []string{"ticker", "symbol", "代码", "证券代码"}
	quantitySynonyms = []string{"quantity", "qty", "shares", "position", "数量", "持仓"}
	costSynonyms     = []string{"cost basis", "avg cost", "avg price", "cost", "成本", "均价"}
)

// ColumnIndexes locates the resolved snapshot columns in a header row.
// Cost is -1 when no cost column could be found; that degrades gracefully
// rather than failing.
type ColumnIndexes struct {
	Ticker   int
	Quantity int
	Cost     int
}

// ResolveColumns maps a snapshot header row to column indexes. An account
// mapping, when present, is matched by case-insensitive exact name; without
// one the fixed synonym lists are tried in priority order. Ticker and
// quantity are required; failing to find either returns a
// ColumnResolutionError describing what was searched.
func ResolveColumns(headers []string, mapping *models.CsvMappingConfig) (ColumnIndexes, error) {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := ColumnIndexes{Ticker: -1, Quantity: -1, Cost: -1}
	if mapping != nil {
		cols.Ticker = indexOf(lower, strings.ToLower(mapping.TickerColumn))
		cols.Quantity = indexOf(lower, strings.ToLower(mapping.QuantityColumn))
		if mapping.CostColumn != "" {
			cols.Cost = indexOf(lower, strings.ToLower(mapping.CostColumn))
		}
	} else {
		cols.Ticker = indexOfAny(lower, tickerSynonyms)
		cols.Quantity = indexOfAny(lower, quantitySynonyms)
		cols.Cost = indexOfAny(lower, costSynonyms)
	}

	if cols.Ticker == -1 || cols.Quantity == -1 {
		searched := "synonym fallback"
		if mapping != nil {
			searched = fmt.Sprintf("account mapping {ticker:%q quantity:%q cost:%q}",
				mapping.TickerColumn, mapping.QuantityColumn, mapping.CostColumn)
		}
		return cols, &ColumnResolutionError{Searched: searched}
	}
	return cols, nil
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

func indexOfAny(headers []string, candidates []string) int {
	for i, h := range headers {
		for _, c := range candidates {
			if h == c {
				return i
			}
		}
	}
	return -1
}
