package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/atlasfolio/backend/src/models"
)

func TestResolveColumns_AccountMappingCaseInsensitive(t *testing.T) {
	mapping := &models.CsvMappingConfig{
		TickerColumn:   "Symbol",
		QuantityColumn: "Position",
		CostColumn:     "AvgPrice",
	}

	cols, err := ResolveColumns([]string{"SYMBOL", "position", "avgprice", "extra"}, mapping)
	require.NoError(t, err)
	assert.Equal(t, 0, cols.Ticker)
	assert.Equal(t, 1, cols.Quantity)
	assert.Equal(t, 2, cols.Cost)
}

func TestResolveColumns_MappingMissingRequiredColumn(t *testing.T) {
	mapping := &models.CsvMappingConfig{TickerColumn: "Symbol", QuantityColumn: "Position"}

	_, err := ResolveColumns([]string{"Symbol", "Qty"}, mapping)
	var colErr *ColumnResolutionError
	require.ErrorAs(t, err, &colErr)
	assert.Contains(t, colErr.Searched, "Position")
	assert.Contains(t, colErr.Searched, "Symbol")
}

func TestResolveColumns_SynonymFallback(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
	}{
		{"english", []string{"Ticker", "Quantity", "Cost Basis"}},
		{"broker variants", []string{"symbol", "shares", "avg cost"}},
		{"chinese", []string{"证券代码", "持仓", "成本"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cols, err := ResolveColumns(tc.headers, nil)
			require.NoError(t, err)
			assert.Equal(t, 0, cols.Ticker)
			assert.Equal(t, 1, cols.Quantity)
			assert.Equal(t, 2, cols.Cost)
		})
	}
}

func TestResolveColumns_MissingCostDegrades(t *testing.T) {
	cols, err := ResolveColumns([]string{"ticker", "qty"}, nil)
	require.NoError(t, err)
	assert.Equal(t, -1, cols.Cost)
}

func TestResolveColumns_NoResolvableColumnsFails(t *testing.T) {
	_, err := ResolveColumns([]string{"foo", "bar"}, nil)
	var colErr *ColumnResolutionError
	require.ErrorAs(t, err, &colErr)
	assert.Contains(t, colErr.Searched, "synonym fallback")
}
