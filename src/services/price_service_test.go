package services

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/atlasfolio/backend/src/models"
)

type mapQuoteProvider struct {
	quotes map[string]float64
	calls  int
}

func (m *mapQuoteProvider) Quote(ticker string) (float64, error) {
	m.calls++
	price, ok := m.quotes[ticker]
	if !ok {
		return 0, errors.New("unknown ticker")
	}
	return price, nil
}

func TestRefreshAll_UpdatesPrices(t *testing.T) {
	store := &fakeSecurityStore{securities: []models.Security{
		{ID: "sec_aapl", Ticker: "AAPL", Type: models.SecurityStock, CurrentPrice: 150},
		{ID: "sec_msft", Ticker: "MSFT", Type: models.SecurityStock, CurrentPrice: 300},
	}}
	provider := &mapQuoteProvider{quotes: map[string]float64{"AAPL": 190, "MSFT": 410}}
	svc := NewPriceService(store, provider, time.Minute)

	updated, err := svc.RefreshAll()
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	aapl, _ := store.GetByID("sec_aapl")
	assert.InDelta(t, 190, aapl.CurrentPrice, 1e-9)
	assert.Equal(t, time.Now().Format("2006-01-02"), aapl.LastUpdated)
}

func TestRefreshAll_SkipsCashAndFailures(t *testing.T) {
	store := &fakeSecurityStore{securities: []models.Security{
		{ID: "sec_usd", Ticker: "USD", Type: models.SecurityCash, CurrentPrice: 1},
		{ID: "sec_aapl", Ticker: "AAPL", Type: models.SecurityStock, CurrentPrice: 150},
		{ID: "sec_bad", Ticker: "XXXX", Type: models.SecurityStock, CurrentPrice: 9},
	}}
	provider := &mapQuoteProvider{quotes: map[string]float64{"AAPL": 190}}
	svc := NewPriceService(store, provider, time.Minute)

	updated, err := svc.RefreshAll()
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	cash, _ := store.GetByID("sec_usd")
	assert.InDelta(t, 1, cash.CurrentPrice, 1e-9)
	bad, _ := store.GetByID("sec_bad")
	assert.InDelta(t, 9, bad.CurrentPrice, 1e-9, "failed quote leaves the stored price alone")
	assert.Equal(t, 2, provider.calls, "cash never hits the provider")
}

func TestRefreshAll_QuoteCacheAcrossRuns(t *testing.T) {
	store := &fakeSecurityStore{securities: []models.Security{
		{ID: "sec_aapl", Ticker: "AAPL", Type: models.SecurityStock, CurrentPrice: 150},
	}}
	provider := &mapQuoteProvider{quotes: map[string]float64{"AAPL": 190}}
	svc := NewPriceService(store, provider, time.Minute)

	_, err := svc.RefreshAll()
	require.NoError(t, err)
	_, err = svc.RefreshAll()
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
}

func TestHTTPQuoteProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		switch symbol {
		case "AAPL":
			fmt.Fprintf(w, `{"symbol": "AAPL", "price": 190.5}`)
		case "FREE":
			fmt.Fprintf(w, `{"symbol": "FREE", "price": 0}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	provider := NewHTTPQuoteProvider(srv.URL)

	price, err := provider.Quote("AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 190.5, price, 1e-9)

	_, err = provider.Quote("GHOST")
	assert.Error(t, err)

	_, err = provider.Quote("FREE")
	assert.Error(t, err, "non-positive price is rejected")
}
