package services

import (
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/atlasfolio/backend/src/engine"
	"github.com/username/atlasfolio/backend/src/models"
)

var testDefaultThresholds = models.RiskThresholdConfig{
	ConcentrationLimit: 0.15,
	SectorLimit:        0.35,
	MinCashWeight:      0.05,
}

type portfolioFixture struct {
	svc        PortfolioService
	ledger     *fakeLedgerStore
	securities *fakeSecurityStore
	thresholds *fakeThresholdStore
}

func newPortfolioFixture() *portfolioFixture {
	ledger := &fakeLedgerStore{txs: []models.Transaction{
		{ID: "tx_1", AccountID: "acc_us", SecurityID: "sec_aapl", Type: models.TransactionBuy, Quantity: 10, Price: 150, Date: "2024-01-05"},
		{ID: "tx_2", AccountID: "acc_jp", SecurityID: "sec_7203", Type: models.TransactionBuy, Quantity: 100, Price: 2500, Date: "2024-01-06"},
	}}
	securities := &fakeSecurityStore{securities: []models.Security{
		{ID: "sec_aapl", Ticker: "AAPL", Type: models.SecurityStock, Sector: "Technology", Country: "US", Currency: "USD", CurrentPrice: 200},
		{ID: "sec_7203", Ticker: "7203", Type: models.SecurityStock, Sector: "Consumer", Country: "JP", Currency: "JPY", CurrentPrice: 3000},
	}}
	accounts := &fakeAccountStore{accounts: []models.Account{
		{ID: "acc_us", OrgID: "org_1", Currency: "USD"},
		{ID: "acc_jp", OrgID: "org_1", Currency: "JPY"},
	}}
	orgs := &fakeOrgStore{orgs: []models.Organization{
		{ID: "org_1", Name: "Fixture Capital", BaseCurrency: "USD"},
	}}
	thresholds := &fakeThresholdStore{}
	fx := NewFxService(&fakeFxStore{rates: map[string]float64{"JPY-USD": 0.0065}}, time.Minute)
	svc := NewPortfolioService(orgs, accounts, securities, ledger, thresholds, fx,
		cache.New(time.Minute, 2*time.Minute), testDefaultThresholds)
	return &portfolioFixture{svc: svc, ledger: ledger, securities: securities, thresholds: thresholds}
}

func TestGetAggregatedHoldings_ConvertsToBaseCurrency(t *testing.T) {
	f := newPortfolioFixture()

	holdings, err := f.svc.GetAggregatedHoldings("org_1", "")
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	byTicker := make(map[string]models.EnrichedHolding)
	for _, h := range holdings {
		byTicker[h.Security.Ticker] = h
	}

	aapl := byTicker["AAPL"]
	assert.InDelta(t, 2000, aapl.MarketValueLocal, 1e-6)
	assert.InDelta(t, 2000, aapl.MarketValueBase, 1e-6) // USD-USD identity

	toyota := byTicker["7203"]
	assert.InDelta(t, 300000, toyota.MarketValueLocal, 1e-6)
	assert.InDelta(t, 300000*0.0065, toyota.MarketValueBase, 1e-6)

	total := aapl.Weight + toyota.Weight
	assert.InDelta(t, 1.0, total, 1e-9)

	// Sorted by converted market value descending.
	assert.Equal(t, "AAPL", holdings[0].Security.Ticker)
}

func TestGetAggregatedHoldings_UnknownOrg(t *testing.T) {
	f := newPortfolioFixture()

	_, err := f.svc.GetAggregatedHoldings("org_ghost", "")
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestGetAggregatedHoldings_MissingSecurityFails(t *testing.T) {
	f := newPortfolioFixture()
	f.ledger.txs = append(f.ledger.txs, models.Transaction{
		ID: "tx_3", AccountID: "acc_us", SecurityID: "sec_phantom",
		Type: models.TransactionBuy, Quantity: 1, Price: 1, Date: "2024-02-01",
	})

	_, err := f.svc.GetAggregatedHoldings("org_1", "")
	var refErr *engine.ReferenceNotFoundError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "sec_phantom", refErr.ID)
}

func TestGetAggregatedHoldings_CachesPerOrgAndBase(t *testing.T) {
	f := newPortfolioFixture()

	_, err := f.svc.GetAggregatedHoldings("org_1", "")
	require.NoError(t, err)

	// Ledger appends without invalidation are not visible yet.
	f.ledger.txs = append(f.ledger.txs, models.Transaction{
		ID: "tx_3", AccountID: "acc_us", SecurityID: "sec_aapl",
		Type: models.TransactionBuy, Quantity: 5, Price: 150, Date: "2024-02-01",
	})
	cached, err := f.svc.GetAggregatedHoldings("org_1", "")
	require.NoError(t, err)
	var aaplQty float64
	for _, h := range cached {
		if h.Security.Ticker == "AAPL" {
			aaplQty = h.Quantity
		}
	}
	assert.InDelta(t, 10, aaplQty, 1e-9)

	// A different base currency is a different cache entry and recomputes.
	fresh, err := f.svc.GetAggregatedHoldings("org_1", "JPY")
	require.NoError(t, err)
	for _, h := range fresh {
		if h.Security.Ticker == "AAPL" {
			aaplQty = h.Quantity
		}
	}
	assert.InDelta(t, 15, aaplQty, 1e-9)
}

func TestInvalidateOrgCache_DropsAllBases(t *testing.T) {
	f := newPortfolioFixture()

	_, err := f.svc.GetAggregatedHoldings("org_1", "")
	require.NoError(t, err)
	_, err = f.svc.GetAggregatedHoldings("org_1", "JPY")
	require.NoError(t, err)

	f.ledger.txs = append(f.ledger.txs, models.Transaction{
		ID: "tx_3", AccountID: "acc_us", SecurityID: "sec_aapl",
		Type: models.TransactionBuy, Quantity: 5, Price: 150, Date: "2024-02-01",
	})
	f.svc.InvalidateOrgCache("org_1")

	for _, base := range []string{"", "JPY"} {
		holdings, err := f.svc.GetAggregatedHoldings("org_1", base)
		require.NoError(t, err)
		for _, h := range holdings {
			if h.Security.Ticker == "AAPL" {
				assert.InDelta(t, 15, h.Quantity, 1e-9, "base %q served stale data", base)
			}
		}
	}
}

func TestGetRiskReport_UsesDefaultsWhenUnset(t *testing.T) {
	f := newPortfolioFixture()

	report, err := f.svc.GetRiskReport("org_1", "")
	require.NoError(t, err)
	assert.Equal(t, testDefaultThresholds, report.Thresholds)
	assert.Len(t, report.Holdings, 2)
	// AAPL is ~50% of the portfolio, well over the 15% limit.
	assert.True(t, report.Metrics.ConcentrationHigh)
	assert.Equal(t, "AAPL", report.Metrics.TopConcentrationTicker)
}

func TestGetRiskReport_StoredThresholdsVisibleImmediately(t *testing.T) {
	f := newPortfolioFixture()

	before, err := f.svc.GetRiskReport("org_1", "")
	require.NoError(t, err)
	assert.True(t, before.Metrics.ConcentrationHigh)

	// Raising the limits past every weight must take effect on the very
	// next call, even while holdings are served from cache.
	relaxed := models.RiskThresholdConfig{ConcentrationLimit: 0.99, SectorLimit: 0.99, MinCashWeight: 0}
	require.NoError(t, f.thresholds.Put("org_1", relaxed))

	after, err := f.svc.GetRiskReport("org_1", "")
	require.NoError(t, err)
	assert.Equal(t, relaxed, after.Thresholds)
	assert.False(t, after.Metrics.ConcentrationHigh)
	assert.Equal(t, "AAPL", after.Metrics.TopConcentrationTicker, "top ticker is reported even without a breach")
}

func TestGetRiskReport_EmptyPortfolio(t *testing.T) {
	f := newPortfolioFixture()
	f.ledger.txs = nil

	report, err := f.svc.GetRiskReport("org_1", "")
	require.NoError(t, err)
	assert.Empty(t, report.Holdings)
	assert.Equal(t, 10, report.Metrics.Score)
}
