// backend/src/services/portfolio_service.go
package services

import (
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/username/atlasfolio/backend/src/engine"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/models"
)

const ckAggregatedHoldings = "agg_holdings_org_%s_base_%s"

type portfolioServiceImpl struct {
	orgStore       OrganizationStore
	accountStore   AccountStore
	securityStore  SecurityStore
	ledger         LedgerStore
	thresholdStore ThresholdStore
	fx             FxService
	reportCache    *cache.Cache
	defaults       models.RiskThresholdConfig
}

func NewPortfolioService(
	orgStore OrganizationStore,
	accountStore AccountStore,
	securityStore SecurityStore,
	ledger LedgerStore,
	thresholdStore ThresholdStore,
	fx FxService,
	reportCache *cache.Cache,
	defaultThresholds models.RiskThresholdConfig,
) PortfolioService {
	return &portfolioServiceImpl{
		orgStore:       orgStore,
		accountStore:   accountStore,
		securityStore:  securityStore,
		ledger:         ledger,
		thresholdStore: thresholdStore,
		fx:             fx,
		reportCache:    reportCache,
		defaults:       defaultThresholds,
	}
}

func (s *portfolioServiceImpl) GetAggregatedHoldings(orgID, baseCurrency string) ([]models.EnrichedHolding, error) {
	org, err := s.orgStore.GetByID(orgID)
	if err != nil {
		return nil, fmt.Errorf("loading organization %s: %w", orgID, err)
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}
	if baseCurrency == "" {
		baseCurrency = org.BaseCurrency
	}

	cacheKey := fmt.Sprintf(ckAggregatedHoldings, orgID, baseCurrency)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.([]models.EnrichedHolding), nil
	}

	accounts, err := s.accountStore.ListByOrg(orgID)
	if err != nil {
		return nil, fmt.Errorf("loading accounts for %s: %w", orgID, err)
	}
	accountIDs := make([]string, 0, len(accounts))
	accountsByID := make(map[string]models.Account, len(accounts))
	for _, a := range accounts {
		accountIDs = append(accountIDs, a.ID)
		accountsByID[a.ID] = a
	}

	ledgerTxs, err := s.ledger.ListByAccounts(accountIDs)
	if err != nil {
		return nil, fmt.Errorf("loading ledger for %s: %w", orgID, err)
	}

	positions := engine.CalculateRawHoldings(ledgerTxs)

	securitiesByID := make(map[string]models.Security)
	for _, pos := range positions {
		if _, ok := securitiesByID[pos.SecurityID]; ok {
			continue
		}
		sec, err := s.securityStore.GetByID(pos.SecurityID)
		if err != nil {
			return nil, fmt.Errorf("loading security %s: %w", pos.SecurityID, err)
		}
		if sec != nil {
			securitiesByID[pos.SecurityID] = *sec
		}
		// A missing security stays absent from the map; valuation turns
		// that into a ReferenceNotFoundError rather than fabricating data.
	}

	enriched, err := engine.AggregateHoldings(positions, securitiesByID, accountsByID, ledgerTxs, baseCurrency, s.fx.Lookup)
	if err != nil {
		return nil, err
	}

	s.reportCache.Set(cacheKey, enriched, cache.DefaultExpiration)
	return enriched, nil
}

func (s *portfolioServiceImpl) GetRiskReport(orgID, baseCurrency string) (*RiskReport, error) {
	holdings, err := s.GetAggregatedHoldings(orgID, baseCurrency)
	if err != nil {
		return nil, err
	}

	// Thresholds are read fresh on every call, never cached, so a settings
	// change is visible on the next request.
	thresholds, err := s.thresholdStore.Get(orgID)
	if err != nil {
		return nil, fmt.Errorf("loading risk thresholds for %s: %w", orgID, err)
	}
	cfg := s.defaults
	if thresholds != nil {
		cfg = *thresholds
	}

	metrics := engine.CalculateRiskMetrics(holdings, cfg)
	return &RiskReport{Holdings: holdings, Metrics: metrics, Thresholds: cfg}, nil
}

// InvalidateOrgCache drops every cached report for one organization. Called
// by ledger writers after an append.
func (s *portfolioServiceImpl) InvalidateOrgCache(orgID string) {
	prefix := fmt.Sprintf(ckAggregatedHoldings, orgID, "")
	for key := range s.reportCache.Items() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			s.reportCache.Delete(key)
		}
	}
	logger.L.Debug("Invalidated report cache", "orgID", orgID)
}
