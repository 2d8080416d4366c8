// backend/src/services/fx_service.go
package services

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/atlasfolio/backend/src/logger"
)

type fxServiceImpl struct {
	store     FxRateStore
	rateCache *cache.Cache
}

// NewFxService wraps an FxRateStore with a read-through cache. Rates are
// static-ish reference data, so a generous TTL is fine.
func NewFxService(store FxRateStore, ttl time.Duration) FxService {
	return &fxServiceImpl{
		store:     store,
		rateCache: cache.New(ttl, 2*ttl),
	}
}

// Lookup resolves a pair key like "JPY-USD". Identity pairs short-circuit
// to 1.0. An unmodeled pair returns (1.0, false): the caller decides
// whether the fallback is acceptable, and valuation documents that it is.
func (s *fxServiceImpl) Lookup(pair string) (float64, bool) {
	if from, to, found := strings.Cut(pair, "-"); found && from == to {
		return 1.0, true
	}

	if cached, found := s.rateCache.Get(pair); found {
		entry := cached.(fxCacheEntry)
		return entry.rate, entry.ok
	}

	rate, ok, err := s.store.GetRate(pair)
	if err != nil {
		logger.L.Warn("FX rate lookup failed, falling back to 1.0", "pair", pair, "error", err)
		return 1.0, false
	}
	if !ok {
		rate = 1.0
	}
	s.rateCache.Set(pair, fxCacheEntry{rate: rate, ok: ok}, cache.DefaultExpiration)
	return rate, ok
}

type fxCacheEntry struct {
	rate float64
	ok   bool
}
