// backend/src/services/price_service.go
package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/models"
)

type priceServiceImpl struct {
	securityStore SecurityStore
	provider      QuoteProvider
	quoteCache    *cache.Cache
}

// NewPriceService builds the refresh service over a quote provider. Quotes
// are cached per ticker so repeated refresh triggers inside the TTL do not
// hammer the provider.
func NewPriceService(securityStore SecurityStore, provider QuoteProvider, ttl time.Duration) PriceService {
	return &priceServiceImpl{
		securityStore: securityStore,
		provider:      provider,
		quoteCache:    cache.New(ttl, 2*ttl),
	}
}

// RefreshAll re-prices every stored security from the provider. Per-ticker
// failures are logged and skipped; the refresh is best-effort and partial
// updates are fine since each stored price stands on its own.
func (s *priceServiceImpl) RefreshAll() (int, error) {
	securities, err := s.securityStore.ListAll()
	if err != nil {
		return 0, fmt.Errorf("listing securities: %w", err)
	}

	today := time.Now().Format("2006-01-02")
	updated := 0
	for _, sec := range securities {
		if sec.Type == models.SecurityCash {
			continue // cash is always worth 1 unit of itself
		}

		price, err := s.quote(sec.Ticker)
		if err != nil {
			logger.L.Warn("Price refresh skipped security", "ticker", sec.Ticker, "error", err)
			continue
		}
		if err := s.securityStore.UpdatePrice(sec.ID, price, today); err != nil {
			logger.L.Error("Failed to store refreshed price", "ticker", sec.Ticker, "error", err)
			continue
		}
		updated++
	}
	logger.L.Info("Price refresh finished", "total", len(securities), "updated", updated)
	return updated, nil
}

func (s *priceServiceImpl) quote(ticker string) (float64, error) {
	if cached, found := s.quoteCache.Get(ticker); found {
		return cached.(float64), nil
	}
	price, err := s.provider.Quote(ticker)
	if err != nil {
		return 0, err
	}
	s.quoteCache.Set(ticker, price, cache.DefaultExpiration)
	return price, nil
}

// httpQuoteProvider fetches quotes from a JSON endpoint of the form
// GET {baseURL}/quote?symbol=TICKER -> {"symbol": "...", "price": 123.45}.
type httpQuoteProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPQuoteProvider(baseURL string) QuoteProvider {
	return &httpQuoteProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *httpQuoteProvider) Quote(ticker string) (float64, error) {
	reqURL := fmt.Sprintf("%s/quote?symbol=%s", p.baseURL, url.QueryEscape(ticker))
	resp, err := p.client.Get(reqURL)
	if err != nil {
		return 0, fmt.Errorf("quote request for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote request for %s: unexpected status %s", ticker, resp.Status)
	}

	var body struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decoding quote for %s: %w", ticker, err)
	}
	if body.Price <= 0 {
		return 0, fmt.Errorf("quote for %s: non-positive price %g", ticker, body.Price)
	}
	return body.Price, nil
}
