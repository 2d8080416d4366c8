package main

import (
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/atlasfolio/backend/src/config"
	"github.com/username/atlasfolio/backend/src/database"
	"github.com/username/atlasfolio/backend/src/handlers"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/models"
	"github.com/username/atlasfolio/backend/src/services"
	"github.com/username/atlasfolio/backend/src/storage"
	"golang.org/x/time/rate"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			config.Cfg.FrontendBaseURL: true,
			"http://localhost:3000":    true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, X-Org-Role")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Atlasfolio backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	ledgerStore := storage.NewSQLiteLedgerStore(database.DB)
	securityStore := storage.NewSQLiteSecurityStore(database.DB)
	accountStore := storage.NewSQLiteAccountStore(database.DB)
	orgStore := storage.NewSQLiteOrganizationStore(database.DB)
	thresholdStore := storage.NewSQLiteThresholdStore(database.DB)
	fxStore := storage.NewSQLiteFxRateStore(database.DB)

	defaultThresholds := models.RiskThresholdConfig{
		ConcentrationLimit: config.Cfg.DefaultConcentrationLimit,
		SectorLimit:        config.Cfg.DefaultSectorLimit,
		MinCashWeight:      config.Cfg.DefaultMinCashWeight,
	}

	reportCache := cache.New(config.Cfg.ReportCacheTTL, 2*config.Cfg.ReportCacheTTL)
	accountLocks := services.NewAccountLocks()

	fxService := services.NewFxService(fxStore, config.Cfg.FxCacheTTL)
	portfolioService := services.NewPortfolioService(
		orgStore, accountStore, securityStore, ledgerStore,
		thresholdStore, fxService, reportCache, defaultThresholds)
	snapshotService := services.NewSnapshotService(
		accountStore, securityStore, ledgerStore, accountLocks, portfolioService)
	transactionService := services.NewTransactionService(
		accountStore, securityStore, ledgerStore, accountLocks, portfolioService)
	quoteProvider := services.NewHTTPQuoteProvider(config.Cfg.QuoteProviderBaseURL)
	priceService := services.NewPriceService(securityStore, quoteProvider, config.Cfg.QuoteCacheTTL)

	orgHandler := handlers.NewOrgHandler(orgStore, accountStore)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	txHandler := handlers.NewTransactionHandler(transactionService)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService)
	settingsHandler := handlers.NewSettingsHandler(orgStore, thresholdStore, portfolioService, defaultThresholds)
	accountHandler := handlers.NewAccountHandler(accountStore)
	priceHandler := handlers.NewPriceHandler(priceService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Atlasfolio Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(handlers.OrgRoleMiddleware)

		r.Get("/organizations", orgHandler.HandleListOrganizations)
		r.Get("/organizations/{orgID}/accounts", orgHandler.HandleListAccounts)
		r.Get("/organizations/{orgID}/members", orgHandler.HandleListMembers)

		r.Get("/organizations/{orgID}/holdings", portfolioHandler.HandleGetHoldings)
		r.Get("/organizations/{orgID}/risk", portfolioHandler.HandleGetRisk)

		r.Get("/organizations/{orgID}/risk-thresholds", settingsHandler.HandleGetThresholds)
		r.With(handlers.RequireOwnerRole).Put("/organizations/{orgID}/risk-thresholds", settingsHandler.HandlePutThresholds)

		r.Post("/transactions/manual", txHandler.HandleAddManualTransaction)
		r.Get("/accounts/{accountID}/transactions", txHandler.HandleListAccountTransactions)
		r.Post("/accounts/{accountID}/snapshot", snapshotHandler.HandleSnapshotUpload)
		r.With(handlers.RequireOwnerRole).Patch("/accounts/{accountID}/csv-mapping", accountHandler.HandleUpdateCsvMapping)

		r.Post("/securities/refresh-prices", priceHandler.HandleRefreshPrices)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
