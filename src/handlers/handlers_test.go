package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/atlasfolio/backend/src/config"
	"github.com/username/atlasfolio/backend/src/engine"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/models"
	"github.com/username/atlasfolio/backend/src/services"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{MaxUploadSizeBytes: 1024 * 1024}
	os.Exit(m.Run())
}

// newTestRouter wires the handlers under the same routes main registers.
func newTestRouter(
	portfolio services.PortfolioService,
	transactions services.TransactionService,
	snapshots services.SnapshotService,
) http.Handler {
	portfolioHandler := NewPortfolioHandler(portfolio)
	txHandler := NewTransactionHandler(transactions)
	snapshotHandler := NewSnapshotHandler(snapshots)

	r := chi.NewRouter()
	r.Use(OrgRoleMiddleware)
	r.Get("/api/organizations/{orgID}/holdings", portfolioHandler.HandleGetHoldings)
	r.Get("/api/organizations/{orgID}/risk", portfolioHandler.HandleGetRisk)
	r.Post("/api/transactions/manual", txHandler.HandleAddManualTransaction)
	r.Get("/api/accounts/{accountID}/transactions", txHandler.HandleListAccountTransactions)
	r.Post("/api/accounts/{accountID}/snapshot", snapshotHandler.HandleSnapshotUpload)
	return r
}

type fakePortfolioService struct {
	holdings []models.EnrichedHolding
	report   *services.RiskReport
	err      error
}

func (f *fakePortfolioService) GetAggregatedHoldings(orgID, base string) ([]models.EnrichedHolding, error) {
	return f.holdings, f.err
}

func (f *fakePortfolioService) GetRiskReport(orgID, base string) (*services.RiskReport, error) {
	return f.report, f.err
}

func (f *fakePortfolioService) InvalidateOrgCache(orgID string) {}

type fakeTransactionService struct {
	tx  *models.Transaction
	txs []models.Transaction
	err error
}

func (f *fakeTransactionService) AddManual(input services.ManualTransactionInput) (*models.Transaction, error) {
	return f.tx, f.err
}

func (f *fakeTransactionService) ListByAccount(accountID string) ([]models.Transaction, error) {
	return f.txs, f.err
}

type fakeSnapshotService struct {
	result  *services.ReconcileResult
	err     error
	gotOrg  string
	gotAcc  string
	gotBody string
}

func (f *fakeSnapshotService) Reconcile(orgID, accountID, csvContent string) (*services.ReconcileResult, error) {
	f.gotOrg, f.gotAcc, f.gotBody = orgID, accountID, csvContent
	return f.result, f.err
}

func TestHandleGetHoldings(t *testing.T) {
	portfolio := &fakePortfolioService{holdings: []models.EnrichedHolding{
		{Position: models.Position{SecurityID: "sec_1", Quantity: 10}, Weight: 1},
	}}
	router := newTestRouter(portfolio, &fakeTransactionService{}, &fakeSnapshotService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/organizations/org_1/holdings?base=USD", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"sec_1"`)
}

func TestHandleGetHoldings_UnknownOrg(t *testing.T) {
	portfolio := &fakePortfolioService{err: services.ErrOrganizationNotFound}
	router := newTestRouter(portfolio, &fakeTransactionService{}, &fakeSnapshotService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/organizations/org_x/holdings", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetHoldings_DanglingReference(t *testing.T) {
	portfolio := &fakePortfolioService{err: &engine.ReferenceNotFoundError{Kind: "security", ID: "sec_gone"}}
	router := newTestRouter(portfolio, &fakeTransactionService{}, &fakeSnapshotService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/organizations/org_1/holdings", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "sec_gone")
}

func TestHandleGetRisk(t *testing.T) {
	portfolio := &fakePortfolioService{report: &services.RiskReport{
		Metrics:    models.RiskMetric{Score: 40, ConcentrationHigh: true},
		Thresholds: models.RiskThresholdConfig{ConcentrationLimit: 0.15, SectorLimit: 0.35},
	}}
	router := newTestRouter(portfolio, &fakeTransactionService{}, &fakeSnapshotService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/organizations/org_1/risk", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"score":40`)
}

func TestHandleAddManualTransaction(t *testing.T) {
	transactions := &fakeTransactionService{tx: &models.Transaction{ID: "tx_man_1", Quantity: 10}}
	router := newTestRouter(&fakePortfolioService{}, transactions, &fakeSnapshotService{})

	body := `{"ticker": "AAPL", "account_id": "acc_1", "quantity": 10, "price": 150}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/transactions/manual", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "tx_man_1")
}

func TestHandleAddManualTransaction_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"malformed json", `{"ticker":`, nil, http.StatusBadRequest},
		{"invalid input", `{}`, services.ErrInvalidInput, http.StatusBadRequest},
		{"unknown account", `{"ticker": "AAPL"}`, services.ErrTargetAccountNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakePortfolioService{}, &fakeTransactionService{err: tc.err}, &fakeSnapshotService{})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/transactions/manual", strings.NewReader(tc.body)))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestHandleSnapshotUpload_RawBody(t *testing.T) {
	snapshots := &fakeSnapshotService{result: &services.ReconcileResult{
		Adjustments: []models.Transaction{{ID: "tx_sync_1", Quantity: 20}},
		RowsRead:    1,
	}}
	router := newTestRouter(&fakePortfolioService{}, &fakeTransactionService{}, snapshots)

	body := "ticker,quantity\nAAPL,120\n"
	req := httptest.NewRequest("POST", "/api/accounts/acc_1/snapshot?org_id=org_1", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tx_sync_1")
	assert.Equal(t, "org_1", snapshots.gotOrg)
	assert.Equal(t, "acc_1", snapshots.gotAcc)
	assert.Equal(t, body, snapshots.gotBody)
}

func TestHandleSnapshotUpload_MissingOrgID(t *testing.T) {
	router := newTestRouter(&fakePortfolioService{}, &fakeTransactionService{}, &fakeSnapshotService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/accounts/acc_1/snapshot", strings.NewReader("x")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSnapshotUpload_UnresolvableColumns(t *testing.T) {
	snapshots := &fakeSnapshotService{err: &engine.ColumnResolutionError{Searched: "synonym fallback"}}
	router := newTestRouter(&fakePortfolioService{}, &fakeTransactionService{}, snapshots)

	req := httptest.NewRequest("POST", "/api/accounts/acc_1/snapshot?org_id=org_1", strings.NewReader("foo,bar\n"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRequireOwnerRole(t *testing.T) {
	protected := RequireOwnerRole(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	router := chi.NewRouter()
	router.Use(OrgRoleMiddleware)
	router.Put("/settings", protected.ServeHTTP)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("PUT", "/settings", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code, "missing role defaults to VIEWER")

	req := httptest.NewRequest("PUT", "/settings", nil)
	req.Header.Set("X-Org-Role", "EDITOR")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest("PUT", "/settings", nil)
	req.Header.Set("X-Org-Role", "OWNER")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
