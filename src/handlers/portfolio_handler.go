// backend/src/handlers/portfolio_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/atlasfolio/backend/src/engine"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/models"
	"github.com/username/atlasfolio/backend/src/services"
)

type PortfolioHandler struct {
	portfolioService services.PortfolioService
}

func NewPortfolioHandler(portfolioService services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// HandleGetHoldings serves the valued, aggregated holdings of one
// organization. The optional ?base= query overrides the organization's
// base currency for this request only.
func (h *PortfolioHandler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	base := r.URL.Query().Get("base")

	holdings, err := h.portfolioService.GetAggregatedHoldings(orgID, base)
	if err != nil {
		writePortfolioError(w, r, orgID, err)
		return
	}
	if holdings == nil {
		holdings = []models.EnrichedHolding{}
	}
	sendJSON(w, holdings)
}

func (h *PortfolioHandler) HandleGetRisk(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	base := r.URL.Query().Get("base")

	report, err := h.portfolioService.GetRiskReport(orgID, base)
	if err != nil {
		writePortfolioError(w, r, orgID, err)
		return
	}
	sendJSON(w, report)
}

func writePortfolioError(w http.ResponseWriter, r *http.Request, orgID string, err error) {
	var refErr *engine.ReferenceNotFoundError
	switch {
	case errors.Is(err, services.ErrOrganizationNotFound):
		sendJSONError(w, "organization not found", http.StatusNotFound)
	case errors.As(err, &refErr):
		// The ledger references reference data that no longer resolves.
		// Surfacing this beats valuing the book with fabricated records.
		logger.ErrorFromContext(r.Context(), "Unresolvable reference in ledger", "orgID", orgID, "error", err)
		sendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.ErrorFromContext(r.Context(), "Failed to build portfolio report", "orgID", orgID, "error", err)
		sendJSONError(w, "Failed to build portfolio report", http.StatusInternalServerError)
	}
}
