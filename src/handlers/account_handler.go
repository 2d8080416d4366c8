// backend/src/handlers/account_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/models"
	"github.com/username/atlasfolio/backend/src/security/validation"
	"github.com/username/atlasfolio/backend/src/services"
)

type AccountHandler struct {
	accountStore services.AccountStore
}

func NewAccountHandler(accountStore services.AccountStore) *AccountHandler {
	return &AccountHandler{accountStore: accountStore}
}

// HandleUpdateCsvMapping replaces the snapshot column mapping of one
// account. A null body clears the mapping, falling back to the built-in
// synonym list.
func (h *AccountHandler) HandleUpdateCsvMapping(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	account, err := h.accountStore.GetByID(accountID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to load account", "accountID", accountID, "error", err)
		sendJSONError(w, "Failed to load account", http.StatusInternalServerError)
		return
	}
	if account == nil {
		sendJSONError(w, "account not found", http.StatusNotFound)
		return
	}

	var mapping *models.CsvMappingConfig
	if err := json.NewDecoder(r.Body).Decode(&mapping); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if mapping != nil {
		mapping.TickerColumn = validation.SanitizeText(mapping.TickerColumn)
		mapping.QuantityColumn = validation.SanitizeText(mapping.QuantityColumn)
		mapping.CostColumn = validation.SanitizeText(mapping.CostColumn)
		if mapping.TickerColumn == "" || mapping.QuantityColumn == "" {
			sendJSONError(w, "ticker_column and quantity_column are required", http.StatusBadRequest)
			return
		}
	}

	if err := h.accountStore.UpdateCsvMapping(accountID, mapping); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to update CSV mapping", "accountID", accountID, "error", err)
		sendJSONError(w, "Failed to update CSV mapping", http.StatusInternalServerError)
		return
	}

	logger.InfoFromContext(r.Context(), "CSV mapping updated", "accountID", accountID)
	w.WriteHeader(http.StatusNoContent)
}
