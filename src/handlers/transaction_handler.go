// backend/src/handlers/transaction_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/models"
	"github.com/username/atlasfolio/backend/src/services"
)

type TransactionHandler struct {
	transactionService services.TransactionService
}

func NewTransactionHandler(transactionService services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// HandleAddManualTransaction appends one manually entered ledger
// transaction. Input validation lives in the service; this maps its
// sentinel errors to status codes.
func (h *TransactionHandler) HandleAddManualTransaction(w http.ResponseWriter, r *http.Request) {
	var input services.ManualTransactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := h.transactionService.AddManual(input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			sendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrTargetAccountNotFound):
			sendJSONError(w, "account not found", http.StatusNotFound)
		default:
			logger.ErrorFromContext(r.Context(), "Failed to add manual transaction", "accountID", input.AccountID, "error", err)
			sendJSONError(w, "Failed to add transaction", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tx)
}

func (h *TransactionHandler) HandleListAccountTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	txs, err := h.transactionService.ListByAccount(accountID)
	if err != nil {
		if errors.Is(err, services.ErrTargetAccountNotFound) {
			sendJSONError(w, "account not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "Failed to list transactions", "accountID", accountID, "error", err)
		sendJSONError(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	sendJSON(w, txs)
}
