// backend/src/handlers/price_handler.go
package handlers

import (
	"net/http"

	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/services"
)

type PriceHandler struct {
	priceService services.PriceService
}

func NewPriceHandler(priceService services.PriceService) *PriceHandler {
	return &PriceHandler{priceService: priceService}
}

// HandleRefreshPrices triggers a best-effort refresh of all stored
// security prices from the quote provider.
func (h *PriceHandler) HandleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	updated, err := h.priceService.RefreshAll()
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Price refresh failed", "error", err)
		sendJSONError(w, "Price refresh failed", http.StatusInternalServerError)
		return
	}
	sendJSON(w, map[string]int{"updated": updated})
}
