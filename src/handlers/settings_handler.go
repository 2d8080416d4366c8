// backend/src/handlers/settings_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/models"
	"github.com/username/atlasfolio/backend/src/services"
)

// SettingsHandler serves the per-organization risk threshold config.
// Reads return defaults when nothing is stored; writes require the
// advisory OWNER role (enforced by middleware on the route).
type SettingsHandler struct {
	orgStore       services.OrganizationStore
	thresholdStore services.ThresholdStore
	invalidator    services.ReportInvalidator
	defaults       models.RiskThresholdConfig
}

func NewSettingsHandler(
	orgStore services.OrganizationStore,
	thresholdStore services.ThresholdStore,
	invalidator services.ReportInvalidator,
	defaults models.RiskThresholdConfig,
) *SettingsHandler {
	return &SettingsHandler{
		orgStore:       orgStore,
		thresholdStore: thresholdStore,
		invalidator:    invalidator,
		defaults:       defaults,
	}
}

func (h *SettingsHandler) HandleGetThresholds(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	org, err := h.orgStore.GetByID(orgID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to load organization", "orgID", orgID, "error", err)
		sendJSONError(w, "Failed to load organization", http.StatusInternalServerError)
		return
	}
	if org == nil {
		sendJSONError(w, "organization not found", http.StatusNotFound)
		return
	}

	cfg, err := h.thresholdStore.Get(orgID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to load risk thresholds", "orgID", orgID, "error", err)
		sendJSONError(w, "Failed to load risk thresholds", http.StatusInternalServerError)
		return
	}
	if cfg == nil {
		defaults := h.defaults
		cfg = &defaults
	}
	sendJSON(w, cfg)
}

func (h *SettingsHandler) HandlePutThresholds(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	org, err := h.orgStore.GetByID(orgID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to load organization", "orgID", orgID, "error", err)
		sendJSONError(w, "Failed to load organization", http.StatusInternalServerError)
		return
	}
	if org == nil {
		sendJSONError(w, "organization not found", http.StatusNotFound)
		return
	}

	var cfg models.RiskThresholdConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validateThresholds(cfg); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.thresholdStore.Put(orgID, cfg); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to store risk thresholds", "orgID", orgID, "error", err)
		sendJSONError(w, "Failed to store risk thresholds", http.StatusInternalServerError)
		return
	}

	// Risk scoring reads thresholds fresh, but cached reports carry the
	// thresholds they were built with, so drop them.
	h.invalidator.InvalidateOrgCache(orgID)

	logger.InfoFromContext(r.Context(), "Risk thresholds updated", "orgID", orgID,
		"concentrationLimit", cfg.ConcentrationLimit, "sectorLimit", cfg.SectorLimit)
	sendJSON(w, cfg)
}

func validateThresholds(cfg models.RiskThresholdConfig) error {
	check := func(name string, v float64) error {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %g", name, v)
		}
		return nil
	}
	if err := check("concentration_limit", cfg.ConcentrationLimit); err != nil {
		return err
	}
	if err := check("sector_limit", cfg.SectorLimit); err != nil {
		return err
	}
	if cfg.MinCashWeight < 0 || cfg.MinCashWeight > 1 {
		return fmt.Errorf("min_cash_weight must be in [0, 1], got %g", cfg.MinCashWeight)
	}
	return nil
}
