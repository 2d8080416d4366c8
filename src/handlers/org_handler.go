// backend/src/handlers/org_handler.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/models"
	"github.com/username/atlasfolio/backend/src/services"
)

type OrgHandler struct {
	orgStore     services.OrganizationStore
	accountStore services.AccountStore
}

func NewOrgHandler(orgStore services.OrganizationStore, accountStore services.AccountStore) *OrgHandler {
	return &OrgHandler{orgStore: orgStore, accountStore: accountStore}
}

func (h *OrgHandler) HandleListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgStore.List()
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to list organizations", "error", err)
		sendJSONError(w, "Failed to list organizations", http.StatusInternalServerError)
		return
	}
	if orgs == nil {
		orgs = []models.Organization{}
	}
	sendJSON(w, orgs)
}

func (h *OrgHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
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

	accounts, err := h.accountStore.ListByOrg(orgID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to list accounts", "orgID", orgID, "error", err)
		sendJSONError(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	sendJSON(w, accounts)
}

func (h *OrgHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
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

	members, err := h.orgStore.ListMembers(orgID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to list members", "orgID", orgID, "error", err)
		sendJSONError(w, "Failed to list members", http.StatusInternalServerError)
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	sendJSON(w, members)
}
