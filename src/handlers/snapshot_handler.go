// backend/src/handlers/snapshot_handler.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/atlasfolio/backend/src/config"
	"github.com/username/atlasfolio/backend/src/engine"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/security/validation"
	"github.com/username/atlasfolio/backend/src/services"
)

type SnapshotHandler struct {
	snapshotService services.SnapshotService
}

func NewSnapshotHandler(snapshotService services.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshotService: snapshotService}
}

// HandleSnapshotUpload reconciles an uploaded holdings CSV against the
// account's ledger. The snapshot arrives either as a multipart "file" field
// or as a raw text body; both are capped at the configured upload size.
// The org the account must belong to comes from the query string.
func (h *SnapshotHandler) HandleSnapshotUpload(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	orgID := r.URL.Query().Get("org_id")
	if orgID == "" {
		sendJSONError(w, "org_id query parameter is required", http.StatusBadRequest)
		return
	}

	csvContent, err := h.readSnapshotBody(r)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.snapshotService.Reconcile(orgID, accountID, csvContent)
	if err != nil {
		var colErr *engine.ColumnResolutionError
		switch {
		case errors.Is(err, services.ErrTargetAccountNotFound):
			sendJSONError(w, "account not found", http.StatusNotFound)
		case errors.As(err, &colErr):
			sendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			logger.ErrorFromContext(r.Context(), "Snapshot reconciliation failed", "accountID", accountID, "error", err)
			sendJSONError(w, "Snapshot reconciliation failed", http.StatusInternalServerError)
		}
		return
	}

	sendJSON(w, result)
}

func (h *SnapshotHandler) readSnapshotBody(r *http.Request) (string, error) {
	maxBytes := config.Cfg.MaxUploadSizeBytes

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return "", fmt.Errorf("failed to parse upload or file too large (max %d MB)", maxBytes/(1024*1024))
		}
		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("failed to retrieve file from request, ensure 'file' field is used")
		}
		defer file.Close()

		if fileHeader.Size > maxBytes {
			return "", fmt.Errorf("file too large, max %d MB", maxBytes/(1024*1024))
		}
		if declared := fileHeader.Header.Get("Content-Type"); declared != "" {
			if err := validation.ValidateClientContentType(declared); err != nil {
				return "", err
			}
		}
		if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
			return "", err
		}

		content, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("failed to read uploaded file: %w", err)
		}
		return string(content), nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return "", fmt.Errorf("snapshot too large, max %d MB", maxBytes/(1024*1024))
	}
	if len(body) == 0 {
		return "", fmt.Errorf("snapshot body is empty")
	}
	return string(body), nil
}
