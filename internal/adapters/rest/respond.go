package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
)

type errorBody struct {
	Message string `json:"message"`
}

type successBody struct {
	Message string                     `json:"message"`
	Failed  []domain.MembershipFailure `json:"failed,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type successEnvelope struct {
	Success successBody `json:"success"`
}

// writeJSON encodes any payload with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeSuccess wraps a human-readable message in the success envelope.
func writeSuccess(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, successEnvelope{Success: successBody{Message: msg}})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Message: msg}})
}

// writeDomainError maps a service error onto an HTTP status and the error
// envelope. Unclassified errors become an opaque 500; the real cause goes to
// the log, not the client.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateName):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAssetUpload), errors.Is(err, domain.ErrStorage):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Operation failed")
	}
}

func isJSONContentType(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
