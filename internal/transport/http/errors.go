package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeInvalidQuery       = "invalid_query"
	codeUnauthenticated    = "unauthenticated"
	codeForbidden          = "forbidden"
	codeConflict           = "invalid_state"
	codeInvalidValue       = "invalid_value"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps a marketplace failure to a status by its kind.
// Unclassified errors are logged and hidden behind a generic 500.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	switch de.Kind {
	case domain.KindAuthorization:
		writeError(w, http.StatusForbidden, codeForbidden, de.Reason)
	case domain.KindState:
		writeError(w, http.StatusConflict, codeConflict, de.Reason)
	case domain.KindValue:
		writeError(w, http.StatusUnprocessableEntity, codeInvalidValue, de.Reason)
	case domain.KindNotFound:
		writeError(w, http.StatusNotFound, codeNotFound, de.Reason)
	default:
		logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
