package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopstats/internal/compare"
)

// Machine-readable error codes.
const (
	codePlayerNotFound = "player_not_found"
	codeSeasonNotFound = "season_not_found"
	codeSeasonMismatch = "season_mismatch"
	codeBadRequest     = "bad_request"
	codeNotFound       = "not_found"
	codeTimeout        = "timeout"
	codeInternal       = "internal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps a request failure to an HTTP status and error code. An
// expired request deadline wins over whatever domain error the sources
// wrapped it in. ErrSeasonMismatch is tested before ErrSeasonNotFound because
// it matches both.
func classify(ctx context.Context, err error) (int, string) {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeTimeout
	case errors.Is(err, compare.ErrSeasonMismatch):
		return http.StatusNotFound, codeSeasonMismatch
	case errors.Is(err, compare.ErrSeasonNotFound):
		return http.StatusNotFound, codeSeasonNotFound
	case errors.Is(err, compare.ErrPlayerNotFound):
		return http.StatusNotFound, codePlayerNotFound
	case errors.Is(err, compare.ErrInvalidMode):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeTimeout
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("encoding response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, logger *zap.Logger, status int, code, message string) {
	respondJSON(w, logger, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Message: message,
	})
}

// respondDomainError classifies err and writes it. Internal errors are logged
// and their detail withheld from the client.
func respondDomainError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, code := classify(r.Context(), err)
	message := err.Error()
	switch status {
	case http.StatusGatewayTimeout:
		message = "request deadline exceeded"
	case http.StatusInternalServerError:
		logger.Error("request failed", zap.Error(err))
		message = "internal error"
	}
	respondError(w, logger, status, code, message)
}
