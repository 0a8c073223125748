// internal/api/response.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github-activity-connector/internal/apperrors"
)

// errInvalidPageParam rejects non-integer ?page values.
var errInvalidPageParam = errors.New("invalid 'page' parameter, must be an integer")

// badRequestError marks a client input problem at the HTTP boundary. It is
// local to this package; the core error taxonomy lives in apperrors.
type badRequestError struct {
	message string
}

func (e *badRequestError) Error() string {
	return e.message
}

// errorResponse is the uniform error body for every rejection. The
// RetryAfterSeconds field appears only on rate-limit errors.
type errorResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message"`
	Status            int    `json:"status"`
	RetryAfterSeconds int64  `json:"retryAfterSeconds,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// Headers are already written, nothing left to do but log.
			slog.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// respondWithError maps a core error to its HTTP rejection. No internal
// detail ever reaches the caller; unexpected errors get a generic body and
// full local logging.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		authErr      *apperrors.AuthError
		rateLimitErr *apperrors.RateLimitError
		notFoundErr  *apperrors.NotFoundError
		badReqErr    *badRequestError
	)

	switch {
	case errors.As(err, &authErr):
		logger.Warn("Authentication failed", "reason", authErr.Message)
		respondWithJSON(w, http.StatusUnauthorized, errorResponse{
			Error:   "Authentication Failed",
			Message: authErr.Message,
			Status:  http.StatusUnauthorized,
		})

	case errors.As(err, &rateLimitErr):
		logger.Warn("Rate limit exceeded", "retry_after_seconds", rateLimitErr.RetryAfterSeconds)
		w.Header().Set("Retry-After", strconv.FormatInt(rateLimitErr.RetryAfterSeconds, 10))
		respondWithJSON(w, http.StatusTooManyRequests, errorResponse{
			Error:             "Rate Limit Exceeded",
			Message:           rateLimitErr.Error(),
			Status:            http.StatusTooManyRequests,
			RetryAfterSeconds: rateLimitErr.RetryAfterSeconds,
		})

	case errors.As(err, &notFoundErr):
		logger.Warn("Data not found", "resource", notFoundErr.Resource)
		respondWithJSON(w, http.StatusNotFound, errorResponse{
			Error:   "Data Not Found",
			Message: notFoundErr.Error(),
			Status:  http.StatusNotFound,
		})

	case errors.As(err, &badReqErr):
		respondWithJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Bad Request",
			Message: badReqErr.Error(),
			Status:  http.StatusBadRequest,
		})

	default:
		logger.Error("Unexpected error", "error", err)
		respondWithJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal Server Error",
			Message: "An unexpected error occurred",
			Status:  http.StatusInternalServerError,
		})
	}
}
