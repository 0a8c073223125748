// internal/api/handler.go
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github-activity-connector/internal/apperrors"
	"github-activity-connector/internal/model"
)

// PageSize is the fixed number of items per page on both endpoints. It is a
// service policy, not a client parameter.
const PageSize = 20

// CredentialVerifier decides whether a presented PAT authenticates a user.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, token string) bool
}

// RateLimiter charges one request against a user's quota. A nil return
// allows the request; an *apperrors.RateLimitError denies it.
type RateLimiter interface {
	Check(ctx context.Context, username string) error
}

// ActivityReader assembles pages of pre-ingested activity data.
type ActivityReader interface {
	RepositoriesPage(ctx context.Context, username string, page, size int) model.Page[model.Repository]
	CommitsPage(ctx context.Context, username, repo string, page, size int) model.Page[model.Commit]
}

// Handler is the container for API dependencies.
type Handler struct {
	verifier CredentialVerifier
	limiter  RateLimiter
	reader   ActivityReader
	logger   *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(verifier CredentialVerifier, limiter RateLimiter, reader ActivityReader, logger *slog.Logger) http.Handler {
	h := &Handler{
		verifier: verifier,
		limiter:  limiter,
		reader:   reader,
		logger:   logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/activity/{username}", h.getUserActivity)
		r.Get("/commits/{username}/{repo}", h.getRepositoryCommits)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getUserActivity returns one page of a user's repositories, each with its
// recent commits attached.
// GET /api/v1/activity/{username}?page=N
func (h *Handler) getUserActivity(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	page, ok := h.authenticatedPage(w, r, username)
	if !ok {
		return
	}

	h.logger.Info("Serving user activity", "username", username, "page", page)
	respondWithJSON(w, http.StatusOK, h.reader.RepositoriesPage(r.Context(), username, page, PageSize))
}

// getRepositoryCommits returns one page of the commit history for a single
// repository.
// GET /api/v1/commits/{username}/{repo}?page=N
func (h *Handler) getRepositoryCommits(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	repo := chi.URLParam(r, "repo")

	page, ok := h.authenticatedPage(w, r, username)
	if !ok {
		return
	}

	h.logger.Info("Serving repository commits", "username", username, "repo", repo, "page", page)
	respondWithJSON(w, http.StatusOK, h.reader.CommitsPage(r.Context(), username, repo, page, PageSize))
}

// authenticatedPage runs the shared request gate: page parameter parsing,
// PAT verification, then rate limiting, in that order. It writes the
// rejection response itself and reports ok=false when the caller must stop.
func (h *Handler) authenticatedPage(w http.ResponseWriter, r *http.Request, username string) (int, bool) {
	page, err := parsePageParam(r)
	if err != nil {
		respondWithError(w, h.logger, &badRequestError{message: err.Error()})
		return 0, false
	}

	pat, ok := extractPAT(r.Header.Get("Authorization"))
	if !ok {
		respondWithError(w, h.logger, &apperrors.AuthError{Message: "Missing or invalid Authorization header"})
		return 0, false
	}

	// One rejection message for unknown users and wrong tokens alike, so
	// responses cannot be used to enumerate usernames.
	if !h.verifier.Verify(r.Context(), username, pat) {
		respondWithError(w, h.logger, &apperrors.AuthError{Message: "Invalid Personal Access Token"})
		return 0, false
	}

	if err := h.limiter.Check(r.Context(), username); err != nil {
		respondWithError(w, h.logger, err)
		return 0, false
	}

	return page, true
}

// extractPAT pulls the token out of an Authorization header value.
// Accepted schemes: "Bearer <token>" and "token <token>".
func extractPAT(header string) (string, bool) {
	switch {
	case strings.HasPrefix(header, "Bearer "):
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), true
	case strings.HasPrefix(header, "token "):
		return strings.TrimSpace(strings.TrimPrefix(header, "token ")), true
	default:
		return "", false
	}
}

// parsePageParam reads the optional ?page=N query parameter, defaulting to 0.
func parsePageParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errInvalidPageParam
	}
	return page, nil
}
