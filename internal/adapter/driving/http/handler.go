// Package httphandler is the HTTP driving adapter: it lets an external
// scheduler trigger a notification run and lets probes check liveness.
package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ericfisherdev/prnotifier/internal/application"
	"github.com/ericfisherdev/prnotifier/internal/domain/model"
)

// Runner executes one notification run. *application.NotifyService satisfies it.
type Runner interface {
	Run(ctx context.Context) (model.RunSummary, error)
}

// Handler serves the trigger and health endpoints.
type Handler struct {
	runner Runner
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(runner Runner, logger *slog.Logger) *Handler {
	return &Handler{runner: runner, logger: logger}
}

// NewRouter creates an http.Handler with all routes registered and wrapped
// with request-id, logging and recovery middleware.
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware(logger))
	// Recovery innermost so panics are caught before logging.
	r.Use(recoveryMiddleware(logger))

	r.Get("/api/v1/health", h.Health)
	r.Post("/api/v1/run", h.Run)

	return r
}

// Health reports liveness. It does not touch GitHub or the database.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Run executes one notification run synchronously and returns its summary.
// A run already in progress yields 409 Conflict; any run failure yields 500.
// The trigger request body is ignored.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runner.Run(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrRunInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("triggered run failed",
			"request_id", middleware.GetReqID(r.Context()),
			"run_id", summary.RunID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "notification run failed")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
