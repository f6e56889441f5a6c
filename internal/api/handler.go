package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/datachat/datachat/internal/chat"
	"github.com/datachat/datachat/internal/config"
	"github.com/datachat/datachat/internal/observability"
)

type ReadinessCheck func(ctx context.Context) error

type ChatService interface {
	Answer(ctx context.Context, req chat.Request) (string, error)
}

type Dependencies struct {
	Logger            *slog.Logger
	Chat              ChatService
	HealthCheck       ReadinessCheck
	Readiness         ReadinessCheck
	DependencyTimeout time.Duration
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, r *http.Request) {
		handleHealth(cfg, deps, w, r)
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), dependencyTimeout(deps))
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready", "details": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/chat", func(w http.ResponseWriter, r *http.Request) {
		handleChat(deps, w, r)
	})

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

// handleHealth probes database connectivity. Unlike the chat endpoint it
// reports the diagnostic detail, since nothing tenant-visible leaks here.
func handleHealth(cfg config.Config, deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.HealthCheck == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), dependencyTimeout(deps))
	defer cancel()
	if err := deps.HealthCheck(ctx); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":              "error",
			"service":             cfg.Service.Name,
			"database_connection": "failed",
			"details":             err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"service":             cfg.Service.Name,
		"database_connection": "successful",
	})
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func dependencyTimeout(deps Dependencies) time.Duration {
	if deps.DependencyTimeout > 0 {
		return deps.DependencyTimeout
	}
	return 2 * time.Second
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
