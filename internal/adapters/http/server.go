// Package http serves the operational endpoints of the bot and the Telegram
// webhook.
package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/telegram"
)

// SecretHeader carries the secret token Telegram echoes on every webhook call.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Options wires the routes. Nil fields disable the matching route.
type Options struct {
	// Submit hands a decoded webhook update to the bot.
	Submit func(ctx context.Context, ev telegram.Event) error
	// Metrics serves /metrics.
	Metrics http.Handler
	// Health reports whether the backing services are reachable.
	Health func(ctx context.Context) error
	// Secret, when set, must match SecretHeader on webhook calls.
	Secret  string
	Version string
	Logger  *slog.Logger
}

// NewHandler builds the router.
func NewHandler(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(opts.Logger))

	r.Get("/health", health(opts.Health))
	r.Get("/info", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"app": "arbor", "version": opts.Version})
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.Submit != nil {
		r.Post("/webhook", webhook(opts))
	}
	return r
}

func health(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func webhook(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if opts.Secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(opts.Secret)) != 1 {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		ev, ok, err := telegram.DecodeWebhook(r)
		if err != nil {
			opts.Logger.Warn("Webhook: invalid update", "err", err)
			http.Error(w, "invalid update", http.StatusBadRequest)
			return
		}
		if ok {
			if err := opts.Submit(r.Context(), ev); err != nil {
				// Telegram redelivers on non-2xx.
				opts.Logger.Error("Webhook: submit failed", "update_id", ev.UpdateID, "err", err)
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
