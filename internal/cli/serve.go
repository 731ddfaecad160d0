package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/arbor/internal/adapters/http"
	"github.com/aretw0/arbor/internal/bot"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/events"
	"github.com/aretw0/arbor/internal/flows"
	"github.com/aretw0/arbor/internal/locale"
	"github.com/aretw0/arbor/internal/metrics"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/internal/storage"
	"github.com/aretw0/arbor/internal/telegram"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/session"
)

const (
	shutdownTimeout = 5 * time.Second
	pollTimeout     = 30 // seconds
	userCacheTTL    = 5 * time.Minute
	webhookBuffer   = 64
)

// ServeOptions configures RunServe.
type ServeOptions struct {
	Config  *config.Config
	Logger  *slog.Logger
	Version string
}

// RunServe runs the Telegram bot and its HTTP endpoints until ctx is done.
func RunServe(ctx context.Context, opts ServeOptions) error {
	cfg, logger := opts.Config, opts.Logger

	db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		return err
	}
	defer storage.Close(db)

	sessions, pingSessions, closeSessions, err := buildSessions(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	catalog, err := file.LoadDir(cfg.Dialogs.Dir)
	if err != nil {
		return err
	}
	cat, err := locale.Load(cfg.Locale.File, cfg.Locale.Lang)
	if err != nil {
		return err
	}

	publisher, closePublisher, err := buildPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	m := metrics.New()
	reg := registry.NewRegistry()
	engine := runtime.NewEngine(catalog, reg,
		runtime.WithLogger(logger),
		runtime.WithLifecycleHooks(chainHooks(m.Hooks(), debugHooks(logger))),
	)

	client, err := telegram.Dial(cfg.Telegram.Token, logger)
	if err != nil {
		return err
	}
	messenger := telegram.NewMessenger(client.Sender(), sessions.Store(), cat, telegram.WithMessengerLogger(logger))

	users := storage.NewCachedUsers(storage.NewUserRepository(db), userCacheTTL)
	tickets := storage.NewTicketRepository(db)
	flows.Register(reg, flows.Deps{
		Sessions:  sessions,
		Users:     users,
		Tickets:   tickets,
		Polls:     storage.NewPollRepository(db),
		Feedback:  storage.NewFeedbackRepository(db),
		Publisher: publisher,
		Messenger: messenger,
		Locale:    cat,
		Logger:    logger,
	})

	dispatcher := bot.NewDispatcher(engine, sessions, users, tickets, messenger,
		bot.WithLogger(logger),
		bot.WithObserver(m),
		bot.WithLocale(cat),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Webhook delivery pushes into a buffered channel; long polling owns its own.
	var updates <-chan telegram.Event
	var submit func(context.Context, telegram.Event) error
	if cfg.Telegram.WebhookURL != "" {
		ch := make(chan telegram.Event, webhookBuffer)
		updates = ch
		submit = func(reqCtx context.Context, ev telegram.Event) error {
			select {
			case ch <- ev:
				return nil
			case <-reqCtx.Done():
				return reqCtx.Err()
			case <-ctx.Done():
				return errors.New("shutting down")
			}
		}
		if err := client.SetWebhook(cfg.Telegram.WebhookURL); err != nil {
			return err
		}
		logger.Info("Receiving updates by webhook", "url", cfg.Telegram.WebhookURL)
	} else {
		if err := client.SetWebhook(""); err != nil {
			logger.Warn("Failed to remove webhook", "err", err)
		}
		updates = client.Poll(ctx, pollTimeout)
		logger.Info("Receiving updates by long polling")
	}

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httpAdapter.NewHandler(httpAdapter.Options{
			Submit:  submit,
			Metrics: m.Handler(),
			Health: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				if err := sqlDB.PingContext(ctx); err != nil {
					return fmt.Errorf("database: %w", err)
				}
				return pingSessions(ctx)
			},
			Secret:  cfg.Telegram.WebhookSecret,
			Version: opts.Version,
			Logger:  logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		dispatcher.Run(ctx, updates, cfg.Telegram.Workers)
	}()

	var runErr error
	select {
	case runErr = <-serverErrors:
		logger.Error("HTTP server failed", "err", runErr)
	case <-ctx.Done():
		logger.Info("Shutting down")
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
		_ = srv.Close()
	}
	<-done
	return runErr
}

// buildSessions picks Redis when an address is configured, memory otherwise,
// and encrypts values when a session key is set.
func buildSessions(cfg *config.Config, logger *slog.Logger) (*session.Manager, func(context.Context) error, func(), error) {
	var (
		store   ports.SessionStore
		opts    = []session.Option{session.WithLogger(logger)}
		ping    = func(context.Context) error { return nil }
		closeFn = func() {}
	)

	if cfg.Redis.Addr == "" {
		logger.Info("Sessions kept in memory")
		store = memory.NewStore()
	} else {
		rs := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redisAdapter.WithTTL(cfg.Session.TTL))
		opts = append(opts, session.WithLocker(redisAdapter.NewLocker(rs.Client(), "arbor:")))
		logger.Info("Sessions kept in redis", "addr", cfg.Redis.Addr)

		store = rs
		ping = func(ctx context.Context) error {
			if err := rs.Client().Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		}
		closeFn = func() {
			if err := rs.Close(); err != nil {
				logger.Warn("Failed to close redis", "err", err)
			}
		}
	}

	if cfg.Session.Key != "" {
		mw, err := encryption(cfg.Session)
		if err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		store = mw(store)
		logger.Info("Session values are encrypted", "fallback_keys", len(cfg.Session.OldKeys))
	}
	return session.NewManager(store, opts...), ping, closeFn, nil
}

func encryption(cfg config.SessionConfig) (middleware.Middleware, error) {
	decode := func(name, raw string) ([]byte, error) {
		k, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s is not valid base64: %w", name, err)
		}
		return k, nil
	}
	active, err := decode("ARBOR_SESSION_KEY", cfg.Key)
	if err != nil {
		return nil, err
	}
	ec := middleware.EncryptionConfig{ActiveKey: active}
	for _, raw := range cfg.OldKeys {
		k, err := decode("ARBOR_SESSION_OLD_KEYS", raw)
		if err != nil {
			return nil, err
		}
		ec.FallbackKeys = append(ec.FallbackKeys, k)
	}
	return middleware.NewEncryptionMiddleware(ec)
}

func buildPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, func(), error) {
	if cfg.NATS.URL == "" {
		return events.Nop{}, func() {}, nil
	}
	p, err := events.Connect(cfg.NATS.URL, logger)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}
