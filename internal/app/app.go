package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"zezin-crm/client/internal/api"
	"zezin-crm/client/internal/assistant"
	"zezin-crm/client/internal/config"
	"zezin-crm/client/internal/database"
	"zezin-crm/client/internal/repository"
	"zezin-crm/client/internal/service"
)

// App holds the wired components of the session client.
type App struct {
	Config  *config.Config
	Store   repository.SlotStore
	Session *service.SessionService
	Server  *http.Server

	closers []func() error
}

// NewApp builds the durable store, the assistant clients, the session
// service and the HTTP server described by cfg. The session is not started.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	store, err := app.openStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	directory := assistant.NewDirectory(cfg.AssistantURL, &http.Client{Timeout: cfg.RequestTimeout})
	app.Session = service.NewSessionService(newStreamSource(cfg), directory, store, service.Options{
		RevealTick:       cfg.RevealTick,
		RevealStep:       cfg.RevealStep,
		FollowUpDelay:    cfg.FollowUpDelay,
		FollowUpMinPairs: cfg.FollowUpMinPairs,
		ThreadListLimit:  cfg.ThreadListLimit,
		TitleMaxWidth:    cfg.TitleMaxWidth,
		RequestTimeout:   cfg.RequestTimeout,
	})

	router := api.NewRouter(api.NewSessionHandler(app.Session))
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}
	return app, nil
}

func (a *App) openStore(ctx context.Context) (repository.SlotStore, error) {
	switch a.Config.StoreBackend {
	case "memory":
		slog.Info("Using in-memory session store; the active thread is forgotten on exit.")
		return repository.NewMemorySlotStore(), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", a.Config.RedisAddr, err)
		}
		slog.Info("Successfully connected to Redis.", "addr", a.Config.RedisAddr)
		return repository.NewRedisSlotStore(rdb, a.Config.SessionKey, a.Config.SessionTTL), nil
	default:
		db, err := database.InitDB(a.Config.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		slog.Info("Successfully connected to SQLite database.", "path", a.Config.DatabasePath)
		return repository.NewSQLiteSlotStore(db, a.Config.SessionKey), nil
	}
}

// newStreamSource picks the transport. Streams are bounded by the session
// context, not a client timeout.
func newStreamSource(cfg *config.Config) assistant.StreamSource {
	switch cfg.StreamTransport {
	case "websocket":
		return assistant.NewWebSocketSource(cfg.AssistantURL)
	case "ndjson":
		return assistant.NewNDJSONSource(cfg.AssistantURL, &http.Client{})
	default:
		return assistant.NewSSESource(cfg.AssistantURL, &http.Client{})
	}
}

// Close stops the session and releases the durable store.
func (a *App) Close() {
	if a.Session != nil {
		a.Session.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Error("Failed to close resource", "error", err)
		}
	}
	a.closers = nil
}

// Run serves the HTTP surface until SIGINT or SIGTERM.
func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(os.Stdout, cfg.LogLevel)

	logConfigSource()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := waitForAssistant(ctx, cfg.AssistantURL); err != nil {
		slog.Error("Assistant backend never became ready", "error", err)
		return 1
	}

	app, err := NewApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to build application", "error", err)
		return 1
	}
	defer app.Close()

	if err := app.Session.Start(ctx); err != nil {
		// The view already reflects the failure; the user can retry.
		slog.Warn("Session started with errors", "error", err)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.AppPort)
		errCh <- app.Server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
			return 1
		}
	}
	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(w io.Writer, logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// waitForAssistant polls the backend health endpoint until it answers 200.
func waitForAssistant(ctx context.Context, assistantURL string) error {
	slog.Info("Waiting for the assistant backend to be ready...")
	client := &http.Client{Timeout: 2 * time.Second}
	healthURL := strings.TrimRight(assistantURL, "/") + "/healthz"
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			status := resp.StatusCode
			if bErr := resp.Body.Close(); bErr != nil {
				slog.Warn("Failed to close response body in assistant health check", "error", bErr)
			}
			if status == http.StatusOK {
				slog.Info("Assistant backend is ready.")
				return nil
			}
		}
		slog.Debug("Assistant backend not ready yet, retrying in 3 seconds...", "url", healthURL, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
}
