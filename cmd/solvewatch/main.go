package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/solvewatch/api"
	"github.com/use-agent/solvewatch/cache"
	"github.com/use-agent/solvewatch/config"
	"github.com/use-agent/solvewatch/fetch"
	"github.com/use-agent/solvewatch/report"
	"github.com/use-agent/solvewatch/watch"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("solvewatch starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxWatches", cfg.Browser.MaxWatches,
	)

	// ── 3. Initialise event sinks ───────────────────────────────────
	sinks := []report.Sink{report.LogSink{}}
	if cfg.Webhook.URL != "" {
		sinks = append(sinks, report.NewWebhookSink(cfg.Webhook.URL, cfg.Webhook.Secret))
		slog.Info("webhook sink enabled", "url", cfg.Webhook.URL)
	}
	router := report.NewRouter(sinks...)

	// ── 4. Initialise watcher (launches browser) ────────────────────
	w, err := watch.NewWatcher(cfg.Browser, cfg.Fetch, cfg.Observer, router)
	if err != nil {
		slog.Error("failed to initialise watcher", "error", err)
		os.Exit(1)
	}
	defer w.Close()

	// ── 5. Initialise fetch dispatcher ──────────────────────────────
	// Rod callback: wraps the watcher's one-shot browser fetch. This
	// closure avoids a circular import (fetch/ never imports watch/).
	rodFetch := func(ctx context.Context, req *fetch.Request) (*fetch.Result, error) {
		return w.FetchPage(ctx, req)
	}

	engines := []fetch.Engine{
		fetch.NewHTTPEngine(),
		fetch.NewRodEngine(rodFetch),
	}
	memory := fetch.NewDomainMemory(cfg.Fetch.MemoryTTL)
	dispatcher := fetch.NewDispatcher(engines, cfg.Fetch.EscalationDelays, memory)
	slog.Info("fetch dispatcher ready",
		"engines", len(engines),
		"delays", cfg.Fetch.EscalationDelays,
	)

	// ── 6. Initialise cache ─────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 7. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	ginRouter := api.NewRouter(w, dispatcher, cfg, cc, startTime)

	// ── 8. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: ginRouter,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// w.Close() runs via defer: stops watches, drains the tab pool,
	// and kills Chrome.
	slog.Info("solvewatch stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
