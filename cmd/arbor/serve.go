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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/adapters/httpx"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/component"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the demo HTTP server",
	Long: `Starts an HTTP server wired through the scope middleware: session
cookies, per-path view scopes, flash rotation, a demo page with command
components, and Prometheus metrics on /metrics.

Scopes live in memory unless ARBOR_REDIS_ADDR points at a Redis server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg config.Serve
		if err := config.ParseEnv(&cfg); err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
			cfg.Addr = addr
		}

		logger := logging.New(parseLevel(cfg.LogLevel))

		registry := prometheus.NewRegistry()
		metrics := observability.NewMetrics(registry)

		app := arbor.New(
			arbor.WithLogger(logger),
			arbor.WithObserver(metrics),
		)

		provider, cleanup, err := newSessionProvider(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		sessions := session.NewManager(provider,
			session.WithCookieName(cfg.SessionCookie),
			session.WithLogger(logger),
		)
		scopes := httpx.NewScopes(app, sessions)

		r := chi.NewRouter()
		r.Get("/healthz", httpx.Healthz)
		r.Get("/info", httpx.InfoHandler)
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		r.Group(func(r chi.Router) {
			r.Use(scopes.Handler)
			r.Handle("/", demoPage())
		})

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: r,
		}

		tui.PrintBanner(arbor.Version)

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("could not stop server: %w", err)
				}
			}
			logger.Info("server stopped")
		}
		return nil
	},
}

// newSessionProvider picks the scope backend from configuration.
func newSessionProvider(cfg config.Serve) (ports.ScopeProvider, func(), error) {
	if cfg.RedisAddr == "" {
		return memory.NewProvider(), func() {}, nil
	}

	client := backend.NewClient(&backend.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	provider := redis.NewProvider(client, redis.WithTTL(30*time.Minute))
	return provider, func() { client.Close() }, nil
}

// greeter is the demo bean behind the landing page.
type greeter struct{}

func (greeter) Hello() string { return "greeted" }

// demoPage wires a command button to an application-scoped bean.
func demoPage() *httpx.Page {
	return &httpx.Page{
		Build: func(c *arbor.Context) ([]component.Component, error) {
			if err := c.App().ApplicationScope().Set(context.Background(), "greeter", greeter{}); err != nil {
				return nil, err
			}

			btn, err := arbor.NewCommandButton(c, "greeter.hello", "Say hello")
			if err != nil {
				return nil, err
			}
			btn.ID = "hello"
			return []component.Component{btn}, nil
		},
		Navigate: func(outcome string) string {
			return "" // re-render in place
		},
	}
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
