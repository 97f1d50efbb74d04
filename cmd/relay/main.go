package main

import (
	"context"
	"embed"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shravanasati/relay/config"
	"github.com/shravanasati/relay/middleware"
	"github.com/shravanasati/relay/router"
	"github.com/shravanasati/relay/server"
)

//go:embed index.html
var embedded embed.FS

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// middlewares builds the stack every request passes through, outermost
// first.
func middlewares(cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) ([]router.Middleware, error) {
	mws := []router.Middleware{middleware.Recoverer(logger, cfg.Log.Level == "debug")}

	if cfg.Log.Color {
		mws = append(mws, middleware.LoggingColored)
	} else {
		mws = append(mws, middleware.Logger(logger))
	}

	if cfg.Metrics.Enabled {
		m, err := middleware.NewMetrics(reg, cfg.Metrics.Namespace)
		if err != nil {
			return nil, err
		}
		mws = append(mws, m.Handler)
	}

	if len(cfg.Cors.Origins) > 0 {
		mws = append(mws, middleware.CorsHandler(middleware.CorsOptions{
			AllowedOrigins: cfg.Cors.Origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	corf, err := middleware.NewCORF(cfg.Cors.TrustedOrigins...)
	if err != nil {
		return nil, err
	}
	mws = append(mws, corf.Handler)

	if cfg.RateLimit.Enabled() {
		limiter := middleware.NewRateLimiter(middleware.RateLimitOptions{
			RPS:     cfg.RateLimit.RPS,
			Burst:   cfg.RateLimit.Burst,
			IdleTTL: cfg.RateLimit.IdleTTL,
		})
		mws = append(mws, limiter.Handler)
	}

	extra := append([]string{"X-Server: relay"}, cfg.Server.Headers...)
	headers, err := middleware.Headers(extra...)
	if err != nil {
		return nil, err
	}
	mws = append(mws, headers)

	if cfg.Server.RequestTimeout > 0 {
		mws = append(mws, middleware.Timeout(cfg.Server.RequestTimeout))
	}
	return mws, nil
}

func staticFS(cfg config.StaticConfig) middleware.NamedReadSeekerFS {
	if cfg.Dir != "" {
		return middleware.NewDirFS(cfg.Dir)
	}
	return middleware.NewEmbedFS(embedded)
}

// buildService assembles routes and middleware into the service the
// server runs.
func buildService(cfg config.Config, logger *slog.Logger, reg *prometheus.Registry) (router.Handler, error) {
	var accounts []middleware.Account
	if cfg.Admin.Password != "" {
		accounts = append(accounts, middleware.Account{Username: cfg.Admin.Username, Password: cfg.Admin.Password})
	}

	sessions := middleware.SessionOptions{
		Store:      middleware.NewMemoryStore(cfg.Session.IdleTTL),
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
	}
	app, err := newApp(newUserStore(), staticFS(cfg.Static), cfg.Static.Prefix, accounts, sessions)
	if err != nil {
		return nil, err
	}
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, server.FromHTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	mws, err := middlewares(cfg, logger, reg)
	if err != nil {
		return nil, err
	}
	app.Use(mws...)
	return app.Service(), nil
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := buildService(cfg, logger, reg)
	if err != nil {
		return err
	}

	return server.Run(ctx, server.ServerOpts{
		Address:         cfg.Server.Address,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		Logger:          logger,
	}, svc)
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("server gracefully stopped")
}
