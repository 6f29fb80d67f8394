package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	server "ratecompass/internal/adapters/http_server"
	"ratecompass/internal/adapters/observability"
	"ratecompass/internal/adapters/ratecompass"
	redisad "ratecompass/internal/adapters/redis"
	"ratecompass/internal/app"
	"ratecompass/internal/domain"
	"ratecompass/internal/shared"
	mysqlrepo "ratecompass/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve(cfg.MetricsAddr)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Msg("redis unavailable; review lookups will not be cached")
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RateCompassRPS), cfg.RateCompassRPS)
	factory := ratecompass.Factory(log.Logger, limiter, cfg.ClientTimeout)

	module := app.NewModuleService(repo, factory)
	bootstrap(module, cfg)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Module:  module,
		Orders:  app.NewOrderService(repo, repo, factory),
		Reviews: app.NewReviewService(repo, cache, factory, cfg.CacheTTL),
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

// bootstrap installs the module and saves the env credentials on a fresh
// database. Stored settings always win over the environment.
func bootstrap(module *app.ModuleService, cfg shared.Config) {
	if cfg.RateCompassHost == "" || cfg.RateCompassKey == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ClientTimeout+5*time.Second)
	defer cancel()

	s, err := module.Settings(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("read settings failed")
	}
	if s.Host != "" {
		return
	}
	if err := module.Install(ctx); err != nil {
		log.Fatal().Err(err).Msg("install failed")
	}
	id, err := module.SaveSettings(ctx, domain.Settings{Host: cfg.RateCompassHost, APIKey: cfg.RateCompassKey})
	if err != nil {
		// keep serving; the settings endpoint can fix credentials later
		if errors.Is(err, ratecompass.ErrAPI) {
			log.Error().Err(err).Msg("RateCompass rejected the configured credentials")
			return
		}
		log.Error().Err(err).Msg("compass id lookup failed")
		return
	}
	log.Info().Str("compass_id", id).Msg("module bootstrapped from environment")
}
