package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"ratecompass/internal/adapters/observability"
	"ratecompass/internal/adapters/ratecompass"
	"ratecompass/internal/app"
	"ratecompass/internal/shared"
	mysqlrepo "ratecompass/internal/storage/mysql"
)

// resubmit re-posts orders whose submission to RateCompass failed earlier.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("workers", cfg.ResubmitWorkers).
		Int("limit", cfg.ResubmitLimit).
		Msg("resubmit starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateCompassRPS), cfg.RateCompassRPS)
	orders := app.NewOrderService(repo, repo, ratecompass.Factory(log.Logger, limiter, cfg.ClientTimeout))

	rep, err := orders.Resubmit(ctx, cfg.ResubmitLimit, cfg.ResubmitWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("resubmit aborted")
	}
	log.Info().
		Int("attempted", rep.Attempted).
		Int("sent", rep.Sent).
		Int("failed", rep.Failed).
		Msg("resubmit completed")
}
