package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/xhit/go-str2duration/v2"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	// Seed credentials; the stored module settings take precedence once saved.
	RateCompassHost string
	RateCompassKey  string
	RateCompassRPS  int
	ClientTimeout   time.Duration

	CacheTTL        time.Duration
	ResubmitWorkers int
	ResubmitLimit   int
}

func Load() Config {
	_ = godotenv.Load(".env") // init env from .env (if found)

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Msg("not an integer, using default")
		}
		return def
	}
	dur := func(k string, def time.Duration) time.Duration {
		if v := os.Getenv(k); v != "" {
			if d, err := str2duration.ParseDuration(v); err == nil {
				return d
			}
			log.Warn().Str("key", k).Msg("not a duration, using default")
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		MetricsAddr:     env("METRICS_ADDR", ""),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/ratecompass?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:       env("REDIS_ADDR", "localhost:6379"),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		RateCompassHost: env("RATECOMPASS_HOST", ""),
		RateCompassKey:  env("RATECOMPASS_APIKEY", ""),
		RateCompassRPS:  atoi("RATECOMPASS_RPS", 5),
		ClientTimeout:   dur("RATECOMPASS_TIMEOUT", 20*time.Second),
		CacheTTL:        dur("CACHE_TTL", 15*time.Minute),
		ResubmitWorkers: atoi("RESUBMIT_WORKERS", 4),
		ResubmitLimit:   atoi("RESUBMIT_LIMIT", 500),
	}
	if c.RateCompassKey == "" {
		log.Warn().Msg("RATECOMPASS_APIKEY is empty; waiting for settings to be saved")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
