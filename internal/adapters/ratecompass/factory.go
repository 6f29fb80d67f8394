package ratecompass

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"ratecompass/internal/adapters/observability"
	"ratecompass/internal/domain"
)

// Factory returns a domain.ClientFactory whose clients share one limiter and
// log through base, at debug level when the module's debug mode is on.
func Factory(base zerolog.Logger, rl *rate.Limiter, timeout time.Duration) domain.ClientFactory {
	return func(host, apiKey string, debug bool) (domain.RateCompassClient, error) {
		cl, err := New(host, apiKey,
			WithLogger(observability.ClientLogger(base, debug)),
			WithLimiter(rl),
			WithTimeout(timeout),
		)
		if err != nil {
			return nil, err
		}
		return cl, nil
	}
}
