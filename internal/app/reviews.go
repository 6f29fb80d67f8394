package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ratecompass/internal/domain"
)

type ReviewService struct {
	store     domain.ConfigStore
	cache     domain.Cache
	newClient domain.ClientFactory
	cacheTTL  time.Duration
}

func NewReviewService(store domain.ConfigStore, c domain.Cache, f domain.ClientFactory, ttl time.Duration) *ReviewService {
	return &ReviewService{store: store, cache: c, newClient: f, cacheTTL: ttl}
}

// ProductReviews returns the RateCompass reviews of one product. Lookups
// that came back as an inline {"error": ...} are passed through uncached.
func (s *ReviewService) ProductReviews(ctx context.Context, productID string) (map[string]any, error) {
	cl, st, err := configuredClient(ctx, s.store, s.newClient)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reviews:%s:%s", st.CompassID, productID)
	var out map[string]any
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, key, &out)
		switch {
		case ok && err == nil:
			return out, nil
		case ok:
			// unreadable entry: drop it and refetch
			log.Warn().Err(err).Str("key", key).Msg("evicting unreadable review cache entry")
			if err := s.cache.Del(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("review cache evict failed")
			}
			out = nil
		}
	}

	out, err = cl.GetReviews(ctx, st.CompassID, productID)
	if err != nil {
		return nil, err
	}
	if _, failed := out["error"]; !failed && s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}
