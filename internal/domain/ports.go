package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// RateCompassClient is the part of the RateCompass API the storefront hooks use.
type RateCompassClient interface {
	GetCompassID(ctx context.Context) (string, error)
	GetReviews(ctx context.Context, compassID, productID string) (map[string]any, error)
	PostOrder(ctx context.Context, compassID string, order map[string]any) (map[string]any, error)
}

// ClientFactory builds a client from the currently stored settings. Hooks
// build a fresh one per event, so changed settings apply immediately.
type ClientFactory func(host, apiKey string, debug bool) (RateCompassClient, error)

// ConfigStore is the storefront's key-value configuration table.
type ConfigStore interface {
	Get(ctx context.Context, name string) (string, error) // ErrNotFound when unset
	Set(ctx context.Context, name, value string) error
}

type SubmissionLog interface {
	RecordSubmission(ctx context.Context, s Submission) error
	ListFailedSubmissions(ctx context.Context, limit int) ([]Submission, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
