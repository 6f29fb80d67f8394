package app

import (
	"context"
	"errors"
	"strconv"

	"ratecompass/internal/domain"
)

var (
	ErrNotConfigured = errors.New("ratecompass: host, apikey or compass id not configured")
	ErrDisabled      = errors.New("ratecompass: module disabled")
)

// loadSettings reads every module key; unset keys read as zero values.
func loadSettings(ctx context.Context, store domain.ConfigStore) (domain.Settings, error) {
	get := func(name string) (string, error) {
		v, err := store.Get(ctx, name)
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return v, err
	}

	var s domain.Settings
	var err error
	if s.Host, err = get(domain.KeyHost); err != nil {
		return s, err
	}
	if s.APIKey, err = get(domain.KeyAPIKey); err != nil {
		return s, err
	}
	if s.CompassID, err = get(domain.KeyCompassID); err != nil {
		return s, err
	}
	debug, err := get(domain.KeyDebugMode)
	if err != nil {
		return s, err
	}
	enabled, err := get(domain.KeyEnabled)
	if err != nil {
		return s, err
	}
	s.Debug = parseFlag(debug)
	s.Enabled = parseFlag(enabled)
	return s, nil
}

func parseFlag(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// configuredClient builds a client for hooks that need a complete setup.
func configuredClient(ctx context.Context, store domain.ConfigStore, newClient domain.ClientFactory) (domain.RateCompassClient, domain.Settings, error) {
	s, err := loadSettings(ctx, store)
	if err != nil {
		return nil, s, err
	}
	if !s.Enabled {
		return nil, s, ErrDisabled
	}
	if !s.Configured() {
		return nil, s, ErrNotConfigured
	}
	cl, err := newClient(s.Host, s.APIKey, s.Debug)
	if err != nil {
		return nil, s, err
	}
	return cl, s, nil
}
