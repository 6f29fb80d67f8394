package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"ratecompass/internal/domain"
)

// ModuleService covers the module lifecycle: install, uninstall and the
// settings form.
type ModuleService struct {
	store     domain.ConfigStore
	newClient domain.ClientFactory
}

func NewModuleService(store domain.ConfigStore, f domain.ClientFactory) *ModuleService {
	return &ModuleService{store: store, newClient: f}
}

func (s *ModuleService) Install(ctx context.Context) error {
	defaults := []struct{ k, v string }{
		{domain.KeyDebugMode, formatFlag(false)},
		{domain.KeyHost, ""},
		{domain.KeyAPIKey, ""},
		{domain.KeyEnabled, formatFlag(true)},
	}
	for _, d := range defaults {
		if err := s.store.Set(ctx, d.k, d.v); err != nil {
			return fmt.Errorf("install: set %s: %w", d.k, err)
		}
	}
	log.Info().Msg("ratecompass module installed")
	return nil
}

// Uninstall only disables the hooks. Host, apikey and compass id stay
// stored so a reinstall picks them up again.
func (s *ModuleService) Uninstall(ctx context.Context) error {
	if err := s.store.Set(ctx, domain.KeyEnabled, formatFlag(false)); err != nil {
		return fmt.Errorf("uninstall: %w", err)
	}
	log.Info().Msg("ratecompass module uninstalled")
	return nil
}

func (s *ModuleService) Settings(ctx context.Context) (domain.Settings, error) {
	return loadSettings(ctx, s.store)
}

// SaveSettings stores the form values, then resolves and stores the compass
// id with the new credentials. The form values stay saved even when the
// lookup fails.
func (s *ModuleService) SaveSettings(ctx context.Context, in domain.Settings) (string, error) {
	values := []struct{ k, v string }{
		{domain.KeyDebugMode, formatFlag(in.Debug)},
		{domain.KeyHost, in.Host},
		{domain.KeyAPIKey, in.APIKey},
	}
	for _, v := range values {
		if err := s.store.Set(ctx, v.k, v.v); err != nil {
			return "", fmt.Errorf("save %s: %w", v.k, err)
		}
	}

	cl, err := s.newClient(in.Host, in.APIKey, in.Debug)
	if err != nil {
		return "", fmt.Errorf("error fetching compass id: %w", err)
	}
	id, err := cl.GetCompassID(ctx)
	if err != nil {
		log.Warn().Err(err).Str("host", in.Host).Msg("compass id lookup failed")
		return "", fmt.Errorf("error fetching compass id: %w", err)
	}
	if err := s.store.Set(ctx, domain.KeyCompassID, id); err != nil {
		return "", fmt.Errorf("save %s: %w", domain.KeyCompassID, err)
	}
	log.Info().Str("compass_id", id).Msg("ratecompass settings saved")
	return id, nil
}
