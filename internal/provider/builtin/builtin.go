// Package builtin wires the bundled library managers into a registry.
package builtin

import (
	"fmt"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/media"
	"github.com/Digital-Shane/libby/internal/provider"
	"github.com/Digital-Shane/libby/internal/provider/arr"
	"github.com/Digital-Shane/libby/internal/provider/radarr"
	"github.com/Digital-Shane/libby/internal/provider/sonarr"
)

// Register installs Radarr for movies and Sonarr for shows.
func Register(registry *provider.Registry, opts ...arr.Option) error {
	if err := registry.Register(media.Movies, radarr.Factory(opts...)); err != nil {
		return fmt.Errorf("failed to register radarr provider: %w", err)
	}
	if err := registry.Register(media.Shows, sonarr.Factory(opts...)); err != nil {
		return fmt.Errorf("failed to register sonarr provider: %w", err)
	}
	return nil
}

// NewRegistry returns a registry with the bundled providers registered and
// configured from cfg.
func NewRegistry(cfg *config.Config, opts ...arr.Option) (*provider.Registry, error) {
	registry := provider.NewRegistry()
	if err := Register(registry, opts...); err != nil {
		return nil, err
	}
	registry.ConfigureAll(cfg)
	return registry, nil
}
