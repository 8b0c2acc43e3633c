package storage

import (
	"context"
	"fmt"

	"sitewatch/internal/config"
)

// Backend bundles the stores selected by configuration.
type Backend struct {
	Registry Registry
	History  HistoryTable
	// Redis is set for the redis backend and doubles as the snapshot cache.
	Redis *Storage

	ping  func(context.Context) error
	close func() error
}

// Open connects the configured backend and verifies it is reachable. A
// REGISTRY_CSV path overrides the backend's own site list.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{}

	switch cfg.Backend {
	case config.BackendRedis:
		s := NewStorage(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
		b.Registry, b.History, b.Redis = s, s, s
		b.ping, b.close = s.Ping, s.Close
	case config.BackendSQLite:
		s, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.Registry, b.History = s, s
		b.ping, b.close = s.Ping, s.Close
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	if cfg.RegistryCSV != "" {
		b.Registry = NewCSVRegistry(cfg.RegistryCSV)
	}

	if err := b.Ping(ctx); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

func (b *Backend) Close() error {
	return b.close()
}
