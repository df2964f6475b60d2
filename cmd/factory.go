// File: cmd/factory.go
package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/config"
	"github.com/enricoisidori/threadscape/internal/store"
)

// Components holds the services a command needs beyond the engine itself.
// Today that is only the optional run archive.
type Components struct {
	Store  schemas.RunStore
	DBPool *pgxpool.Pool
}

// Shutdown releases everything the factory opened.
func (c *Components) Shutdown() {
	if c.DBPool != nil {
		c.DBPool.Close()
	}
}

// newComponents wires the optional archive store. An empty postgres.url
// leaves Store nil and the commands work with filesystem artifacts only.
func newComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	components := &Components{}

	if cfg.Postgres.URL == "" {
		logger.Debug("Run archive disabled (postgres.url not configured)")
		return components, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	components.DBPool = pool

	archive, err := store.New(ctx, pool, logger)
	if err != nil {
		components.Shutdown()
		return nil, fmt.Errorf("failed to initialize run archive: %w", err)
	}
	if err := archive.EnsureSchema(ctx); err != nil {
		components.Shutdown()
		return nil, fmt.Errorf("failed to prepare archive schema: %w", err)
	}
	components.Store = archive

	logger.Debug("Run archive initialized")
	return components, nil
}
