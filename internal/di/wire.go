// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"

	"github.com/aristath/basket/internal/config"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations:
//  1. Open databases and apply schemas
//  2. Create repositories
//  3. Create clients and services
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	InitializeRepositories(container, log)
	InitializeServices(container, cfg, log)

	log.Info().Msg("Dependency injection wiring completed")

	return container, nil
}

// Close releases everything the container owns. The workspace goes first so
// its settle timer cannot fire against closed databases.
func (c *Container) Close() {
	if c.Workspace != nil {
		c.Workspace.Close()
	}
	if c.CacheDB != nil {
		_ = c.CacheDB.Close()
	}
	if c.WorkspaceDB != nil {
		_ = c.WorkspaceDB.Close()
	}
}
