// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/aristath/basket/internal/config"
	"github.com/aristath/basket/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// workspace.db - user intent (groups, manual tickers, settings)
	workspaceDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/workspace.db",
		Profile: database.ProfileStandard,
		Name:    "workspace",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize workspace database: %w", err)
	}
	container.WorkspaceDB = workspaceDB

	// cache.db - reproducible state (positions, account, view snapshots)
	cacheDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/cache.db",
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		workspaceDB.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	// Apply schemas (single source of truth)
	for _, db := range []*database.DB{workspaceDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			workspaceDB.Close()
			cacheDB.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Msg("Databases initialized and schemas applied")

	return container, nil
}
