// Package di provides dependency injection for repositories.
package di

import (
	"github.com/aristath/basket/internal/modules/groups"
	"github.com/aristath/basket/internal/modules/positions"
	"github.com/aristath/basket/internal/modules/settings"
	"github.com/aristath/basket/internal/modules/snapshots"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the data access layer on top of the
// container's databases.
func InitializeRepositories(container *Container, log zerolog.Logger) {
	container.GroupsRepo = groups.NewRepository(container.WorkspaceDB.Conn(), log)
	container.SettingsRepo = settings.NewRepository(container.WorkspaceDB.Conn(), log)
	container.PositionsRepo = positions.NewRepository(container.CacheDB.Conn(), log)
	container.SnapshotsRepo = snapshots.NewRepository(container.CacheDB.Conn(), log)

	log.Info().Msg("Repositories initialized")
}
