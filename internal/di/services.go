// Package di provides dependency injection for services.
package di

import (
	"github.com/aristath/basket/internal/clients/moomoo"
	"github.com/aristath/basket/internal/config"
	"github.com/aristath/basket/internal/events"
	"github.com/aristath/basket/internal/modules/reorder"
	"github.com/aristath/basket/internal/services"
	"github.com/rs/zerolog"
)

// InitializeServices creates the event bus, clients, and the workspace
// coordinator. Settings stored in the workspace database override the
// environment-derived config before the planner is built.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) {
	cfg.ApplySettings(container.SettingsRepo)

	container.EventBus = events.NewBus(log)
	container.MoomooClient = moomoo.NewClient(log)
	container.Planner = reorder.NewPlanner(cfg.SettleDelay, container.EventBus, log)

	container.Workspace = services.NewWorkspace(
		container.GroupsRepo,
		container.PositionsRepo,
		container.SnapshotsRepo,
		container.SettingsRepo,
		container.MoomooClient,
		container.Planner,
		container.EventBus,
		cfg.ExportDir,
		log,
	)

	log.Info().Msg("Services initialized")
}
