// Package di provides dependency injection type definitions.
//
// The Container holds every long-lived instance: databases, repositories,
// the broker export client, the reorder planner, the event bus, and the
// workspace service. It is created by Wire() and handed to the server.
package di

import (
	"github.com/aristath/basket/internal/clients/moomoo"
	"github.com/aristath/basket/internal/database"
	"github.com/aristath/basket/internal/events"
	"github.com/aristath/basket/internal/modules/groups"
	"github.com/aristath/basket/internal/modules/positions"
	"github.com/aristath/basket/internal/modules/reorder"
	"github.com/aristath/basket/internal/modules/settings"
	"github.com/aristath/basket/internal/modules/snapshots"
	"github.com/aristath/basket/internal/services"
)

// Container holds all dependencies for the application.
type Container struct {
	// Databases. workspace.db holds user intent (groups, manual tickers,
	// settings); cache.db holds reproducible state (positions, account,
	// snapshots) and can be deleted without losing anything the user made.
	WorkspaceDB *database.DB
	CacheDB     *database.DB

	// Core infrastructure
	EventBus *events.Bus

	// Repositories
	GroupsRepo    *groups.Repository
	PositionsRepo *positions.Repository
	SnapshotsRepo *snapshots.Repository
	SettingsRepo  *settings.Repository

	// Clients
	MoomooClient *moomoo.Client

	// Services
	Planner   *reorder.Planner
	Workspace *services.Workspace
}
