package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/basket/internal/clients/moomoo"
	"github.com/aristath/basket/internal/events"
	"github.com/aristath/basket/internal/modules/allocation"
	"github.com/aristath/basket/internal/modules/groups"
	"github.com/aristath/basket/internal/modules/positions"
	"github.com/aristath/basket/internal/modules/reorder"
	"github.com/aristath/basket/internal/modules/settings"
	"github.com/aristath/basket/internal/modules/snapshots"
	"github.com/aristath/basket/internal/services"
	testingpkg "github.com/aristath/basket/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*chi.Mux, *services.Workspace) {
	t.Helper()

	logger := zerolog.New(nil).Level(zerolog.Disabled)

	workspaceDB, cleanupWorkspace := testingpkg.NewTestDB(t, "workspace")
	t.Cleanup(cleanupWorkspace)
	cacheDB, cleanupCache := testingpkg.NewTestDB(t, "cache")
	t.Cleanup(cleanupCache)

	bus := events.NewBus(logger)
	ws := services.NewWorkspace(
		groups.NewRepository(workspaceDB.Conn(), logger),
		positions.NewRepository(cacheDB.Conn(), logger),
		snapshots.NewRepository(cacheDB.Conn(), logger),
		settings.NewRepository(workspaceDB.Conn(), logger),
		moomoo.NewClient(logger),
		reorder.NewPlanner(25*time.Millisecond, bus, logger),
		bus,
		t.TempDir(),
		logger,
	)
	ws.Load()
	t.Cleanup(ws.Close)

	handler := NewHandler(ws, logger)
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})

	return router, ws
}

func TestHandleReport(t *testing.T) {
	router, ws := newTestRouter(t)

	ws.ImportExport(testingpkg.NewExportFixture(), "test")
	group := ws.CreateGroup("Tech")
	require.NotNil(t, group)
	ws.Assign("AAPL", group.ID)

	req := httptest.NewRequest("GET", "/api/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var report services.Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))

	assert.InDelta(t, 3500.0, report.Total, 0.01)
	assert.Equal(t, 3, report.PositionCount)
	require.NotNil(t, report.Account)
	assert.InDelta(t, 3700.0, report.Account.Account.TotalAssets, 0.01)

	// Group rows first, unassigned pinned last.
	require.Len(t, report.Rows, 2)
	assert.Equal(t, group.ID, report.Rows[0].ID)
	assert.Equal(t, allocation.UnassignedRowID, report.Rows[1].ID)
}

func TestHandleConcentration(t *testing.T) {
	router, ws := newTestRouter(t)

	ws.ImportExport(testingpkg.NewExportFixture(), "test")

	req := httptest.NewRequest("GET", "/api/report/concentration", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var conc allocation.Concentration
	require.NoError(t, json.NewDecoder(w.Body).Decode(&conc))

	// One populated row, so the portfolio is fully concentrated.
	assert.InDelta(t, 1.0, conc.HHI, 0.001)
	assert.InDelta(t, 1.0, conc.LargestShare, 0.001)
}

func TestHandleReport_EmptyWorkspace(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var report services.Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.Zero(t, report.Total)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, allocation.UnassignedRowID, report.Rows[0].ID)
}
