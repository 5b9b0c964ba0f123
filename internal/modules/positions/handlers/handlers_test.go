package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/basket/internal/clients/moomoo"
	"github.com/aristath/basket/internal/events"
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

const sampleExport = `{
	"timestamp": "20240315_143022",
	"account": {"total_assets": 3700, "cash": 200, "market_val": 3500, "power": 400, "currency": "USD"},
	"positions": [
		{"code": "US.AAPL", "stock_name": "Apple Inc", "qty": 10, "cost_price": 90, "current_price": 100, "market_val": 1000, "currency": "USD"},
		{"code": "US.TSLA", "stock_name": "Tesla Inc", "qty": 10, "cost_price": 180, "current_price": 200, "market_val": 2000, "currency": "USD"}
	]
}`

func newTestRouter(t *testing.T) (*chi.Mux, *services.Workspace, string) {
	t.Helper()

	logger := zerolog.New(nil).Level(zerolog.Disabled)

	workspaceDB, cleanupWorkspace := testingpkg.NewTestDB(t, "workspace")
	t.Cleanup(cleanupWorkspace)
	cacheDB, cleanupCache := testingpkg.NewTestDB(t, "cache")
	t.Cleanup(cleanupCache)

	exportDir := t.TempDir()

	bus := events.NewBus(logger)
	ws := services.NewWorkspace(
		groups.NewRepository(workspaceDB.Conn(), logger),
		positions.NewRepository(cacheDB.Conn(), logger),
		snapshots.NewRepository(cacheDB.Conn(), logger),
		settings.NewRepository(workspaceDB.Conn(), logger),
		moomoo.NewClient(logger),
		reorder.NewPlanner(25*time.Millisecond, bus, logger),
		bus,
		exportDir,
		logger,
	)
	ws.Load()
	t.Cleanup(ws.Close)

	handler := NewHandler(ws, logger)
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})

	return router, ws, exportDir
}

func TestHandleImport(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest("POST", "/api/positions/import", bytes.NewReader([]byte(sampleExport)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result services.ImportResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, "api", result.Source)
	assert.Equal(t, 2, result.Positions)
	assert.InDelta(t, 3000.0, result.Total, 0.01)
}

func TestHandleImport_MalformedBody(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest("POST", "/api/positions/import", bytes.NewReader([]byte("not an export")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp, "error")
}

func TestHandleList(t *testing.T) {
	router, ws, _ := newTestRouter(t)

	ws.ImportExport(testingpkg.NewExportFixture(), "test")

	req := httptest.NewRequest("GET", "/api/positions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Positions []map[string]interface{} `json:"positions"`
		Count     int                      `json:"count"`
		Account   *positions.AccountState  `json:"account"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Count)
	assert.Len(t, resp.Positions, 3)
	require.NotNil(t, resp.Account)
	assert.Equal(t, "test", resp.Account.Source)
}

func TestHandleList_Empty(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/positions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count   int                     `json:"count"`
		Account *positions.AccountState `json:"account"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Zero(t, resp.Count)
	assert.Nil(t, resp.Account)
}

func TestHandleAccount(t *testing.T) {
	router, ws, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/account", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	ws.ImportExport(testingpkg.NewExportFixture(), "test")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/account", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var account positions.AccountState
	require.NoError(t, json.NewDecoder(w.Body).Decode(&account))
	assert.InDelta(t, 3700.0, account.Account.TotalAssets, 0.01)
}

func TestHandleRescan_NothingNew(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest("POST", "/api/positions/rescan", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandleRescan_ImportsNewest(t *testing.T) {
	router, _, exportDir := newTestRouter(t)

	path := filepath.Join(exportDir, "account_0001_data_20240315_143022.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o644))

	req := httptest.NewRequest("POST", "/api/positions/rescan", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result services.ImportResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, 2, result.Positions)

	// Same file again: nothing new.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/positions/rescan", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
