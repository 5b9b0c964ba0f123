package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func doJSON(t *testing.T, router *chi.Mux, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleCreate_ReturnsGroup(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/groups", map[string]string{"name": "Tech"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var group groups.Group
	require.NoError(t, json.NewDecoder(w.Body).Decode(&group))
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "Tech", group.Name)
}

func TestHandleCreate_BlankNameIsSilentNoOp(t *testing.T) {
	router, ws := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/groups", map[string]string{"name": "   "})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, ws.Groups())
}

func TestHandleCreate_MalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("POST", "/api/groups", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp, "error")
}

func TestHandleList(t *testing.T) {
	router, ws := newTestRouter(t)

	ws.CreateGroup("Tech")
	ws.CreateGroup("Energy")

	w := doJSON(t, router, "GET", "/api/groups", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var list []groups.Group
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list, 2)
}

func TestHandleRename(t *testing.T) {
	router, ws := newTestRouter(t)

	group := ws.CreateGroup("Tech")
	require.NotNil(t, group)

	w := doJSON(t, router, "PUT", "/api/groups/"+group.ID, map[string]string{"name": "Technology"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	renamed, ok := ws.Group(group.ID)
	require.True(t, ok)
	assert.Equal(t, "Technology", renamed.Name)
}

func TestHandleRename_UnknownIDIsSilentNoOp(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, "PUT", "/api/groups/no-such-id", map[string]string{"name": "Anything"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandleDelete(t *testing.T) {
	router, ws := newTestRouter(t)

	group := ws.CreateGroup("Tech")
	require.NotNil(t, group)

	w := doJSON(t, router, "DELETE", "/api/groups/"+group.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, ok := ws.Group(group.ID)
	assert.False(t, ok)
}

func TestHandleAssign_AddsUnseenTickerToGroup(t *testing.T) {
	router, ws := newTestRouter(t)

	group := ws.CreateGroup("Tech")
	require.NotNil(t, group)

	w := doJSON(t, router, "POST", "/api/groups/assign", map[string]string{
		"ticker":   "aapl",
		"group_id": group.ID,
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	assigned, ok := ws.Group(group.ID)
	require.True(t, ok)
	assert.Contains(t, assigned.Tickers, "AAPL")
}

func TestHandleAssign_EmptyGroupSendsToUnassigned(t *testing.T) {
	router, ws := newTestRouter(t)

	group := ws.CreateGroup("Tech")
	require.NotNil(t, group)
	ws.Assign("AAPL", group.ID)

	w := doJSON(t, router, "POST", "/api/groups/assign", map[string]string{"ticker": "AAPL"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	after, ok := ws.Group(group.ID)
	require.True(t, ok)
	assert.NotContains(t, after.Tickers, "AAPL")
}

func TestHandleAddTickers_CSVBody(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/tickers", map[string]string{"tickers": "smci, pltr"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string][]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.ElementsMatch(t, []string{"SMCI", "PLTR"}, resp["added"])
}

func TestHandleAddTickers_ArrayBody(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/tickers", map[string][]string{"tickers": {"gme"}})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string][]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, []string{"GME"}, resp["added"])
}

func TestHandleRemoveTicker(t *testing.T) {
	router, ws := newTestRouter(t)

	ws.AddTickers("SMCI")

	w := doJSON(t, router, "DELETE", "/api/tickers/SMCI", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	report := ws.Report()
	assert.NotContains(t, report.ManualTickers, "SMCI")
}
