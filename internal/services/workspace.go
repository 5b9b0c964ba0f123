// Package services holds the workspace coordinator: the single entry point
// through which every mutation flows. It owns the in-memory model (current
// positions, derived ledger, group store, reorder planner) and serializes
// access with one lock, so callers always observe a fully recomputed state.
package services

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/aristath/basket/internal/clients/moomoo"
	"github.com/aristath/basket/internal/domain"
	"github.com/aristath/basket/internal/events"
	"github.com/aristath/basket/internal/modules/allocation"
	"github.com/aristath/basket/internal/modules/groups"
	"github.com/aristath/basket/internal/modules/positions"
	"github.com/aristath/basket/internal/modules/reorder"
	"github.com/aristath/basket/internal/modules/settings"
	"github.com/aristath/basket/internal/modules/snapshots"
	"github.com/aristath/basket/internal/modules/symbols"
	"github.com/aristath/basket/internal/utils"
	"github.com/rs/zerolog"
)

// Report is the full presentation payload assembled for the UI.
type Report struct {
	GeneratedAt   time.Time               `json:"generated_at"`
	Total         float64                 `json:"total"`
	Rows          []allocation.Row        `json:"rows"`
	DisplayOrder  []string                `json:"display_order"`
	DirtyRows     []string                `json:"dirty_rows"`
	ReorderState  reorder.State           `json:"reorder_state"`
	Account       *positions.AccountState `json:"account,omitempty"`
	PositionCount int                     `json:"position_count"`
	ManualTickers []string                `json:"manual_tickers"`
}

// ImportResult summarizes one processed export.
type ImportResult struct {
	Source    string  `json:"source"`
	Positions int     `json:"positions"`
	Total     float64 `json:"total"`
}

// Workspace coordinates the group store, ledger, breakdown, planner, and
// persistence. All mutations run under one write lock; reads under the
// read lock. The reorder planner carries its own lock because its timer
// fires off-thread.
type Workspace struct {
	mu sync.RWMutex

	store         *groups.Store
	groupsRepo    *groups.Repository
	positionsRepo *positions.Repository
	snapshotsRepo *snapshots.Repository
	settingsRepo  *settings.Repository
	client        *moomoo.Client
	planner       *reorder.Planner
	bus           *events.Bus
	log           zerolog.Logger

	exportDir string

	positions   []domain.Position
	account     *positions.AccountState
	ledger      symbols.Ledger
	breakdown   allocation.Breakdown
	lastScanned string
}

// NewWorkspace wires the coordinator. Call Load before serving.
func NewWorkspace(
	groupsRepo *groups.Repository,
	positionsRepo *positions.Repository,
	snapshotsRepo *snapshots.Repository,
	settingsRepo *settings.Repository,
	client *moomoo.Client,
	planner *reorder.Planner,
	bus *events.Bus,
	exportDir string,
	log zerolog.Logger,
) *Workspace {
	w := &Workspace{
		store:         groups.NewStore(),
		groupsRepo:    groupsRepo,
		positionsRepo: positionsRepo,
		snapshotsRepo: snapshotsRepo,
		settingsRepo:  settingsRepo,
		client:        client,
		planner:       planner,
		bus:           bus,
		log:           log.With().Str("service", "workspace").Logger(),
		exportDir:     exportDir,
	}

	// Settle delay is a live setting; pick up changes without a restart.
	bus.Subscribe(events.SettingsChanged, func(e *events.Event) {
		data, ok := e.Data.(*events.SettingsChangedData)
		if !ok || data.Key != settings.KeyReorderSettleMs {
			return
		}
		if ms, err := settingsRepo.GetInt(settings.KeyReorderSettleMs, 1500); err == nil && ms > 0 {
			planner.SetDelay(time.Duration(ms) * time.Millisecond)
		}
	})

	return w
}

// Load restores persisted state. Nothing here is fatal: unreadable storage
// means starting from an empty workspace, per the recovery contract.
func (w *Workspace) Load() {
	w.mu.Lock()
	defer w.mu.Unlock()

	groupList, err := w.groupsRepo.LoadAll()
	if err != nil {
		w.log.Warn().Err(err).Msg("Failed to load groups, starting empty")
		groupList = nil
	}
	manual, err := w.groupsRepo.LoadManual()
	if err != nil {
		w.log.Warn().Err(err).Msg("Failed to load manual tickers, starting empty")
		manual = nil
	}
	w.store.Replace(groupList, manual)

	cached, err := w.positionsRepo.LoadPositions()
	if err != nil {
		w.log.Warn().Err(err).Msg("Failed to load cached positions, starting empty")
		cached = nil
	}
	w.positions = cached

	account, err := w.positionsRepo.LoadAccount()
	if err != nil {
		w.log.Warn().Err(err).Msg("Failed to load cached account, starting empty")
		account = nil
	}
	w.account = account

	w.recompute(nil, false)

	w.log.Info().
		Int("groups", len(groupList)).
		Int("manual_tickers", len(manual)).
		Int("positions", len(cached)).
		Msg("Workspace loaded")
}

// ImportExport replaces the position set with a parsed export, caches it,
// snapshots the resulting view, and publishes the import event.
func (w *Workspace) ImportExport(export *domain.Export, source string) ImportResult {
	defer utils.OperationTimer("import_export", w.log)()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.positions = export.Positions
	w.account = &positions.AccountState{
		Account:    export.Account,
		Source:     source,
		ImportedAt: time.Now(),
	}

	if err := w.positionsRepo.ReplaceAll(*export, source); err != nil {
		w.log.Error().Err(err).Msg("Failed to cache import, in-memory state stays authoritative")
	}

	w.recompute(nil, true)
	w.saveSnapshot(source)

	result := ImportResult{
		Source:    source,
		Positions: len(export.Positions),
		Total:     w.breakdown.Total,
	}

	w.bus.Publish("workspace", &events.PositionsImportedData{
		Source:    source,
		Positions: result.Positions,
		Total:     result.Total,
	})

	w.log.Info().
		Str("source", source).
		Int("positions", result.Positions).
		Float64("total", result.Total).
		Msg("Export imported")

	return result
}

// ImportRaw parses raw export JSON and imports it.
func (w *Workspace) ImportRaw(data []byte, source string) (ImportResult, error) {
	export, err := w.client.ParseExport(data)
	if err != nil {
		return ImportResult{}, err
	}
	return w.ImportExport(export, source), nil
}

// ImportFile reads an export file and imports it.
func (w *Workspace) ImportFile(path string) (ImportResult, error) {
	export, err := w.client.ReadExportFile(path)
	if err != nil {
		return ImportResult{}, err
	}

	result := w.ImportExport(export, filepath.Base(path))

	w.mu.Lock()
	w.lastScanned = path
	w.mu.Unlock()

	return result, nil
}

// RescanExports imports the newest export file in the watch directory if
// it has not been imported yet. Returns the imported path, empty when
// nothing new was found.
func (w *Workspace) RescanExports() (string, *ImportResult, error) {
	latest, err := w.client.FindLatest(w.exportDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to scan exports: %w", err)
	}

	w.mu.RLock()
	seen := w.lastScanned
	w.mu.RUnlock()

	if latest == "" || latest == seen {
		return "", nil, nil
	}

	result, err := w.ImportFile(latest)
	if err != nil {
		return "", nil, err
	}
	return latest, &result, nil
}

// CreateGroup adds a group. Returns nil when the name trims to empty.
func (w *Workspace) CreateGroup(name string) *groups.Group {
	w.mu.Lock()
	defer w.mu.Unlock()

	g := w.store.Create(name)
	if g == nil {
		return nil
	}

	w.recompute([]string{g.ID}, true)
	w.bus.Publish("workspace", &events.GroupsChangedData{
		Action: "created", GroupID: g.ID, Name: g.Name,
	})
	return g
}

// RenameGroup renames a group; unknown id or blank name is a silent
// no-op. Rank ties break on name, so a rename can shift canonical order.
func (w *Workspace) RenameGroup(id, name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.store.Rename(id, name) {
		return false
	}

	w.recompute(nil, true)
	w.bus.Publish("workspace", &events.GroupsChangedData{
		Action: "renamed", GroupID: id, Name: name,
	})
	return true
}

// DeleteGroup removes a group; its tickers fall back to unassigned.
func (w *Workspace) DeleteGroup(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	orphans, ok := w.store.Delete(id)
	if !ok {
		return false
	}

	w.recompute([]string{allocation.UnassignedRowID}, true)
	w.bus.Publish("workspace", &events.GroupsChangedData{
		Action: "deleted", GroupID: id,
	})

	w.log.Debug().Str("group_id", id).Strs("orphans", orphans).Msg("Group deleted")
	return true
}

// Assign moves a ticker to a group, or to unassigned when targetID is
// empty. All the silent no-op rules live in the store; the service only
// derives the dirty rows and persists the outcome.
func (w *Workspace) Assign(ticker, targetID string) groups.AssignResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	hasLive := w.ledger.Value(symbols.Normalize(ticker)) > 0
	res := w.store.Assign(ticker, targetID, hasLive)

	if !res.Changed && !res.BecameManual {
		// Idempotent or rejected: still re-sort, never re-persist.
		w.recompute(nil, false)
		return res
	}

	dirty := dirtyRows(res.FromGroupID, res.ToGroupID)
	w.recompute(dirty, true)
	w.bus.Publish("workspace", &events.TickerAssignedData{
		Ticker:      res.Ticker,
		FromGroupID: res.FromGroupID,
		ToGroupID:   res.ToGroupID,
	})
	return res
}

// AddTickers manually tracks a pasted list of tickers (comma, semicolon,
// or whitespace separated). Tickers already in the universe are skipped;
// new ones surface as unassigned at zero value. Returns the tickers
// actually added.
func (w *Workspace) AddTickers(raw string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var added []string
	for _, ticker := range utils.SplitTickerList(raw) {
		t := symbols.Normalize(ticker)
		if t == "" {
			continue
		}
		if w.store.AddManual(t, w.ledger.Value(t) > 0) {
			added = append(added, t)
		}
	}

	if len(added) == 0 {
		return nil
	}

	w.recompute([]string{allocation.UnassignedRowID}, true)
	for _, t := range added {
		w.bus.Publish("workspace", &events.TickerAssignedData{Ticker: t})
	}
	return added
}

// RemoveFromWorkspace forgets a ticker: stripped from its group and the
// manual set. It only stays visible if a live position still reports it.
func (w *Workspace) RemoveFromWorkspace(ticker string) groups.RemoveResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	res := w.store.RemoveFromWorkspace(ticker)
	if !res.Changed {
		return res
	}

	w.recompute(dirtyRows(res.FromGroupID, ""), true)
	w.bus.Publish("workspace", &events.TickerRemovedData{Ticker: res.Ticker})
	return res
}

// Report assembles the full presentation payload.
func (w *Workspace) Report() Report {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := w.planner.Snapshot()
	return Report{
		GeneratedAt:   time.Now(),
		Total:         w.breakdown.Total,
		Rows:          w.breakdown.Rows,
		DisplayOrder:  snap.DisplayOrder,
		DirtyRows:     snap.DirtyRows,
		ReorderState:  snap.State,
		Account:       w.account,
		PositionCount: len(w.positions),
		ManualTickers: w.store.Manual(),
	}
}

// Concentration computes concentration stats over the current breakdown.
func (w *Workspace) Concentration() allocation.Concentration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return allocation.Concentrate(w.breakdown)
}

// Groups returns the group list in creation order.
func (w *Workspace) Groups() []groups.Group {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.store.All()
}

// Group returns one group by id.
func (w *Workspace) Group(id string) (groups.Group, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.store.Get(id)
}

// Positions returns the current raw position list and account state.
func (w *Workspace) Positions() ([]domain.Position, *positions.AccountState) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]domain.Position, len(w.positions))
	copy(out, w.positions)
	return out, w.account
}

// SnapshotNow captures the current view outside the import path (the
// daily scheduler job).
func (w *Workspace) SnapshotNow(source string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.saveSnapshot(source)
}

// Close cancels the reorder timer.
func (w *Workspace) Close() {
	w.planner.Close()
}

// recompute rebuilds everything derived, feeds the planner, and
// optionally persists the group snapshot. Caller holds the write lock.
func (w *Workspace) recompute(dirty []string, persist bool) {
	w.ledger = symbols.Build(w.positions)
	w.store.ResortAll(w.ledger.Rank)

	groupedTickers := w.store.GroupedTickers()
	universe := w.ledger.Universe(w.store.Manual(), groupedTickers)
	grouped := make(map[string]struct{}, len(groupedTickers))
	for _, t := range groupedTickers {
		grouped[t] = struct{}{}
	}
	unassigned := make([]string, 0, len(universe))
	for _, t := range universe {
		if _, ok := grouped[t]; !ok {
			unassigned = append(unassigned, t)
		}
	}

	w.breakdown = allocation.Build(w.store.All(), unassigned, w.ledger)
	w.planner.Update(w.breakdown.RowIDs(), dirty)

	if persist {
		if err := w.groupsRepo.SaveAll(w.store.All(), w.store.ManualSnapshot()); err != nil {
			w.log.Error().Err(err).Msg("Failed to persist groups, in-memory state stays authoritative")
		}
	}
}

// saveSnapshot stores the current breakdown in the snapshot history.
// Caller holds the write lock. Failures are logged, never surfaced.
func (w *Workspace) saveSnapshot(source string) {
	keep, err := w.settingsRepo.GetInt(settings.KeySnapshotKeep, 180)
	if err != nil || keep < 0 {
		keep = 180
	}

	view := snapshots.View{
		TakenAt: time.Now(),
		Source:  source,
		Total:   w.breakdown.Total,
		Rows:    w.breakdown.Rows,
	}

	id, err := w.snapshotsRepo.Save(view, keep)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to save view snapshot")
		return
	}

	w.bus.Publish("workspace", &events.SnapshotSavedData{
		ID:      id,
		TakenAt: view.TakenAt.Format(time.RFC3339),
		Total:   view.Total,
	})
}

// dirtyRows maps group ids to breakdown row ids, folding the empty id
// (unassigned) onto the pinned row and dropping duplicates.
func dirtyRows(from, to string) []string {
	fromRow := rowID(from)
	toRow := rowID(to)
	if fromRow == toRow {
		return []string{fromRow}
	}
	return []string{fromRow, toRow}
}

func rowID(groupID string) string {
	if groupID == "" {
		return allocation.UnassignedRowID
	}
	return groupID
}
