package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/basket/internal/database"
	"github.com/aristath/basket/internal/services"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers provides system monitoring endpoints
type SystemHandlers struct {
	workspace   *services.Workspace
	workspaceDB *database.DB
	cacheDB     *database.DB
	log         zerolog.Logger
	startTime   time.Time
}

// NewSystemHandlers creates system monitoring handlers
func NewSystemHandlers(
	workspace *services.Workspace,
	workspaceDB *database.DB,
	cacheDB *database.DB,
	log zerolog.Logger,
) *SystemHandlers {
	return &SystemHandlers{
		workspace:   workspace,
		workspaceDB: workspaceDB,
		cacheDB:     cacheDB,
		log:         log.With().Str("handler", "system").Logger(),
		startTime:   time.Now(),
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	databases := make(map[string]interface{}, 2)
	for _, db := range []*database.DB{h.workspaceDB, h.cacheDB} {
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			continue
		}
		databases[db.Name()] = map[string]interface{}{
			"size_bytes":     stats.SizeBytes,
			"wal_size_bytes": stats.WALSizeBytes,
			"page_count":     stats.PageCount,
			"page_size":      stats.PageSize,
			"freelist_count": stats.FreelistCount,
		}
	}

	report := h.workspace.Report()

	response := map[string]interface{}{
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"cpu_percent":    cpuPercent,
		"memory_percent": memPercent,
		"go": map[string]interface{}{
			"version":     runtime.Version(),
			"goroutines":  runtime.NumGoroutine(),
			"alloc_bytes": memStats.Alloc,
		},
		"databases": databases,
		"engine": map[string]interface{}{
			"positions":     report.PositionCount,
			"groups":        len(report.Rows) - 1, // unassigned row excluded
			"total":         report.Total,
			"reorder_state": report.ReorderState,
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// getSystemStats samples CPU and memory usage. The 100ms CPU window keeps
// the endpoint responsive for pollers.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
