package scheduler

import (
	"github.com/aristath/basket/internal/services"
	"github.com/rs/zerolog"
)

// ExportRescanJob polls the export directory and imports a newer export
// file when one appears.
type ExportRescanJob struct {
	workspace *services.Workspace
	log       zerolog.Logger
}

// NewExportRescanJob creates the rescan job
func NewExportRescanJob(workspace *services.Workspace, log zerolog.Logger) *ExportRescanJob {
	return &ExportRescanJob{
		workspace: workspace,
		log:       log.With().Str("job", "export_rescan").Logger(),
	}
}

// Name returns the job name
func (j *ExportRescanJob) Name() string {
	return "export-rescan"
}

// Run scans once. Finding nothing new is the normal case and not an error.
func (j *ExportRescanJob) Run() error {
	path, result, err := j.workspace.RescanExports()
	if err != nil {
		return err
	}

	if result != nil {
		j.log.Info().
			Str("path", path).
			Int("positions", result.Positions).
			Float64("total", result.Total).
			Msg("Imported new export")
	}

	return nil
}

// DailySnapshotJob persists a view snapshot so history keeps at least
// daily resolution even when no exports arrive.
type DailySnapshotJob struct {
	workspace *services.Workspace
	log       zerolog.Logger
}

// NewDailySnapshotJob creates the snapshot job
func NewDailySnapshotJob(workspace *services.Workspace, log zerolog.Logger) *DailySnapshotJob {
	return &DailySnapshotJob{
		workspace: workspace,
		log:       log.With().Str("job", "daily_snapshot").Logger(),
	}
}

// Name returns the job name
func (j *DailySnapshotJob) Name() string {
	return "daily-snapshot"
}

// Run persists one snapshot of the current view.
func (j *DailySnapshotJob) Run() error {
	j.workspace.SnapshotNow("scheduled")
	return nil
}
