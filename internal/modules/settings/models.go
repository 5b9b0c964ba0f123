package settings

// Setting keys used by the engine.
const (
	KeyReorderSettleMs     = "reorder_settle_ms"
	KeyExportRescanSeconds = "export_rescan_seconds"
	KeySnapshotKeep        = "snapshot_keep"
)

// SettingDefaults holds all default values for configurable settings
var SettingDefaults = map[string]interface{}{
	KeyReorderSettleMs:     1500.0, // Delay before a pending reorder snaps to canonical order (ms)
	KeyExportRescanSeconds: 30.0,   // Export directory rescan interval in seconds (0 disables)
	KeySnapshotKeep:        180.0,  // View snapshots retained after pruning
}

// SettingDescriptions documents each setting for the settings API
var SettingDescriptions = map[string]string{
	KeyReorderSettleMs:     "Milliseconds a reordered view is held before display order snaps to rank order",
	KeyExportRescanSeconds: "Seconds between export directory rescans; 0 disables the rescan job",
	KeySnapshotKeep:        "Number of view snapshots kept in history; older rows are pruned",
}
