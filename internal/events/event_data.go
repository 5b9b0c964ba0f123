package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// PositionsImportedData contains data for PositionsImported events
type PositionsImportedData struct {
	Source    string  `json:"source"`
	Positions int     `json:"positions"`
	Total     float64 `json:"total"`
}

// EventType returns the event type for PositionsImportedData
func (d *PositionsImportedData) EventType() EventType {
	return PositionsImported
}

// GroupsChangedData contains data for GroupsChanged events
type GroupsChangedData struct {
	Action  string `json:"action"` // created, renamed, deleted
	GroupID string `json:"group_id"`
	Name    string `json:"name,omitempty"`
}

// EventType returns the event type for GroupsChangedData
func (d *GroupsChangedData) EventType() EventType {
	return GroupsChanged
}

// TickerAssignedData contains data for TickerAssigned events
type TickerAssignedData struct {
	Ticker      string `json:"ticker"`
	FromGroupID string `json:"from_group_id,omitempty"`
	ToGroupID   string `json:"to_group_id,omitempty"`
}

// EventType returns the event type for TickerAssignedData
func (d *TickerAssignedData) EventType() EventType {
	return TickerAssigned
}

// TickerRemovedData contains data for TickerRemoved events
type TickerRemovedData struct {
	Ticker string `json:"ticker"`
}

// EventType returns the event type for TickerRemovedData
func (d *TickerRemovedData) EventType() EventType {
	return TickerRemoved
}

// ReorderPendingData contains data for ReorderPending events
type ReorderPendingData struct {
	DirtyRows []string `json:"dirty_rows"`
}

// EventType returns the event type for ReorderPendingData
func (d *ReorderPendingData) EventType() EventType {
	return ReorderPending
}

// ReorderSettledData contains data for ReorderSettled events
type ReorderSettledData struct {
	DisplayOrder []string `json:"display_order"`
}

// EventType returns the event type for ReorderSettledData
func (d *ReorderSettledData) EventType() EventType {
	return ReorderSettled
}

// SnapshotSavedData contains data for SnapshotSaved events
type SnapshotSavedData struct {
	ID      int64   `json:"id"`
	TakenAt string  `json:"taken_at"`
	Total   float64 `json:"total"`
}

// EventType returns the event type for SnapshotSavedData
func (d *SnapshotSavedData) EventType() EventType {
	return SnapshotSaved
}

// SettingsChangedData contains data for SettingsChanged events
type SettingsChangedData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EventType returns the event type for SettingsChangedData
func (d *SettingsChangedData) EventType() EventType {
	return SettingsChanged
}
