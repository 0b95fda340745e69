package models

import "time"

// ConnState is the coordinator-owned connection state. Only the sync
// coordinator transitions it.
type ConnState string

const (
	StateOffline ConnState = "offline"
	StateSyncing ConnState = "syncing"
	StateOnline  ConnState = "online"
	StateError   ConnState = "error"
)

// SyncStatus is the per-principal sync status singleton. It is created on
// the first local mutation and updated by the coordinator on every state
// transition.
type SyncStatus struct {
	LastFullSync       time.Time `json:"last_full_sync"`
	ConnectionState    ConnState `json:"connection_state"`
	OfflineChangeCount int       `json:"offline_change_count"`
}
