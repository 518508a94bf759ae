package model

import "time"

// WatchEntry is one ticker on the watchlist with the outcome of its last sweep.
type WatchEntry struct {
	Ticker      string            `json:"ticker"`
	AddedAt     time.Time         `json:"added_at"`
	LastRunAt   time.Time         `json:"last_run_at,omitempty"`
	LastSummary map[Source]string `json:"last_summary,omitempty"`
}

// WatchState is the persisted watchlist.
type WatchState struct {
	Entries   []WatchEntry `json:"entries"`
	UpdatedAt time.Time    `json:"updated_at"`
}
