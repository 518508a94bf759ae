package watchlist

import (
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"SentimentDashboard/internal/model"
)

// Manager guards the watchlist and writes every change through to disk.
type Manager struct {
	mu       sync.Mutex
	state    *model.WatchState
	filePath string
}

// NewManager loads the watchlist from filePath and adds any seed tickers
// that are not on it yet.
func NewManager(filePath string, seed []string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	m := &Manager{state: state, filePath: filePath}
	entries := slices.Clone(state.Entries)
	for _, t := range seed {
		entries, _ = appendEntry(entries, t)
	}
	if err := m.commit(entries); err != nil {
		return nil, err
	}
	return m, nil
}

// Tickers returns the watched tickers in insertion order.
func (m *Manager) Tickers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.state.Entries))
	for i, e := range m.state.Entries {
		out[i] = e.Ticker
	}
	return out
}

// GetState returns a copy of the current watchlist.
func (m *Manager) GetState() model.WatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.state
	cp.Entries = slices.Clone(m.state.Entries)
	return cp
}

// Add puts ticker on the watchlist. It reports false if it was already there.
func (m *Manager) Add(ticker string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := appendEntry(slices.Clone(m.state.Entries), ticker)
	if !ok {
		return false, nil
	}
	if err := m.commit(entries); err != nil {
		return false, err
	}
	log.Printf("[INFO] watchlist: added %s", ticker)
	return true, nil
}

func appendEntry(entries []model.WatchEntry, ticker string) ([]model.WatchEntry, bool) {
	if ticker == "" || slices.ContainsFunc(entries, func(e model.WatchEntry) bool { return e.Ticker == ticker }) {
		return entries, false
	}
	return append(entries, model.WatchEntry{Ticker: ticker, AddedAt: time.Now()}), true
}

// Remove drops ticker from the watchlist. It reports false if it was not there.
func (m *Manager) Remove(ticker string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(ticker)
	if i < 0 {
		return false, nil
	}
	if err := m.commit(slices.Delete(slices.Clone(m.state.Entries), i, i+1)); err != nil {
		return false, err
	}
	log.Printf("[INFO] watchlist: removed %s", ticker)
	return true, nil
}

// RecordRun stores the summaries of the latest sweep for ticker.
func (m *Manager) RecordRun(ticker string, summaries map[model.Source]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(ticker)
	if i < 0 {
		return nil
	}
	entries := slices.Clone(m.state.Entries)
	entries[i].LastRunAt = time.Now()
	entries[i].LastSummary = summaries
	return m.commit(entries)
}

func (m *Manager) indexLocked(ticker string) int {
	return slices.IndexFunc(m.state.Entries, func(e model.WatchEntry) bool { return e.Ticker == ticker })
}

// commit writes entries to disk and only then makes them current.
func (m *Manager) commit(entries []model.WatchEntry) error {
	next := &model.WatchState{Entries: entries}
	if err := SaveState(m.filePath, next); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	m.state = next
	return nil
}
