package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"SentimentDashboard/internal/model"
)

// SQLiteRecorder persists search history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			ticker    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_ticker_ts ON searches(ticker, timestamp)`,

		`CREATE TABLE IF NOT EXISTS search_sources (
			search_id INTEGER NOT NULL REFERENCES searches(id),
			source    TEXT NOT NULL,
			summary   TEXT,
			dominant  TEXT,
			percent   INTEGER,
			items     INTEGER,
			failed    INTEGER,
			error     TEXT,
			PRIMARY KEY (search_id, source)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSearch(rec *SearchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := rec.SearchedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO searches (timestamp, ticker) VALUES (?,?)`, ts.Unix(), rec.Ticker)
	if err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("search id: %w", err)
	}
	for _, s := range rec.Sources {
		if _, err := tx.Exec(`INSERT INTO search_sources
			(search_id, source, summary, dominant, percent, items, failed, error)
			VALUES (?,?,?,?,?,?,?,?)`,
			id, string(s.Source), s.Summary, string(s.Dominant), s.Percent, s.Items, s.Failed, s.Error,
		); err != nil {
			return fmt.Errorf("insert %s: %w", s.Source, err)
		}
	}
	return tx.Commit()
}

// RecentSearches returns the newest searches first. An empty ticker matches all.
func (r *SQLiteRecorder) RecentSearches(ticker string, limit int) ([]SearchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT id, timestamp, ticker FROM searches
		WHERE (? = '' OR ticker = ?)
		ORDER BY timestamp DESC, id DESC LIMIT ?`, ticker, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query searches: %w", err)
	}
	var ids []int64
	var out []SearchRecord
	for rows.Next() {
		var id, ts int64
		var rec SearchRecord
		if err := rows.Scan(&id, &ts, &rec.Ticker); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan search: %w", err)
		}
		rec.SearchedAt = time.Unix(ts, 0)
		ids = append(ids, id)
		out = append(out, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		srcRows, err := r.db.Query(`SELECT source, summary, dominant, percent, items, failed, error
			FROM search_sources WHERE search_id = ?`, id)
		if err != nil {
			return nil, fmt.Errorf("query sources: %w", err)
		}
		bySource := make(map[model.Source]SourceRecord)
		for srcRows.Next() {
			var s SourceRecord
			var src, dominant string
			if err := srcRows.Scan(&src, &s.Summary, &dominant, &s.Percent, &s.Items, &s.Failed, &s.Error); err != nil {
				srcRows.Close()
				return nil, fmt.Errorf("scan source: %w", err)
			}
			s.Source = model.Source(src)
			s.Dominant = model.Class(dominant)
			bySource[s.Source] = s
		}
		srcRows.Close()
		for _, src := range model.Sources {
			if s, ok := bySource[src]; ok {
				out[i].Sources = append(out[i].Sources, s)
			}
		}
	}
	return out, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
