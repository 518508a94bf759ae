package recorder

import (
	"time"

	"SentimentDashboard/internal/collector"
	"SentimentDashboard/internal/model"
	"SentimentDashboard/internal/sentiment"
)

// SourceRecord is one source's outcome within a search.
type SourceRecord struct {
	Source   model.Source
	Summary  string
	Dominant model.Class // empty when there was no aggregate
	Percent  int
	Items    int
	Failed   bool
	Error    string
}

// SearchRecord is one completed search.
type SearchRecord struct {
	Ticker     string
	SearchedAt time.Time
	Sources    []SourceRecord
}

// NewSearchRecord flattens a collector snapshot into a record.
func NewSearchRecord(snap *collector.Snapshot) *SearchRecord {
	rec := &SearchRecord{Ticker: snap.Ticker, SearchedAt: snap.FetchedAt}
	for _, src := range model.Sources {
		o := snap.Outcomes[src]
		sr := SourceRecord{Source: src, Summary: sentiment.NotAvailable}
		switch {
		case o.Err != nil:
			sr.Failed = true
			sr.Error = o.Err.Error()
		case o.Result != nil:
			sr.Summary = sentiment.FormatDisplay(o.Result.AverageSentiment)
			if avg := o.Result.AverageSentiment; avg != nil {
				sr.Dominant, sr.Percent = sentiment.Dominant(*avg)
			}
			sr.Items = max(len(o.Result.DetailedPredictions), len(o.Result.Predictions))
		}
		rec.Sources = append(rec.Sources, sr)
	}
	return rec
}

// Recorder persists search history for later review.
type Recorder interface {
	RecordSearch(rec *SearchRecord) error
	RecentSearches(ticker string, limit int) ([]SearchRecord, error)
	Close() error
}
