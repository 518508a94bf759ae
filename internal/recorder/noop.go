package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSearch(_ *SearchRecord) error                     { return nil }
func (n *NoopRecorder) RecentSearches(_ string, _ int) ([]SearchRecord, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                           { return nil }
