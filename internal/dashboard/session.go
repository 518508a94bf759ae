package dashboard

import (
	"html/template"
	"sync"

	"SentimentDashboard/internal/model"
)

// StatusKind colors the status line.
type StatusKind string

const (
	StatusNone  StatusKind = ""
	StatusOK    StatusKind = "ok"
	StatusError StatusKind = "error"
)

// Status is the one-line message shown under the search box.
type Status struct {
	Message string     `json:"message"`
	Kind    StatusKind `json:"kind"`
}

const pendingSummary = "—"

// Session is the state of one user's dashboard between requests. All fields
// are guarded by mu; the lock is never held across a backend call.
type Session struct {
	mu sync.Mutex

	generation  uint64
	ticker      string
	results     map[model.Source]*model.SourceResult
	summaries   map[model.Source]string
	redditTexts []string // nil until the Reddit panel is first opened

	open   model.Source // "" when every panel is closed
	panel  template.HTML
	status Status
}

// NewSession returns an empty session with no search yet.
func NewSession() *Session {
	return &Session{
		results:   make(map[model.Source]*model.SourceResult),
		summaries: make(map[model.Source]string),
	}
}

// View is a read-only copy of the session for rendering.
type View struct {
	Ticker    string                  `json:"ticker"`
	Summaries map[model.Source]string `json:"summaries"`
	Open      model.Source            `json:"open,omitempty"`
	Panel     template.HTML           `json:"-"`
	Status    Status                  `json:"status"`
	Loaded    map[model.Source]bool   `json:"loaded"`
}

// IsOpen reports whether src's panel is the open one.
func (v View) IsOpen(src model.Source) bool { return v.Open == src }

// Snapshot copies the current session state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		Ticker:    s.ticker,
		Summaries: make(map[model.Source]string, len(model.Sources)),
		Loaded:    make(map[model.Source]bool, len(model.Sources)),
		Open:      s.open,
		Panel:     s.panel,
		Status:    s.status,
	}
	for _, src := range model.Sources {
		v.Summaries[src] = s.summaries[src]
		v.Loaded[src] = s.results[src] != nil
	}
	return v
}

func (s *Session) setStatus(msg string, kind StatusKind) {
	s.status = Status{Message: msg, Kind: kind}
}

// reset starts a new search generation and returns its token.
func (s *Session) reset(ticker string) uint64 {
	s.generation++
	s.ticker = ticker
	s.results = make(map[model.Source]*model.SourceResult)
	s.redditTexts = nil
	for _, src := range model.Sources {
		s.summaries[src] = pendingSummary
	}
	s.closePanels()
	return s.generation
}

func (s *Session) closePanels() {
	s.open = ""
	s.panel = ""
}
