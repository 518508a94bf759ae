package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"SentimentDashboard/internal/collector"
	"SentimentDashboard/internal/dashboard"
	"SentimentDashboard/internal/recorder"
)

const sessionCookie = "sd_session"

type sessionEntry struct {
	ctrl     *dashboard.Controller
	lastSeen time.Time
}

// sessionStore gives every browser its own dashboard controller.
type sessionStore struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	col     *collector.Collector
	rec     recorder.Recorder
	idleTTL time.Duration
	now     func() time.Time
}

func newSessionStore(col *collector.Collector, rec recorder.Recorder, idleTTL time.Duration) *sessionStore {
	return &sessionStore{
		entries: make(map[string]*sessionEntry),
		col:     col,
		rec:     rec,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// controller returns the caller's controller, creating a session and setting
// the cookie when the request carries none (or an expired one).
func (s *sessionStore) controller(w http.ResponseWriter, r *http.Request) *dashboard.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if c, err := r.Cookie(sessionCookie); err == nil {
		if e, ok := s.entries[c.Value]; ok {
			e.lastSeen = now
			return e.ctrl
		}
	}

	s.pruneLocked(now)
	id := uuid.NewString()
	e := &sessionEntry{ctrl: dashboard.NewController(s.col, s.rec), lastSeen: now}
	s.entries[id] = e
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return e.ctrl
}

func (s *sessionStore) pruneLocked(now time.Time) {
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.idleTTL {
			delete(s.entries, id)
		}
	}
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
