package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"SentimentDashboard/internal/collector"
	"SentimentDashboard/internal/dashboard"
	"SentimentDashboard/internal/model"
	"SentimentDashboard/internal/recorder"
	"SentimentDashboard/internal/render"
)

// QuoteFetcher looks up the latest price for a ticker.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, ticker string) (*collector.Quote, error)
}

// Options configures the HTTP surface.
type Options struct {
	AssetsDir    string
	FallbackLogo string
	SessionTTL   time.Duration
	Quotes       QuoteFetcher
}

// Server serves the dashboard page and its JSON API.
type Server struct {
	sessions *sessionStore
	recorder recorder.Recorder
	opts     Options
	router   chi.Router
}

// New builds the router.
func New(col *collector.Collector, rec recorder.Recorder, opts Options) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	if opts.FallbackLogo == "" {
		opts.FallbackLogo = "tesla.png"
	}
	s := &Server{
		sessions: newSessionStore(col, rec, opts.SessionTTL),
		recorder: rec,
		opts:     opts,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Default(), NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Post("/search", s.handleSearch)
	r.Post("/panels/{source}", s.handleToggle)
	r.Get("/logo/{ticker}", s.handleLogo)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	if opts.AssetsDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(opts.AssetsDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleSession)
		r.Post("/search", s.handleAPISearch)
		r.Post("/panels/{source}", s.handleAPIToggle)
		r.Get("/history/{ticker}", s.handleHistory)
		r.Get("/quote/{ticker}", s.handleQuote)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.controller(w, r)
	v := ctrl.Session.Snapshot()

	data := render.PageData{
		Ticker:      v.Ticker,
		Status:      v.Status.Message,
		StatusKind:  string(v.Status.Kind),
		OpenPanel:   v.Panel,
		Placeholder: "e.g. TSLA",
	}
	rowTitles := map[model.Source]string{
		model.SourceYahoo:  "Yahoo Finance",
		model.SourceNews:   "General News",
		model.SourceReddit: "Reddit",
	}
	for _, src := range model.Sources {
		text := v.Summaries[src]
		if text == "" {
			text = "—"
		}
		data.Rows = append(data.Rows, render.SummaryRow{Source: src, Title: rowTitles[src], Text: text, Open: v.IsOpen(src)})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderPage(w, data); err != nil {
		log.Printf("[ERROR] %v", err)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.controller(w, r)
	if _, err := ctrl.Search(r.Context(), r.FormValue("ticker")); err != nil && !errors.Is(err, dashboard.ErrEmptyTicker) {
		log.Printf("[WARN] search: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.controller(w, r)
	src, err := model.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if _, err := ctrl.Toggle(r.Context(), src); err != nil && !errors.Is(err, dashboard.ErrNoData) {
		log.Printf("[WARN] toggle %s: %v", src, err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type sessionResponse struct {
	dashboard.View
	Panel string `json:"panel,omitempty"`
}

func (s *Server) writeSession(w http.ResponseWriter, ctrl *dashboard.Controller, status int) {
	v := ctrl.Session.Snapshot()
	writeJSON(w, status, sessionResponse{View: v, Panel: string(v.Panel)})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.writeSession(w, s.sessions.controller(w, r), http.StatusOK)
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.controller(w, r)
	_, err := ctrl.Search(r.Context(), r.FormValue("ticker"))
	switch {
	case errors.Is(err, dashboard.ErrEmptyTicker):
		s.writeSession(w, ctrl, http.StatusBadRequest)
	case errors.Is(err, dashboard.ErrStaleSearch):
		s.writeSession(w, ctrl, http.StatusConflict)
	default:
		s.writeSession(w, ctrl, http.StatusOK)
	}
}

func (s *Server) handleAPIToggle(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.controller(w, r)
	src, err := model.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if _, err := ctrl.Toggle(r.Context(), src); err != nil {
		switch {
		case errors.Is(err, dashboard.ErrNoData):
			status = http.StatusConflict
		case errors.Is(err, dashboard.ErrStaleSearch):
			status = http.StatusConflict
		default:
			status = http.StatusBadGateway
		}
	}
	s.writeSession(w, ctrl, status)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ticker := dashboard.NormalizeTicker(chi.URLParam(r, "ticker"))
	recs, err := s.recorder.RecentSearches(ticker, 20)
	if err != nil {
		log.Printf("[ERROR] history %s: %v", ticker, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
		return
	}
	if recs == nil {
		recs = []recorder.SearchRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if s.opts.Quotes == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "quotes disabled"})
		return
	}
	ticker := dashboard.NormalizeTicker(chi.URLParam(r, "ticker"))
	q, err := s.opts.Quotes.FetchQuote(r.Context(), ticker)
	if err != nil {
		log.Printf("[WARN] quote %s: %v", ticker, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "quote unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":     q.Symbol,
		"price":      q.Price,
		"prev_close": q.PrevClose,
		"change_pct": q.ChangePct(),
		"currency":   q.Currency,
		"as_of":      q.AsOf,
	})
}

var logoName = regexp.MustCompile(`^[a-z0-9.\-]+$`)

// handleLogo serves components/<ticker>.png, falling back to the default logo.
func (s *Server) handleLogo(w http.ResponseWriter, r *http.Request) {
	dir := filepath.Join(s.opts.AssetsDir, "components")
	name := strings.ToLower(chi.URLParam(r, "ticker"))
	if logoName.MatchString(name) && serveFile(w, r, filepath.Join(dir, name+".png")) {
		return
	}
	if !serveFile(w, r, filepath.Join(dir, s.opts.FallbackLogo)) {
		http.NotFound(w, r)
	}
}

// serveFile writes a regular file and reports whether it existed.
func serveFile(w http.ResponseWriter, r *http.Request, path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		return false
	}
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}
