package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"SentimentDashboard/internal/collector"
	"SentimentDashboard/internal/model"
	"SentimentDashboard/internal/recorder"
	"SentimentDashboard/internal/render"
	"SentimentDashboard/internal/sentiment"
)

var (
	ErrEmptyTicker   = errors.New("empty ticker")
	ErrNoData        = errors.New("no data loaded")
	ErrStaleSearch   = errors.New("superseded by a newer search")
	ErrUnknownSource = errors.New("unknown source")
)

const (
	msgEnterTicker  = "Enter a stock ticker (e.g., TSLA)."
	msgFetching     = "Fetching sentiment..."
	msgDone         = "Done."
	msgSomeFailed   = "Some sources failed."
	msgRedditFailed = "Failed to load Reddit posts."
)

var noDataMsg = map[model.Source]string{
	model.SourceYahoo:  "No Yahoo articles loaded. Search a ticker first.",
	model.SourceNews:   "No General News loaded. Search a ticker first.",
	model.SourceReddit: "No Reddit sentiment loaded. Search a ticker first.",
}

// SearchResult summarizes one completed search.
type SearchResult struct {
	Ticker    string
	Summaries map[model.Source]string
	Snapshot  *collector.Snapshot
	Failed    bool
}

// Controller drives a Session: it runs searches and toggles detail panels.
type Controller struct {
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Session   *Session
	Now       func() time.Time
}

// NewController creates a Controller with a fresh session.
func NewController(col *collector.Collector, rec recorder.Recorder) *Controller {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Controller{
		Collector: col,
		Recorder:  rec,
		Session:   NewSession(),
		Now:       time.Now,
	}
}

// NormalizeTicker trims and upper-cases user input.
func NormalizeTicker(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}

// Search fetches all three sources for input and updates the session. A
// result that arrives after a newer search started is dropped with
// ErrStaleSearch.
func (c *Controller) Search(ctx context.Context, input string) (*SearchResult, error) {
	ticker := NormalizeTicker(input)
	s := c.Session

	s.mu.Lock()
	if ticker == "" {
		s.setStatus(msgEnterTicker, StatusError)
		s.mu.Unlock()
		return nil, ErrEmptyTicker
	}
	gen := s.reset(ticker)
	s.setStatus(msgFetching, StatusOK)
	s.mu.Unlock()

	snap := c.Collector.Collect(ctx, ticker)

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		log.Printf("[WARN] discarding stale results for %s", ticker)
		return nil, ErrStaleSearch
	}
	res := &SearchResult{
		Ticker:    ticker,
		Summaries: make(map[model.Source]string, len(model.Sources)),
		Snapshot:  snap,
		Failed:    snap.Failed(),
	}
	for _, src := range model.Sources {
		o := snap.Outcomes[src]
		if o.Err != nil {
			s.results[src] = nil
			s.summaries[src] = sentiment.NotAvailable
		} else {
			s.results[src] = o.Result
			s.summaries[src] = sentiment.FormatDisplay(o.Result.AverageSentiment)
		}
		res.Summaries[src] = s.summaries[src]
	}
	if res.Failed {
		s.setStatus(msgSomeFailed, StatusError)
	} else {
		s.setStatus(msgDone, StatusOK)
	}
	s.mu.Unlock()

	if err := c.Recorder.RecordSearch(recorder.NewSearchRecord(snap)); err != nil {
		log.Printf("[ERROR] record search: %v", err)
	}
	return res, nil
}

// Toggle opens src's panel, closing the others, or closes it if it is
// already open. It reports whether the panel ended up open.
func (c *Controller) Toggle(ctx context.Context, src model.Source) (bool, error) {
	switch src {
	case model.SourceYahoo, model.SourceNews:
		return c.toggleArticles(src)
	case model.SourceReddit:
		return c.toggleReddit(ctx)
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownSource, src)
}

func (c *Controller) toggleArticles(src model.Source) (bool, error) {
	s := c.Session
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.results[src]
	if res == nil || res.DetailedPredictions == nil {
		s.setStatus(noDataMsg[src], StatusError)
		return false, ErrNoData
	}
	if s.open == src {
		s.closePanels()
		return false, nil
	}

	var p render.Panel
	if src == model.SourceNews {
		p = render.NewsPanel(res.DetailedPredictions, c.Now())
	} else {
		p = render.YahooPanel(res.DetailedPredictions)
	}
	return s.openPanel(src, p)
}

func (c *Controller) toggleReddit(ctx context.Context) (bool, error) {
	s := c.Session
	s.mu.Lock()
	res := s.results[model.SourceReddit]
	if res == nil {
		s.setStatus(noDataMsg[model.SourceReddit], StatusError)
		s.mu.Unlock()
		return false, ErrNoData
	}
	if s.open == model.SourceReddit {
		s.closePanels()
		s.mu.Unlock()
		return false, nil
	}
	s.closePanels()
	texts := s.redditTexts
	gen, ticker := s.generation, s.ticker
	s.mu.Unlock()

	if texts == nil {
		fetched, err := c.Collector.Fetcher.FetchRedditTexts(ctx, ticker)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != gen {
			return false, ErrStaleSearch
		}
		if err != nil {
			log.Printf("[ERROR] load reddit posts for %s: %v", ticker, err)
			s.setStatus(msgRedditFailed, StatusError)
			return false, fmt.Errorf("load reddit posts: %w", err)
		}
		if fetched == nil {
			fetched = []string{}
		}
		s.redditTexts = fetched
		texts = fetched
	} else {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != gen {
			return false, ErrStaleSearch
		}
	}

	return s.openPanel(model.SourceReddit, render.RedditPanel(texts, res.Predictions))
}

// openPanel must be called with s.mu held.
func (s *Session) openPanel(src model.Source, p render.Panel) (bool, error) {
	html, err := render.RenderPanel(p)
	if err != nil {
		s.closePanels()
		s.setStatus(err.Error(), StatusError)
		return false, err
	}
	s.open = src
	s.panel = html
	return true, nil
}

// Panel returns the HTML of the open panel, if any.
func (c *Controller) Panel() (model.Source, template.HTML) {
	c.Session.mu.Lock()
	defer c.Session.mu.Unlock()
	return c.Session.open, c.Session.panel
}
