package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"SentimentDashboard/internal/collector"
	"SentimentDashboard/internal/dashboard"
	"SentimentDashboard/internal/notifier"
	"SentimentDashboard/internal/recorder"
	"SentimentDashboard/internal/watchlist"
)

// QuoteFetcher looks up the latest price for a digest.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, ticker string) (*collector.Quote, error)
}

// Sender delivers digests; *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs periodic sentiment sweeps over the watchlist.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Quotes    QuoteFetcher
	Watchlist *watchlist.Manager
	Notifier  Sender
	Recorder  recorder.Recorder
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. quotes and sender may be nil.
func NewScheduler(ctx context.Context, col *collector.Collector, quotes QuoteFetcher, wl *watchlist.Manager, sender Sender, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Quotes:    quotes,
		Watchlist: wl,
		Notifier:  sender,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// Register adds the watchlist sweep under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.sweep); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunSweepNow executes the sweep immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunSweepNow() {
	s.sweep()
}

func (s *Scheduler) sweep() {
	tickers := s.Watchlist.Tickers()
	log.Printf("[INFO] running watchlist sweep over %d tickers", len(tickers))
	for _, ticker := range tickers {
		if s.Ctx.Err() != nil {
			return
		}
		msg, err := s.Digest(s.Ctx, ticker)
		if err != nil {
			log.Printf("[ERROR] sweep %s: %v", ticker, err)
			continue
		}
		s.trySend(msg)
	}
}

// Digest searches ticker on a private session, stores the outcome on the
// watchlist and returns the formatted message.
func (s *Scheduler) Digest(ctx context.Context, ticker string) (string, error) {
	ctrl := dashboard.NewController(s.Collector, s.Recorder)
	res, err := ctrl.Search(ctx, ticker)
	if err != nil {
		return "", err
	}
	if err := s.Watchlist.RecordRun(res.Ticker, res.Summaries); err != nil {
		log.Printf("[ERROR] record watchlist run: %v", err)
	}

	var quote *collector.Quote
	if s.Quotes != nil {
		q, err := s.Quotes.FetchQuote(ctx, res.Ticker)
		if err != nil {
			log.Printf("[WARN] quote for %s: %v", res.Ticker, err)
		} else {
			quote = q
		}
	}
	return notifier.FormatDigest(res, quote), nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string, args []string) string {
	var ticker string
	if len(args) > 0 {
		ticker = dashboard.NormalizeTicker(args[0])
	}
	switch command {
	case "/sentiment", "/s":
		msg, err := s.Digest(ctx, ticker)
		if errors.Is(err, dashboard.ErrEmptyTicker) {
			return "Usage: /sentiment TICKER"
		}
		if err != nil {
			return fmt.Sprintf("❌ search failed: %v", err)
		}
		return msg
	case "/watch":
		if ticker == "" {
			return "Usage: /watch TICKER"
		}
		added, err := s.Watchlist.Add(ticker)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		if !added {
			return fmt.Sprintf("%s is already on the watchlist.", ticker)
		}
		return fmt.Sprintf("✅ watching %s", ticker)
	case "/unwatch":
		if ticker == "" {
			return "Usage: /unwatch TICKER"
		}
		removed, err := s.Watchlist.Remove(ticker)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		if !removed {
			return fmt.Sprintf("%s is not on the watchlist.", ticker)
		}
		return fmt.Sprintf("✅ stopped watching %s", ticker)
	case "/list":
		state := s.Watchlist.GetState()
		return notifier.FormatWatchlist(&state, time.Now())
	case "/history":
		if ticker == "" {
			return "Usage: /history TICKER"
		}
		recs, err := s.Recorder.RecentSearches(ticker, 5)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatHistory(ticker, recs, time.Now())
	case "/sweep":
		go s.RunSweepNow()
		return "Sweep started."
	default:
		return "Commands:\n• /sentiment TICKER\n• /watch TICKER\n• /unwatch TICKER\n• /list\n• /history TICKER\n• /sweep"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Printf("[INFO] digest (no notifier configured):\n%s", text)
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
