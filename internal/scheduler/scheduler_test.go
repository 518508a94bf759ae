package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"SentimentDashboard/internal/collector"
	"SentimentDashboard/internal/model"
	"SentimentDashboard/internal/watchlist"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type fakeQuotes struct{ err error }

func (f fakeQuotes) FetchQuote(_ context.Context, ticker string) (*collector.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &collector.Quote{Symbol: ticker, Price: 101, PrevClose: 100, Currency: "USD"}, nil
}

func newTestScheduler(t *testing.T, m *collector.MockFetcher, seed ...string) (*Scheduler, *fakeSender) {
	t.Helper()
	wl, err := watchlist.NewManager(filepath.Join(t.TempDir(), "watchlist.json"), seed)
	if err != nil {
		t.Fatalf("watchlist: %v", err)
	}
	sender := &fakeSender{}
	s := NewScheduler(context.Background(), collector.NewCollector(m), fakeQuotes{}, wl, sender, nil)
	return s, sender
}

func TestSweep_SendsDigestPerTicker(t *testing.T) {
	s, sender := newTestScheduler(t, &collector.MockFetcher{}, "TSLA", "AAPL")
	s.RunSweepNow()

	if len(sender.sent) != 2 {
		t.Fatalf("sent %d digests, want 2", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0], "TSLA sentiment") || !strings.Contains(sender.sent[1], "AAPL sentiment") {
		t.Errorf("digests = %q", sender.sent)
	}
	if !strings.Contains(sender.sent[0], "Price: 101.00 USD") {
		t.Errorf("digest missing quote: %s", sender.sent[0])
	}
	st := s.Watchlist.GetState()
	if st.Entries[0].LastSummary[model.SourceYahoo] != "55% Positive" {
		t.Errorf("last summary = %+v", st.Entries[0].LastSummary)
	}
}

func TestDigest_QuoteFailureStillDigests(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Errors: map[model.Source]error{model.SourceNews: errors.New("down")}})
	s.Quotes = fakeQuotes{err: errors.New("rate limited")}

	msg, err := s.Digest(context.Background(), "nvda")
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if strings.Contains(msg, "Price:") || !strings.Contains(msg, "General News: N/A") || !strings.Contains(msg, "Some sources failed.") {
		t.Errorf("digest:\n%s", msg)
	}
}

func TestHandleCommand(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{})
	ctx := context.Background()

	if got := s.HandleCommand(ctx, "/sentiment", nil); got != "Usage: /sentiment TICKER" {
		t.Errorf("/sentiment without args = %q", got)
	}
	if got := s.HandleCommand(ctx, "/sentiment", []string{"tsla"}); !strings.Contains(got, "TSLA sentiment") {
		t.Errorf("/sentiment tsla = %q", got)
	}
	if got := s.HandleCommand(ctx, "/watch", []string{"tsla"}); got != "✅ watching TSLA" {
		t.Errorf("/watch = %q", got)
	}
	if got := s.HandleCommand(ctx, "/watch", []string{"TSLA"}); !strings.Contains(got, "already") {
		t.Errorf("duplicate /watch = %q", got)
	}
	if got := s.HandleCommand(ctx, "/list", nil); !strings.Contains(got, "TSLA") {
		t.Errorf("/list = %q", got)
	}
	if got := s.HandleCommand(ctx, "/unwatch", []string{"TSLA"}); got != "✅ stopped watching TSLA" {
		t.Errorf("/unwatch = %q", got)
	}
	if got := s.HandleCommand(ctx, "/history", []string{"TSLA"}); got != "No history for TSLA yet." {
		t.Errorf("/history = %q", got)
	}
	if got := s.HandleCommand(ctx, "/help", nil); !strings.HasPrefix(got, "Commands:") {
		t.Errorf("/help = %q", got)
	}
}

func TestRegister_InvalidSpec(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{})
	if err := s.Register("not a cron"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
	if err := s.Register("0 */30 * * * *"); err != nil {
		t.Errorf("Register: %v", err)
	}
}
