package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"SentimentDashboard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Results  map[model.Source]*model.SourceResult
	Errors   map[model.Source]error
	Texts    []string
	TextsErr error
	// Hook runs before every call returns; tests use it to hold a request open.
	Hook func(ctx context.Context, src model.Source, ticker string)

	calls     [3]atomic.Int64
	textCalls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) fetch(ctx context.Context, src model.Source, ticker string) (*model.SourceResult, error) {
	m.calls[sourceIndex(src)].Add(1)
	if m.Hook != nil {
		m.Hook(ctx, src, ticker)
	}
	if err := m.Errors[src]; err != nil {
		return nil, err
	}
	if res, ok := m.Results[src]; ok {
		cp := *res
		cp.Ticker = ticker
		return &cp, nil
	}
	return generateMockResult(ticker, src), nil
}

func (m *MockFetcher) FetchYahoo(ctx context.Context, ticker string) (*model.SourceResult, error) {
	return m.fetch(ctx, model.SourceYahoo, ticker)
}

func (m *MockFetcher) FetchNews(ctx context.Context, ticker string) (*model.SourceResult, error) {
	return m.fetch(ctx, model.SourceNews, ticker)
}

func (m *MockFetcher) FetchReddit(ctx context.Context, ticker string) (*model.SourceResult, error) {
	return m.fetch(ctx, model.SourceReddit, ticker)
}

func (m *MockFetcher) FetchRedditTexts(ctx context.Context, ticker string) ([]string, error) {
	m.textCalls.Add(1)
	if m.Hook != nil {
		m.Hook(ctx, "reddit-texts", ticker)
	}
	if m.TextsErr != nil {
		return nil, m.TextsErr
	}
	if m.Texts != nil {
		return m.Texts, nil
	}
	return []string{fmt.Sprintf("%s to the moon", ticker), fmt.Sprintf("selling my %s calls", ticker)}, nil
}

// Calls reports how many sentiment requests were made for src.
func (m *MockFetcher) Calls(src model.Source) int64 { return m.calls[sourceIndex(src)].Load() }

// TextCalls reports how many raw Reddit text requests were made.
func (m *MockFetcher) TextCalls() int64 { return m.textCalls.Load() }

func sourceIndex(src model.Source) int {
	switch src {
	case model.SourceNews:
		return 1
	case model.SourceReddit:
		return 2
	default:
		return 0
	}
}

func generateMockResult(ticker string, src model.Source) *model.SourceResult {
	avg := model.SentimentScore{Positive: 0.55, Neutral: 0.3, Negative: 0.15}
	res := &model.SourceResult{
		Ticker:           ticker,
		Classifier:       "finbertprobs",
		AverageSentiment: &avg,
	}
	switch src {
	case model.SourceReddit:
		res.Predictions = []model.Prediction{
			model.ScorePrediction(model.SentimentScore{Positive: 0.8, Neutral: 0.15, Negative: 0.05}),
			model.ScorePrediction(model.SentimentScore{Positive: 0.1, Neutral: 0.2, Negative: 0.7}),
		}
		res.Count = 2
	default:
		res.DetailedPredictions = []model.DetailedPrediction{{
			Title:        ticker + " beats estimates",
			ArticleTitle: ticker + " beats estimates",
			URL:          "https://example.com/" + ticker,
			ArticleURL:   "https://example.com/" + ticker,
			Source:       "Mock Wire",
			Prediction:   avg,
		}}
		res.Count = 1
	}
	return res
}

// Outcome is the settled state of one source's request: either Result or Err is set.
type Outcome struct {
	Source model.Source
	Result *model.SourceResult
	Err    error
}

// Snapshot holds the three settled outcomes of one search.
type Snapshot struct {
	Ticker    string
	Outcomes  map[model.Source]Outcome
	FetchedAt time.Time
}

// Failed reports whether any source failed.
func (s *Snapshot) Failed() bool {
	for _, o := range s.Outcomes {
		if o.Err != nil {
			return true
		}
	}
	return false
}

// Collector fans a ticker out to the three sentiment sources.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Collect issues the Yahoo, news and Reddit requests concurrently and waits
// for all three to settle. One failing source never cancels the others.
func (c *Collector) Collect(ctx context.Context, ticker string) *Snapshot {
	calls := []struct {
		src   model.Source
		fetch func(context.Context, string) (*model.SourceResult, error)
	}{
		{model.SourceYahoo, c.Fetcher.FetchYahoo},
		{model.SourceNews, c.Fetcher.FetchNews},
		{model.SourceReddit, c.Fetcher.FetchReddit},
	}

	outcomes := make([]Outcome, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := call.fetch(ctx, ticker)
			if err == nil && res == nil {
				err = fmt.Errorf("%s: empty response", call.src)
			}
			outcomes[i] = Outcome{Source: call.src, Result: res, Err: err}
		}()
	}
	wg.Wait()

	snap := &Snapshot{Ticker: ticker, Outcomes: make(map[model.Source]Outcome, len(outcomes)), FetchedAt: time.Now()}
	for _, o := range outcomes {
		if o.Err != nil {
			log.Printf("[ERROR] %s failed for %s: %v", o.Source, ticker, o.Err)
			o.Result = nil
		}
		snap.Outcomes[o.Source] = o
	}
	return snap
}
