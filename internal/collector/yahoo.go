package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Quote is the latest price of a ticker, shown next to its sentiment digest.
type Quote struct {
	Symbol    string
	Price     float64
	PrevClose float64
	Currency  string
	AsOf      time.Time
}

// ChangePct is the move since the previous close, in percent.
func (q *Quote) ChangePct() float64 {
	if q.PrevClose == 0 {
		return 0
	}
	return (q.Price - q.PrevClose) / q.PrevClose * 100
}

// YahooQuoteFetcher reads quotes from the Yahoo Finance public chart API.
type YahooQuoteFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooQuoteFetcher creates a new Yahoo Finance quote fetcher.
func NewYahooQuoteFetcher(proxyURL string) *YahooQuoteFetcher {
	return &YahooQuoteFetcher{
		BaseURL: "https://query1.finance.yahoo.com",
		Client:  NewHTTPClient(proxyURL, 30*time.Second),
	}
}

// yahooChart is the subset of the chart API response the quote needs.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchQuote returns the latest regular-market price for ticker.
func (f *YahooQuoteFetcher) FetchQuote(ctx context.Context, ticker string) (*Quote, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", f.BaseURL, url.PathEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || chart.Chart.Result[0].Meta.RegularMarketPrice == 0 {
		return nil, fmt.Errorf("yahoo: no price data")
	}

	meta := chart.Chart.Result[0].Meta
	prev := meta.PreviousClose
	if prev == 0 {
		prev = meta.ChartPreviousClose
	}
	return &Quote{
		Symbol:    meta.Symbol,
		Price:     meta.RegularMarketPrice,
		PrevClose: prev,
		Currency:  meta.Currency,
		AsOf:      time.Unix(meta.RegularMarketTime, 0),
	}, nil
}
