package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SentimentDashboard/internal/model"
)

// DefaultBaseURL is where the sentiment backend listens unless the config file says otherwise.
const DefaultBaseURL = "http://127.0.0.1:8000"

// BackendFetcher implements Fetcher against the sentiment backend REST API.
type BackendFetcher struct {
	BaseURL string
	Params  Params
	Client  *http.Client
}

// NewBackendFetcher creates a new fetcher with optional proxy support.
func NewBackendFetcher(baseURL, proxyURL string, timeout time.Duration, params Params) *BackendFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &BackendFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Params:  params,
		Client:  NewHTTPClient(proxyURL, timeout),
	}
}

func (f *BackendFetcher) Name() string { return "backend" }

func (f *BackendFetcher) FetchYahoo(ctx context.Context, ticker string) (*model.SourceResult, error) {
	endpoint := fmt.Sprintf("%s/api/yf/sentiment/%s?classifier=%s",
		f.BaseURL, url.PathEscape(ticker), url.QueryEscape(f.Params.Classifier))
	var res model.SourceResult
	if err := f.do(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, fmt.Errorf("yahoo sentiment: %w", err)
	}
	return &res, nil
}

func (f *BackendFetcher) FetchNews(ctx context.Context, ticker string) (*model.SourceResult, error) {
	endpoint := fmt.Sprintf("%s/api/sentiment/news/%s", f.BaseURL, url.PathEscape(ticker))
	var res model.SourceResult
	if err := f.do(ctx, http.MethodPost, endpoint, f.Params.News, &res); err != nil {
		return nil, fmt.Errorf("news sentiment: %w", err)
	}
	return &res, nil
}

func (f *BackendFetcher) FetchReddit(ctx context.Context, ticker string) (*model.SourceResult, error) {
	endpoint := fmt.Sprintf("%s/api/sentiment/reddit/%s", f.BaseURL, url.PathEscape(ticker))
	var res model.SourceResult
	if err := f.do(ctx, http.MethodPost, endpoint, f.Params.Reddit, &res); err != nil {
		return nil, fmt.Errorf("reddit sentiment: %w", err)
	}
	return &res, nil
}

func (f *BackendFetcher) FetchRedditTexts(ctx context.Context, ticker string) ([]string, error) {
	rp := f.Params.Reddit
	q := url.Values{}
	q.Set("ticker", ticker)
	q.Set("timeframe", rp.Timeframe)
	q.Set("limit_posts", strconv.Itoa(rp.LimitPosts))
	q.Set("include_comments", strconv.FormatBool(rp.IncludeComments))
	q.Set("comments_per_post", strconv.Itoa(rp.CommentsPerPost))
	q.Set("include_finance_subs", strconv.FormatBool(rp.IncludeFinanceSubs))
	endpoint := fmt.Sprintf("%s/reddit/fetch?%s", f.BaseURL, q.Encode())

	var res model.RedditTexts
	if err := f.do(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, fmt.Errorf("reddit texts: %w", err)
	}
	if res.Texts == nil {
		return []string{}, nil
	}
	return res.Texts, nil
}

func (f *BackendFetcher) do(ctx context.Context, method, endpoint string, payload, out any) error {
	return DoJSON(ctx, f.Client, method, endpoint, payload, out)
}
