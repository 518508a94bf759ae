package collector

import (
	"context"

	"SentimentDashboard/internal/model"
)

// Fetcher defines the interface for fetching sentiment from the backend.
type Fetcher interface {
	FetchYahoo(ctx context.Context, ticker string) (*model.SourceResult, error)
	FetchNews(ctx context.Context, ticker string) (*model.SourceResult, error)
	FetchReddit(ctx context.Context, ticker string) (*model.SourceResult, error)
	FetchRedditTexts(ctx context.Context, ticker string) ([]string, error)
	Name() string
}

// NewsParams is the request body of the general news endpoint.
type NewsParams struct {
	Classifier         string `json:"classifier"`
	LimitArticles      int    `json:"limit_articles"`
	IncludeDescription bool   `json:"include_description"`
	SortBy             string `json:"sort_by"`
}

// RedditParams is the request body of the Reddit sentiment endpoint. The
// texts endpoint takes the same fields, minus the classifier, as a query.
type RedditParams struct {
	Classifier         string `json:"classifier"`
	Timeframe          string `json:"timeframe"`
	LimitPosts         int    `json:"limit_posts"`
	IncludeComments    bool   `json:"include_comments"`
	CommentsPerPost    int    `json:"comments_per_post"`
	IncludeFinanceSubs bool   `json:"include_finance_subs"`
}

// Params bundles the fixed request parameters sent with every search.
type Params struct {
	Classifier string
	News       NewsParams
	Reddit     RedditParams
}

// DefaultParams returns the parameters the dashboard searches with.
func DefaultParams() Params {
	return Params{
		Classifier: "finbertprobs",
		News: NewsParams{
			Classifier:         "finbertprobs",
			LimitArticles:      50,
			IncludeDescription: true,
			SortBy:             "publishedAt",
		},
		Reddit: RedditParams{
			Classifier:         "finbertprobs",
			Timeframe:          "day",
			LimitPosts:         80,
			IncludeComments:    true,
			CommentsPerPost:    8,
			IncludeFinanceSubs: true,
		},
	}
}
