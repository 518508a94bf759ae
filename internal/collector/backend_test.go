package collector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"SentimentDashboard/internal/model"
)

func TestBackendFetcher_Requests(t *testing.T) {
	var newsBody NewsParams
	var redditBody RedditParams
	mux := http.NewServeMux()
	mux.HandleFunc("/api/yf/sentiment/BRK.B", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("yahoo method = %s, want GET", r.Method)
		}
		if got := r.URL.Query().Get("classifier"); got != "finbertprobs" {
			t.Errorf("yahoo classifier = %q", got)
		}
		w.Write([]byte(`{"average_sentiment":{"positive":0.6,"neutral":0.3,"negative":0.1},"detailed_predictions":[{"title":"t","url":"u","prediction":{"positive":1}}]}`))
	})
	mux.HandleFunc("/api/sentiment/news/BRK.B", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("news method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("news content type = %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&newsBody)
		w.Write([]byte(`{"average_sentiment":{"positive":0.1,"neutral":0.2,"negative":0.7}}`))
	})
	mux.HandleFunc("/api/sentiment/reddit/BRK.B", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&redditBody)
		w.Write([]byte(`{"predictions":["positive",{"positive":0.2,"neutral":0.5,"negative":0.3}]}`))
	})
	mux.HandleFunc("/reddit/fetch", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("ticker") != "BRK.B" || q.Get("timeframe") != "day" || q.Get("limit_posts") != "80" ||
			q.Get("include_comments") != "true" || q.Get("comments_per_post") != "8" || q.Get("include_finance_subs") != "true" {
			t.Errorf("unexpected reddit fetch query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"texts":["a","b"]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewBackendFetcher(srv.URL+"/", "", 0, DefaultParams())
	ctx := context.Background()

	yf, err := f.FetchYahoo(ctx, "BRK.B")
	if err != nil {
		t.Fatalf("FetchYahoo: %v", err)
	}
	if yf.AverageSentiment == nil || yf.AverageSentiment.Positive != 0.6 || len(yf.DetailedPredictions) != 1 {
		t.Errorf("unexpected yahoo result: %+v", yf)
	}

	news, err := f.FetchNews(ctx, "BRK.B")
	if err != nil {
		t.Fatalf("FetchNews: %v", err)
	}
	if news.AverageSentiment.Negative != 0.7 {
		t.Errorf("unexpected news result: %+v", news)
	}
	want := NewsParams{Classifier: "finbertprobs", LimitArticles: 50, IncludeDescription: true, SortBy: "publishedAt"}
	if newsBody != want {
		t.Errorf("news body = %+v, want %+v", newsBody, want)
	}

	rd, err := f.FetchReddit(ctx, "BRK.B")
	if err != nil {
		t.Fatalf("FetchReddit: %v", err)
	}
	if len(rd.Predictions) != 2 || rd.Predictions[0].Kind != model.PredictionLabel || rd.Predictions[1].Kind != model.PredictionScore {
		t.Errorf("unexpected reddit predictions: %+v", rd.Predictions)
	}
	if redditBody != DefaultParams().Reddit {
		t.Errorf("reddit body = %+v", redditBody)
	}

	texts, err := f.FetchRedditTexts(ctx, "BRK.B")
	if err != nil {
		t.Fatalf("FetchRedditTexts: %v", err)
	}
	if len(texts) != 2 || texts[0] != "a" {
		t.Errorf("texts = %v", texts)
	}
}

func TestBackendFetcher_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "classifier failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewBackendFetcher(srv.URL, "", 0, DefaultParams())
	if _, err := f.FetchYahoo(context.Background(), "TSLA"); err == nil {
		t.Fatal("expected error for 500 response")
	}
	if _, err := f.FetchRedditTexts(context.Background(), "TSLA"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestBackendFetcher_MalformedListsKeepAverage(t *testing.T) {
	const avg = `"average_sentiment":{"positive":0.6,"neutral":0.3,"negative":0.1}`
	mux := http.NewServeMux()
	mux.HandleFunc("/api/yf/sentiment/TSLA", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{` + avg + `,"detailed_predictions":{"oops":1}}`))
	})
	mux.HandleFunc("/api/sentiment/news/TSLA", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{` + avg + `,"detailed_predictions":[{"article_title":"Recall","prediction":"positive"}]}`))
	})
	mux.HandleFunc("/api/sentiment/reddit/TSLA", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{` + avg + `,"predictions":"x"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	snap := NewCollector(NewBackendFetcher(srv.URL, "", 0, DefaultParams())).Collect(context.Background(), "TSLA")
	if snap.Failed() {
		t.Fatalf("malformed lists failed the search: %+v", snap.Outcomes)
	}
	for _, src := range model.Sources {
		res := snap.Outcomes[src].Result
		if res.AverageSentiment == nil || res.AverageSentiment.Positive != 0.6 {
			t.Errorf("%s average = %+v, want 0.6 positive", src, res.AverageSentiment)
		}
	}
	if yf := snap.Outcomes[model.SourceYahoo].Result; yf.DetailedPredictions != nil {
		t.Errorf("yahoo detailed = %+v, want nil", yf.DetailedPredictions)
	}
	news := snap.Outcomes[model.SourceNews].Result.DetailedPredictions
	if len(news) != 1 || news[0].ArticleTitle != "Recall" || news[0].Prediction != (model.SentimentScore{}) {
		t.Errorf("news detailed = %+v, want one item with a zero score", news)
	}
	if rd := snap.Outcomes[model.SourceReddit].Result; rd.Predictions != nil {
		t.Errorf("reddit predictions = %+v, want nil", rd.Predictions)
	}
}

func TestCollector_PartialFailure(t *testing.T) {
	m := &MockFetcher{Errors: map[model.Source]error{model.SourceReddit: errors.New("boom")}}
	snap := NewCollector(m).Collect(context.Background(), "TSLA")

	if !snap.Failed() {
		t.Error("expected snapshot to report failure")
	}
	if o := snap.Outcomes[model.SourceReddit]; o.Err == nil || o.Result != nil {
		t.Errorf("reddit outcome = %+v, want error and nil result", o)
	}
	for _, src := range []model.Source{model.SourceYahoo, model.SourceNews} {
		if o := snap.Outcomes[src]; o.Err != nil || o.Result == nil {
			t.Errorf("%s outcome = %+v, want result", src, o)
		}
	}
	for _, src := range model.Sources {
		if n := m.Calls(src); n != 1 {
			t.Errorf("%s calls = %d, want 1", src, n)
		}
	}
	if m.TextCalls() != 0 {
		t.Error("collect must not fetch reddit texts")
	}
}

func TestYahooQuoteFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/TSLA" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"TSLA","currency":"USD","regularMarketPrice":210,"regularMarketTime":1700000000,"chartPreviousClose":200}}]}}`))
	}))
	defer srv.Close()

	f := NewYahooQuoteFetcher("")
	f.BaseURL = srv.URL
	q, err := f.FetchQuote(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}
	if q.Price != 210 || q.Currency != "USD" {
		t.Errorf("quote = %+v", q)
	}
	if pct := q.ChangePct(); pct != 5 {
		t.Errorf("ChangePct = %v, want 5", pct)
	}
}
