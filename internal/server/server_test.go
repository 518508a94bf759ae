package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"SentimentDashboard/internal/collector"
	"SentimentDashboard/internal/model"
)

type fakeQuotes struct{}

func (fakeQuotes) FetchQuote(_ context.Context, ticker string) (*collector.Quote, error) {
	if ticker == "FAIL" {
		return nil, errors.New("no data")
	}
	return &collector.Quote{Symbol: ticker, Price: 110, PrevClose: 100, Currency: "USD"}, nil
}

func newTestServer(t *testing.T, m *collector.MockFetcher) (*httptest.Server, *http.Client) {
	t.Helper()
	assets := t.TempDir()
	if err := os.MkdirAll(filepath.Join(assets, "components"), 0o755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(assets, "components", "tesla.png"), []byte("fallback"), 0o644)
	os.WriteFile(filepath.Join(assets, "components", "aapl.png"), []byte("apple"), 0o644)

	srv := httptest.NewServer(New(collector.NewCollector(m), nil, Options{AssetsDir: assets, Quotes: fakeQuotes{}}))
	t.Cleanup(srv.Close)

	client := srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return srv, client
}

func sessionCookieFrom(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func do(t *testing.T, client *http.Client, method, u string, form url.Values, cookie *http.Cookie) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, u, body)
	if err != nil {
		t.Fatal(err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSearchAndTogglePage(t *testing.T) {
	srv, client := newTestServer(t, &collector.MockFetcher{})

	resp := do(t, client, http.MethodPost, srv.URL+"/search", url.Values{"ticker": {"tsla"}}, nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("search status = %d", resp.StatusCode)
	}
	cookie := sessionCookieFrom(t, resp)

	resp = do(t, client, http.MethodPost, srv.URL+"/panels/news", url.Values{}, cookie)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("toggle status = %d", resp.StatusCode)
	}

	resp = do(t, client, http.MethodGet, srv.URL+"/", nil, cookie)
	page, _ := io.ReadAll(resp.Body)
	for _, want := range []string{`value="TSLA"`, "55% Positive", "Done.", "<h4>General News</h4>", "TSLA beats estimates"} {
		if !strings.Contains(string(page), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	srv, client := newTestServer(t, &collector.MockFetcher{})

	resp := do(t, client, http.MethodPost, srv.URL+"/api/search", url.Values{"ticker": {"TSLA"}}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("api search status = %d", resp.StatusCode)
	}

	resp = do(t, client, http.MethodGet, srv.URL+"/api/session", nil, nil)
	var v struct {
		Ticker string `json:"ticker"`
	}
	json.NewDecoder(resp.Body).Decode(&v)
	if v.Ticker != "" {
		t.Errorf("fresh session sees ticker %q", v.Ticker)
	}
}

func TestAPIFlow(t *testing.T) {
	m := &collector.MockFetcher{Errors: map[model.Source]error{model.SourceReddit: errors.New("down")}}
	srv, client := newTestServer(t, m)

	resp := do(t, client, http.MethodPost, srv.URL+"/api/search", url.Values{"ticker": {" "}}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty ticker status = %d", resp.StatusCode)
	}
	cookie := sessionCookieFrom(t, resp)

	resp = do(t, client, http.MethodPost, srv.URL+"/api/search", url.Values{"ticker": {"tsla"}}, cookie)
	var v struct {
		Ticker    string            `json:"ticker"`
		Summaries map[string]string `json:"summaries"`
		Status    struct {
			Message string `json:"message"`
		} `json:"status"`
		Open  string `json:"open"`
		Panel string `json:"panel"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Summaries["reddit"] != "N/A" || v.Summaries["yahoo"] == "N/A" || v.Status.Message != "Some sources failed." {
		t.Errorf("session = %+v", v)
	}

	resp = do(t, client, http.MethodPost, srv.URL+"/api/panels/reddit", nil, cookie)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("reddit toggle status = %d, want 409", resp.StatusCode)
	}

	resp = do(t, client, http.MethodPost, srv.URL+"/api/panels/yahoo", nil, cookie)
	v.Open, v.Panel = "", ""
	json.NewDecoder(resp.Body).Decode(&v)
	if resp.StatusCode != http.StatusOK || v.Open != "yahoo" || !strings.Contains(v.Panel, "Yahoo Articles") {
		t.Errorf("yahoo toggle = %d %+v", resp.StatusCode, v)
	}

	resp = do(t, client, http.MethodPost, srv.URL+"/api/panels/twitter", nil, cookie)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown panel status = %d", resp.StatusCode)
	}
}

func TestLogoFallback(t *testing.T) {
	srv, client := newTestServer(t, &collector.MockFetcher{})
	for ticker, want := range map[string]string{"AAPL": "apple", "GME": "fallback", "..%2Fsecret": "fallback"} {
		resp := do(t, client, http.MethodGet, srv.URL+"/logo/"+ticker, nil, nil)
		body, _ := io.ReadAll(resp.Body)
		if string(body) != want {
			t.Errorf("logo %s = %q, want %q", ticker, body, want)
		}
	}
}

func TestQuoteAndHistory(t *testing.T) {
	srv, client := newTestServer(t, &collector.MockFetcher{})

	resp := do(t, client, http.MethodGet, srv.URL+"/api/quote/tsla", nil, nil)
	var q map[string]any
	json.NewDecoder(resp.Body).Decode(&q)
	if resp.StatusCode != http.StatusOK || q["symbol"] != "TSLA" || q["change_pct"] != float64(10) {
		t.Errorf("quote = %d %v", resp.StatusCode, q)
	}
	if resp := do(t, client, http.MethodGet, srv.URL+"/api/quote/fail", nil, nil); resp.StatusCode != http.StatusBadGateway {
		t.Errorf("failing quote status = %d", resp.StatusCode)
	}

	resp = do(t, client, http.MethodGet, srv.URL+"/api/history/tsla", nil, nil)
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("history = %d %s", resp.StatusCode, body)
	}
}

func TestSessionPrune(t *testing.T) {
	store := newSessionStore(collector.NewCollector(&collector.MockFetcher{}), nil, time.Minute)
	now := time.Unix(1700000000, 0)
	store.now = func() time.Time { return now }

	store.controller(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	now = now.Add(2 * time.Minute)
	store.controller(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if n := store.len(); n != 1 {
		t.Errorf("sessions = %d, want 1 after prune", n)
	}
}

func TestRequestsLoggedThroughStandardLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	h := New(collector.NewCollector(&collector.MockFetcher{}), nil, Options{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	if out := buf.String(); !strings.Contains(out, "GET") || !strings.Contains(out, "/healthz") {
		t.Errorf("request log = %q, want the healthz request", out)
	}
}
