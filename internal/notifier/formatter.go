package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"SentimentDashboard/internal/collector"
	"SentimentDashboard/internal/dashboard"
	"SentimentDashboard/internal/model"
	"SentimentDashboard/internal/recorder"
)

var sourceIcon = map[model.Source]string{
	model.SourceYahoo:  "📰",
	model.SourceNews:   "🗞",
	model.SourceReddit: "👽",
}

// FormatDigest formats one search into a Telegram message. quote may be nil.
func FormatDigest(res *dashboard.SearchResult, quote *collector.Quote) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s sentiment</b> | %s\n", html.EscapeString(res.Ticker), time.Now().Format("2006-01-02 15:04")))
	if quote != nil {
		b.WriteString(fmt.Sprintf("Price: %.2f %s (%+.2f%%)\n", quote.Price, quote.Currency, quote.ChangePct()))
	}
	b.WriteString("\n")

	for _, src := range model.Sources {
		b.WriteString(fmt.Sprintf("%s %s: %s\n", sourceIcon[src], src.Title(), res.Summaries[src]))
	}

	if res.Failed {
		b.WriteString("\n⚠️ Some sources failed.")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatHistory lists recent searches for a ticker, newest first.
func FormatHistory(ticker string, records []recorder.SearchRecord, now time.Time) string {
	if len(records) == 0 {
		return fmt.Sprintf("No history for %s yet.", html.EscapeString(ticker))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🕑 <b>%s history</b>\n", html.EscapeString(ticker)))
	for _, r := range records {
		b.WriteString(fmt.Sprintf("\n%s\n", humanize.RelTime(r.SearchedAt, now, "ago", "from now")))
		for _, s := range r.Sources {
			b.WriteString(fmt.Sprintf("  %s %s\n", sourceIcon[s.Source], s.Summary))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatWatchlist formats the watched tickers with their last summaries.
func FormatWatchlist(state *model.WatchState, now time.Time) string {
	if len(state.Entries) == 0 {
		return "Watchlist is empty. Add a ticker with /watch TICKER"
	}
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n")
	for _, e := range state.Entries {
		b.WriteString(fmt.Sprintf("\n<b>%s</b>", html.EscapeString(e.Ticker)))
		if e.LastRunAt.IsZero() {
			b.WriteString(" (not run yet)\n")
			continue
		}
		b.WriteString(fmt.Sprintf(" (%s)\n", humanize.RelTime(e.LastRunAt, now, "ago", "from now")))
		for _, src := range model.Sources {
			if s, ok := e.LastSummary[src]; ok {
				b.WriteString(fmt.Sprintf("  %s %s\n", sourceIcon[src], s))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
