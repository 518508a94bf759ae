package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"SentimentDashboard/internal/model"
	"SentimentDashboard/internal/sentiment"
)

// BadgeView is one colored percentage (or raw label) next to an item.
type BadgeView struct {
	CSS  string
	Text string
}

// Item is one rendered entry of a detail panel.
type Item struct {
	Title   string
	URL     string
	Meta    string
	Preview string
	Badges  []BadgeView
}

// Panel is the view model of a source's detail panel. Empty is set instead of
// Items when there is nothing to show.
type Panel struct {
	Heading string
	Items   []Item
	Empty   string
}

var badgeCSS = map[model.Class]string{
	model.ClassPositive: "pos",
	model.ClassNeutral:  "neu",
	model.ClassNegative: "neg",
}

func scoreBadges(s model.SentimentScore) []BadgeView {
	bs := sentiment.Badges(s)
	out := make([]BadgeView, len(bs))
	for i, b := range bs {
		out[i] = BadgeView{CSS: badgeCSS[b.Class], Text: fmt.Sprintf("%s %d%%", b.Short, b.Percent)}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// YahooPanel builds the Yahoo articles panel.
func YahooPanel(items []model.DetailedPrediction) Panel {
	p := Panel{Heading: model.SourceYahoo.Title()}
	if len(items) == 0 {
		p.Empty = "No articles found."
		return p
	}
	for _, it := range items {
		p.Items = append(p.Items, Item{
			Title:   orDefault(it.Title, "(No title)"),
			URL:     orDefault(it.URL, "#"),
			Meta:    orDefault(it.Source, "Unknown"),
			Preview: it.ContentPreview,
			Badges:  scoreBadges(it.Prediction),
		})
	}
	return p
}

func newsKey(it model.DetailedPrediction) string {
	if it.ArticleURL != "" {
		return it.ArticleURL
	}
	if it.ArticleTitle != "" {
		return it.ArticleTitle
	}
	return it.Text
}

// DedupeNews drops repeated articles, keyed by URL and falling back to the
// title. The first occurrence wins; items with no key at all are dropped.
func DedupeNews(items []model.DetailedPrediction) []model.DetailedPrediction {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.DetailedPrediction, 0, len(items))
	for _, it := range items {
		key := newsKey(it)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

func publishedMeta(raw string, now time.Time) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// NewsPanel builds the general news panel after deduplication.
func NewsPanel(items []model.DetailedPrediction, now time.Time) Panel {
	p := Panel{Heading: model.SourceNews.Title()}
	if len(items) == 0 {
		p.Empty = "No articles found."
		return p
	}
	for _, it := range DedupeNews(items) {
		meta := orDefault(it.Source, "Unknown")
		if pub := publishedMeta(it.PublishedAt, now); pub != "" {
			meta += " • " + pub
		}
		title := it.ArticleTitle
		if title == "" {
			title = orDefault(it.Text, "(No title)")
		}
		p.Items = append(p.Items, Item{
			Title:   title,
			URL:     orDefault(it.ArticleURL, "#"),
			Meta:    meta,
			Preview: it.Text,
			Badges:  scoreBadges(it.Prediction),
		})
	}
	return p
}

// RedditPanel pairs raw texts with predictions by index, up to the shorter list.
func RedditPanel(texts []string, preds []model.Prediction) Panel {
	p := Panel{Heading: model.SourceReddit.Title()}
	if len(texts) == 0 {
		p.Empty = "No posts found."
		return p
	}
	n := min(len(texts), len(preds))
	if n == 0 {
		p.Empty = "No sentiment available."
		return p
	}
	for i := 0; i < n; i++ {
		item := Item{Preview: texts[i]}
		switch pred := preds[i]; pred.Kind {
		case model.PredictionScore:
			item.Badges = scoreBadges(pred.Score)
		default:
			item.Badges = []BadgeView{{CSS: "neu", Text: pred.Label}}
		}
		p.Items = append(p.Items, item)
	}
	return p
}

// RenderPanel renders a panel to escaped HTML.
func RenderPanel(p Panel) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "panel", p); err != nil {
		return "", fmt.Errorf("render panel: %w", err)
	}
	return template.HTML(buf.String()), nil
}
