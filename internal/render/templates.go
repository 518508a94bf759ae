package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"SentimentDashboard/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))

// SummaryRow is one clickable source row of the dashboard.
type SummaryRow struct {
	Source model.Source
	Title  string
	Text   string
	Open   bool
}

// PageData is everything the dashboard page shows.
type PageData struct {
	Ticker      string
	Status      string
	StatusKind  string
	Rows        []SummaryRow
	OpenPanel   template.HTML
	Placeholder string
}

// RenderPage writes the full dashboard page.
func RenderPage(w io.Writer, data PageData) error {
	if err := templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
