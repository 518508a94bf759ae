package model

import (
	"fmt"
	"strings"
)

// Source identifies one of the three sentiment feeds.
type Source string

const (
	SourceYahoo  Source = "yahoo"
	SourceNews   Source = "news"
	SourceReddit Source = "reddit"
)

// Sources lists the feeds in display order.
var Sources = []Source{SourceYahoo, SourceNews, SourceReddit}

// ParseSource maps a path or command token to a Source.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yahoo", "yf":
		return SourceYahoo, nil
	case "news":
		return SourceNews, nil
	case "reddit":
		return SourceReddit, nil
	}
	return "", fmt.Errorf("unknown source %q", s)
}

// Title is the heading used for panels and digests.
func (s Source) Title() string {
	switch s {
	case SourceYahoo:
		return "Yahoo Articles"
	case SourceNews:
		return "General News"
	case SourceReddit:
		return "Reddit"
	}
	return string(s)
}
