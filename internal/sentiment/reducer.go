package sentiment

import (
	"fmt"
	"math"

	"SentimentDashboard/internal/model"
)

// NotAvailable is shown for a source without an aggregate.
const NotAvailable = "N/A"

// NormalizePercent converts a score to an integer percentage. Values <= 1 are
// read as fractions, so an exact 1.0 means 100% rather than 1%.
func NormalizePercent(x float64) int {
	if x <= 1 {
		x *= 100
	}
	return int(math.Round(x))
}

// NormalizePercentPtr is NormalizePercent with a missing value read as 0.
func NormalizePercentPtr(x *float64) int {
	if x == nil {
		return 0
	}
	return NormalizePercent(*x)
}

// precedence is the tie-break order: first maximum wins.
var precedence = []model.Class{model.ClassPositive, model.ClassNeutral, model.ClassNegative}

func valueOf(s model.SentimentScore, c model.Class) float64 {
	switch c {
	case model.ClassPositive:
		return s.Positive
	case model.ClassNeutral:
		return s.Neutral
	default:
		return s.Negative
	}
}

// DominantClass returns the class with the highest score.
func DominantClass(s model.SentimentScore) model.Class {
	best := precedence[0]
	for _, c := range precedence[1:] {
		if valueOf(s, c) > valueOf(s, best) {
			best = c
		}
	}
	return best
}

// Dominant returns the dominant class together with its percentage.
func Dominant(s model.SentimentScore) (model.Class, int) {
	c := DominantClass(s)
	return c, NormalizePercent(valueOf(s, c))
}

// FormatDisplay renders an aggregate as "62% Positive", or N/A when absent.
func FormatDisplay(avg *model.SentimentScore) string {
	if avg == nil {
		return NotAvailable
	}
	c, pct := Dominant(*avg)
	return fmt.Sprintf("%d%% %s", pct, c.Label())
}

// Badge is one per-class percentage shown next to an item.
type Badge struct {
	Class   model.Class
	Short   string
	Percent int
}

// Badges returns the Pos/Neu/Neg percentages in display order.
func Badges(s model.SentimentScore) []Badge {
	return []Badge{
		{Class: model.ClassPositive, Short: "Pos", Percent: NormalizePercent(s.Positive)},
		{Class: model.ClassNeutral, Short: "Neu", Percent: NormalizePercent(s.Neutral)},
		{Class: model.ClassNegative, Short: "Neg", Percent: NormalizePercent(s.Negative)},
	}
}
