package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Class is one of the three sentiment classes a classifier reports.
type Class string

const (
	ClassPositive Class = "positive"
	ClassNeutral  Class = "neutral"
	ClassNegative Class = "negative"
)

// Label returns the capitalized display label ("Positive", ...).
func (c Class) Label() string {
	switch c {
	case ClassPositive:
		return "Positive"
	case ClassNeutral:
		return "Neutral"
	case ClassNegative:
		return "Negative"
	default:
		return string(c)
	}
}

// SentimentScore holds per-class scores. Values arrive either as fractions
// in [0,1] or as percentages in [0,100]; they are not guaranteed to sum to 1.
type SentimentScore struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// PredictionKind tags which half of a Prediction is populated.
type PredictionKind int

const (
	PredictionScore PredictionKind = iota
	PredictionLabel
)

// Prediction is a single per-item classifier output. Probability classifiers
// return a score object, single-label classifiers return a bare string.
type Prediction struct {
	Kind  PredictionKind
	Score SentimentScore
	Label string
}

// ScorePrediction wraps a score as a Prediction.
func ScorePrediction(s SentimentScore) Prediction {
	return Prediction{Kind: PredictionScore, Score: s}
}

// LabelPrediction wraps a raw label as a Prediction.
func LabelPrediction(label string) Prediction {
	return Prediction{Kind: PredictionLabel, Label: label}
}

func (p *Prediction) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("decode prediction: empty input")
	}
	switch data[0] {
	case '{':
		var s SentimentScore
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode prediction score: %w", err)
		}
		*p = ScorePrediction(s)
	case '"':
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return fmt.Errorf("decode prediction label: %w", err)
		}
		*p = LabelPrediction(label)
	default:
		// null, numbers, arrays: keep the raw text as a label
		*p = LabelPrediction(string(data))
	}
	return nil
}

func (p Prediction) MarshalJSON() ([]byte, error) {
	if p.Kind == PredictionLabel {
		return json.Marshal(p.Label)
	}
	return json.Marshal(p.Score)
}
