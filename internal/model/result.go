package model

import (
	"encoding/json"
	"log"
)

// DetailedPrediction is one scored article. Yahoo fills Title/URL/
// ContentPreview; general news fills ArticleTitle/ArticleURL/Text.
type DetailedPrediction struct {
	Title          string         `json:"title,omitempty"`
	URL            string         `json:"url,omitempty"`
	Source         string         `json:"source,omitempty"`
	ContentPreview string         `json:"content_preview,omitempty"`
	ArticleTitle   string         `json:"article_title,omitempty"`
	ArticleURL     string         `json:"article_url,omitempty"`
	Text           string         `json:"text,omitempty"`
	PublishedAt    string         `json:"publishedAt,omitempty"`
	Prediction     SentimentScore `json:"prediction"`
}

// UnmarshalJSON reads a prediction that is not a score object as a zero score.
func (d *DetailedPrediction) UnmarshalJSON(data []byte) error {
	type plain DetailedPrediction
	var raw struct {
		plain
		Prediction json.RawMessage `json:"prediction"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = DetailedPrediction(raw.plain)
	if len(raw.Prediction) > 0 {
		if err := json.Unmarshal(raw.Prediction, &d.Prediction); err != nil {
			d.Prediction = SentimentScore{}
		}
	}
	return nil
}

// SourceResult is the common response shape of the sentiment endpoints.
// DetailedPredictions is nil when the backend omitted the list.
type SourceResult struct {
	Ticker              string               `json:"ticker,omitempty"`
	Classifier          string               `json:"classifier,omitempty"`
	Count               int                  `json:"count,omitempty"`
	AverageSentiment    *SentimentScore      `json:"average_sentiment,omitempty"`
	DetailedPredictions []DetailedPrediction `json:"detailed_predictions,omitempty"`
	Predictions         []Prediction         `json:"predictions,omitempty"`
}

// UnmarshalJSON decodes the item lists leniently: a list that cannot be
// decoded is left nil so the average still loads and only the detail panel
// reports missing data.
func (r *SourceResult) UnmarshalJSON(data []byte) error {
	type plain SourceResult
	var raw struct {
		plain
		DetailedPredictions json.RawMessage `json:"detailed_predictions"`
		Predictions         json.RawMessage `json:"predictions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = SourceResult(raw.plain)
	r.DetailedPredictions = decodeList[DetailedPrediction]("detailed_predictions", raw.DetailedPredictions)
	r.Predictions = decodeList[Prediction]("predictions", raw.Predictions)
	return nil
}

func decodeList[T any](field string, data json.RawMessage) []T {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		log.Printf("[WARN] ignoring malformed %s: %v", field, err)
		return nil
	}
	return out
}

// RedditTexts is the response of the raw Reddit fetch endpoint.
type RedditTexts struct {
	Texts []string `json:"texts"`
}
