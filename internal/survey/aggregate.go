package survey

import (
	"math"

	"github.com/unitracer/backend/internal/models"
)

// RecentSampleSize bounds the free-text answers returned per question.
const RecentSampleSize = 10

// OptionCount is one option's tally within a question's statistics.
type OptionCount struct {
	Option     string  `json:"option"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// QuestionStats holds per-question aggregation for reporting.
type QuestionStats struct {
	QuestionID string              `json:"question_id"`
	Text       string              `json:"text"`
	Type       models.QuestionType `json:"type"`
	Total      int                 `json:"total"`
	// Counts is present for enumerable types, ordered by the declared options.
	Counts []OptionCount `json:"counts,omitempty"`
	// Recent is a bounded sample of the latest answers for free-text types.
	Recent []string `json:"recent,omitempty"`
}

// Aggregate computes statistics for one question over its stored answer
// values, given in most-recent-first order.
//
// Enumerable types get a tally keyed by every declared option, initialized to
// zero so unselected options report as zero rather than being omitted.
// Multi-choice answers increment every selected element. Values not in the
// declared option set are ignored; legacy answers may predate option edits.
func Aggregate(q *models.Question, stored []string) QuestionStats {
	stats := QuestionStats{
		QuestionID: q.ID.String(),
		Text:       q.Text,
		Type:       q.Type,
		Total:      len(stored),
	}

	if !q.Type.Enumerable() {
		limit := len(stored)
		if limit > RecentSampleSize {
			limit = RecentSampleSize
		}
		for _, raw := range stored[:limit] {
			stats.Recent = append(stats.Recent, Decode(raw).Display())
		}
		return stats
	}

	counts := make(map[string]int, len(q.Options))
	for _, opt := range q.Options {
		counts[opt] = 0
	}
	for _, raw := range stored {
		for _, el := range Decode(raw).Elements() {
			if _, declared := counts[el]; declared {
				counts[el]++
			}
		}
	}

	stats.Counts = make([]OptionCount, 0, len(q.Options))
	for _, opt := range q.Options {
		stats.Counts = append(stats.Counts, OptionCount{
			Option:     opt,
			Count:      counts[opt],
			Percentage: Percentage(counts[opt], len(stored)),
		})
	}
	return stats
}

// Percentage returns part/total*100 rounded to one decimal, or 0 when total
// is zero. Never NaN.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
