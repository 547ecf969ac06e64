package models

import (
	"time"

	"github.com/google/uuid"
)

// Questionnaire is a time-boxed survey instance composed of ordered questions.
type Questionnaire struct {
	ID          uuid.UUID  `json:"id"`
	TypeID      uuid.UUID  `json:"type_id"`
	YearID      uuid.UUID  `json:"year_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IsMandatory bool       `json:"is_mandatory"`
	IsActive    bool       `json:"is_active"`
	IsPublic    bool       `json:"is_public"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`

	TypeName       string `json:"type_name,omitempty"`
	YearName       string `json:"year_name,omitempty"`
	QuestionsCount int    `json:"questions_count,omitempty"`
	ResponsesCount int    `json:"responses_count,omitempty"`
	HasSubmitted   bool   `json:"has_submitted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOpen reports whether the questionnaire accepts submissions at the given
// time: active and the date falls within [start_date, end_date]. Comparison
// is by calendar date, so a questionnaire stays open through its end date.
func (q *Questionnaire) IsOpen(now time.Time) bool {
	if !q.IsActive {
		return false
	}
	today := DateOf(now)
	if q.StartDate != nil && today.Before(DateOf(*q.StartDate)) {
		return false
	}
	if q.EndDate != nil && today.After(DateOf(*q.EndDate)) {
		return false
	}
	return true
}

// DateOf truncates t to its calendar date in UTC. The SQL open-window
// predicates compare against a DateOf value so listings, counts and IsOpen
// agree through the whole end date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
