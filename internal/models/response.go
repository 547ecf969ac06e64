package models

import (
	"time"

	"github.com/google/uuid"
)

// Response is one respondent's submission to a questionnaire. Either
// AlumniID is set (internal submission) or the respondent contact fields
// are (public submission). Created atomically with its answers and never
// updated afterwards.
type Response struct {
	ID              uuid.UUID  `json:"id"`
	QuestionnaireID uuid.UUID  `json:"questionnaire_id"`
	AlumniID        *uuid.UUID `json:"alumni_id,omitempty"`
	RespondentName  string     `json:"respondent_name,omitempty"`
	RespondentEmail string     `json:"respondent_email,omitempty"`
	RespondentPhone string     `json:"respondent_phone,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Answer is one question's stored value within a response. Multi-choice
// values are JSON array strings; everything else is plain text.
type Answer struct {
	ID         uuid.UUID `json:"id"`
	ResponseID uuid.UUID `json:"response_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Value      string    `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
}
