package models

import (
	"time"

	"github.com/google/uuid"
)

// Faculty groups study programs.
type Faculty struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Program is a study program alumni graduated from.
type Program struct {
	ID          uuid.UUID `json:"id"`
	FacultyID   uuid.UUID `json:"faculty_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	FacultyName string    `json:"faculty_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AcademicYear is a graduation cohort / questionnaire period.
type AcademicYear struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuestionnaireType categorizes questionnaires (e.g. tracer study, employer survey).
type QuestionnaireType struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
