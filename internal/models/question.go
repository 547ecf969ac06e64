package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType identifies how a question is rendered and answered.
type QuestionType string

const (
	TypeText     QuestionType = "text"
	TypeTextarea QuestionType = "textarea"
	TypeNumber   QuestionType = "number"
	TypeDate     QuestionType = "date"
	TypeRadio    QuestionType = "radio"
	TypeCheckbox QuestionType = "checkbox"
	TypeSelect   QuestionType = "select"
	TypeScale    QuestionType = "scale"
)

// ValidQuestionType reports whether t is a recognized question type.
func ValidQuestionType(t string) bool {
	switch QuestionType(t) {
	case TypeText, TypeTextarea, TypeNumber, TypeDate, TypeRadio, TypeCheckbox, TypeSelect, TypeScale:
		return true
	}
	return false
}

// Enumerable reports whether the type has a declared option set that can be
// tallied (as opposed to free-text types sampled for qualitative review).
func (t QuestionType) Enumerable() bool {
	switch t {
	case TypeRadio, TypeCheckbox, TypeSelect, TypeScale:
		return true
	}
	return false
}

// Question belongs to one questionnaire. Options is the ordered list of
// labels for enumerable types, nil for free-text types. DependsOn/DependsValue
// gate visibility and requiredness on another question's answer.
type Question struct {
	ID              uuid.UUID    `json:"id"`
	QuestionnaireID uuid.UUID    `json:"questionnaire_id"`
	Text            string       `json:"text"`
	Type            QuestionType `json:"type"`
	Options         []string     `json:"options,omitempty"`
	IsRequired      bool         `json:"is_required"`
	Order           int          `json:"order"`
	Section         int          `json:"section"`
	DependsOn       *uuid.UUID   `json:"depends_on,omitempty"`
	DependsValue    string       `json:"depends_value,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
