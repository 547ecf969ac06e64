package models

import (
	"time"

	"github.com/google/uuid"
)

// Employment statuses tracked for alumni.
const (
	StatusEmployed      = "Bekerja"
	StatusJobSeeking    = "Mencari Kerja"
	StatusEntrepreneur  = "Wirausaha"
	StatusFurtherStudy  = "Studi Lanjut"
	StatusNotYetWorking = "Belum Bekerja"
)

// ValidStatus reports whether s is a recognized employment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusEmployed, StatusJobSeeking, StatusEntrepreneur, StatusFurtherStudy, StatusNotYetWorking:
		return true
	}
	return false
}

// Alumni represents a graduate, distinct from their login account.
type Alumni struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	StudentNo   string     `json:"student_no"`
	FullName    string     `json:"full_name"`
	ProgramID   uuid.UUID  `json:"program_id"`
	YearID      uuid.UUID  `json:"year_id"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Status      string     `json:"status"`
	ProgramName string     `json:"program_name,omitempty"`
	YearName    string     `json:"year_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
