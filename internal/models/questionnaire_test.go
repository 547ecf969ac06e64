package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestIsOpenWithinWindow(t *testing.T) {
	q := Questionnaire{
		IsActive:  true,
		StartDate: date(2026, time.March, 1),
		EndDate:   date(2026, time.March, 31),
	}

	assert.False(t, q.IsOpen(time.Date(2026, time.February, 28, 23, 59, 0, 0, time.UTC)))
	assert.True(t, q.IsOpen(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, q.IsOpen(time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)))
	// open through the whole end date, not just its midnight
	assert.True(t, q.IsOpen(time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, q.IsOpen(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDateOfTruncatesToMidnightUTC(t *testing.T) {
	got := DateOf(time.Date(2026, time.March, 31, 23, 59, 59, 123, time.UTC))
	assert.Equal(t, time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), got)

	// Already-truncated values pass through unchanged, so SQL open-window
	// predicates see the same calendar date IsOpen compares against.
	assert.Equal(t, got, DateOf(got))
}

func TestIsOpenInactiveOverridesWindow(t *testing.T) {
	q := Questionnaire{
		IsActive:  false,
		StartDate: date(2026, time.March, 1),
		EndDate:   date(2026, time.March, 31),
	}
	assert.False(t, q.IsOpen(time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)))
}

func TestIsOpenNilDates(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	open := Questionnaire{IsActive: true}
	assert.True(t, open.IsOpen(now), "no window means always open while active")

	startOnly := Questionnaire{IsActive: true, StartDate: date(2026, time.March, 20)}
	assert.False(t, startOnly.IsOpen(now))

	endOnly := Questionnaire{IsActive: true, EndDate: date(2026, time.March, 10)}
	assert.False(t, endOnly.IsOpen(now))
}
