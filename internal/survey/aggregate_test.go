package survey

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitracer/backend/internal/models"
)

func TestAggregateSingleChoice(t *testing.T) {
	q := &models.Question{
		ID:      uuid.New(),
		Text:    "Status pekerjaan",
		Type:    models.TypeRadio,
		Options: []string{"A", "B", "C"},
	}
	stats := Aggregate(q, []string{"A", "A", "B"})

	require.Len(t, stats.Counts, 3)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, OptionCount{Option: "A", Count: 2, Percentage: 66.7}, stats.Counts[0])
	assert.Equal(t, OptionCount{Option: "B", Count: 1, Percentage: 33.3}, stats.Counts[1])
	assert.Equal(t, OptionCount{Option: "C", Count: 0, Percentage: 0}, stats.Counts[2])
}

func TestAggregateZeroResponses(t *testing.T) {
	q := &models.Question{
		ID:      uuid.New(),
		Type:    models.TypeSelect,
		Options: []string{"A", "B"},
	}
	stats := Aggregate(q, nil)

	assert.Equal(t, 0, stats.Total)
	for _, oc := range stats.Counts {
		assert.Equal(t, 0, oc.Count)
		assert.Equal(t, 0.0, oc.Percentage)
	}
}

func TestAggregateMultiChoiceCountsEveryElement(t *testing.T) {
	q := &models.Question{
		ID:      uuid.New(),
		Type:    models.TypeCheckbox,
		Options: []string{"A", "B", "C"},
	}
	stats := Aggregate(q, []string{`["A","B"]`, `["A"]`})

	assert.Equal(t, 2, stats.Counts[0].Count) // A
	assert.Equal(t, 1, stats.Counts[1].Count) // B
	assert.Equal(t, 0, stats.Counts[2].Count) // C
	assert.Equal(t, 100.0, stats.Counts[0].Percentage)
	assert.Equal(t, 50.0, stats.Counts[1].Percentage)
}

func TestAggregateIgnoresUndeclaredValues(t *testing.T) {
	// Options edited after answers were collected: stray values are dropped,
	// not errored on and not surfaced.
	q := &models.Question{
		ID:      uuid.New(),
		Type:    models.TypeRadio,
		Options: []string{"A"},
	}
	stats := Aggregate(q, []string{"A", "RemovedOption"})

	require.Len(t, stats.Counts, 1)
	assert.Equal(t, 1, stats.Counts[0].Count)
	assert.Equal(t, 2, stats.Total)
}

func TestAggregateDecodesQuotedScalars(t *testing.T) {
	q := &models.Question{
		ID:      uuid.New(),
		Type:    models.TypeRadio,
		Options: []string{"A", "B"},
	}
	stats := Aggregate(q, []string{`"A"`, "B"})

	assert.Equal(t, 1, stats.Counts[0].Count)
	assert.Equal(t, 1, stats.Counts[1].Count)
}

func TestAggregateFreeTextRecentSample(t *testing.T) {
	q := &models.Question{ID: uuid.New(), Type: models.TypeTextarea}

	var stored []string
	for i := 0; i < RecentSampleSize+5; i++ {
		stored = append(stored, fmt.Sprintf("answer %d", i))
	}
	stats := Aggregate(q, stored)

	assert.Nil(t, stats.Counts)
	require.Len(t, stats.Recent, RecentSampleSize)
	assert.Equal(t, "answer 0", stats.Recent[0], "input order (most recent first) is preserved")
	assert.Equal(t, len(stored), stats.Total)
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		part, total int
		want        float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 1, 100},
		{1, 8, 12.5},
		{0, 10, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.part, tt.total), "Percentage(%d, %d)", tt.part, tt.total)
	}
}
