package survey

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/unitracer/backend/internal/models"
)

func TestActiveWithoutDependency(t *testing.T) {
	q := &models.Question{ID: uuid.New()}
	assert.True(t, Active(q, nil))
	assert.True(t, Active(q, map[uuid.UUID]string{}))
}

func TestActiveDependencyMatch(t *testing.T) {
	parent := uuid.New()
	q := &models.Question{ID: uuid.New(), DependsOn: &parent, DependsValue: "Bekerja"}

	assert.True(t, Active(q, map[uuid.UUID]string{parent: "Bekerja"}))
	assert.False(t, Active(q, map[uuid.UUID]string{parent: "Wirausaha"}))
	assert.False(t, Active(q, map[uuid.UUID]string{parent: "bekerja"}), "comparison is exact string equality")
	assert.False(t, Active(q, map[uuid.UUID]string{}), "unanswered dependency leaves question inactive")
}

func TestMissingRequired(t *testing.T) {
	q1 := models.Question{ID: uuid.New(), IsRequired: true}
	q2 := models.Question{ID: uuid.New(), IsRequired: true}
	q3 := models.Question{ID: uuid.New(), IsRequired: false}
	questions := []models.Question{q1, q2, q3}

	missing := MissingRequired(questions, map[uuid.UUID]string{q1.ID: "x"})
	assert.Equal(t, []uuid.UUID{q2.ID}, missing)

	missing = MissingRequired(questions, map[uuid.UUID]string{q1.ID: "x", q2.ID: "y"})
	assert.Empty(t, missing)
}

func TestMissingRequiredSkipsInactiveDependent(t *testing.T) {
	parent := models.Question{ID: uuid.New(), IsRequired: true}
	dependent := models.Question{
		ID:           uuid.New(),
		IsRequired:   true,
		DependsOn:    &parent.ID,
		DependsValue: "Ya",
	}
	questions := []models.Question{parent, dependent}

	// Dependency answered with a non-matching value: the dependent question
	// is inactive and its required check is skipped.
	missing := MissingRequired(questions, map[uuid.UUID]string{parent.ID: "Tidak"})
	assert.Empty(t, missing)

	// Matching value activates the dependent question.
	missing = MissingRequired(questions, map[uuid.UUID]string{parent.ID: "Ya"})
	assert.Equal(t, []uuid.UUID{dependent.ID}, missing)
}
