package survey

import (
	"github.com/google/uuid"

	"github.com/unitracer/backend/internal/models"
)

// Active reports whether a question is shown and enforced given the answers
// collected so far. A question with no dependency is always active; one with
// depends_on is active iff the stored answer to that question equals
// depends_value exactly. Only one level of dependency is supported.
func Active(q *models.Question, answers map[uuid.UUID]string) bool {
	if q.DependsOn == nil {
		return true
	}
	return answers[*q.DependsOn] == q.DependsValue
}

// MissingRequired returns the IDs of required questions that are active under
// the submitted answer set but absent from it. Inactive required questions
// are skipped.
func MissingRequired(questions []models.Question, answers map[uuid.UUID]string) []uuid.UUID {
	var missing []uuid.UUID
	for i := range questions {
		q := &questions[i]
		if !q.IsRequired || !Active(q, answers) {
			continue
		}
		if _, ok := answers[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	return missing
}
