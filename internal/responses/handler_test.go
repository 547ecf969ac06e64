package responses

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/pkg/response"
)

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("POST", "/", nil)
	return c, rec
}

func q(id uuid.UUID, qtype models.QuestionType, required bool) models.Question {
	return models.Question{ID: id, Type: qtype, IsRequired: required}
}

func TestBuildAnswersEncodesListsAndScalars(t *testing.T) {
	c, _ := testContext(t)
	textQ := q(uuid.New(), models.TypeText, true)
	checkQ := q(uuid.New(), models.TypeCheckbox, true)

	answers, ok := buildAnswers(c, []models.Question{textQ, checkQ}, map[string]json.RawMessage{
		textQ.ID.String():  json.RawMessage(`"Bekerja"`),
		checkQ.ID.String(): json.RawMessage(`["A","B"]`),
	})
	require.True(t, ok)
	require.Len(t, answers, 2)

	byQuestion := map[uuid.UUID]string{}
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.Value
	}
	assert.Equal(t, "Bekerja", byQuestion[textQ.ID])
	assert.Equal(t, `["A","B"]`, byQuestion[checkQ.ID])
}

func TestBuildAnswersRejectsMissingRequired(t *testing.T) {
	c, rec := testContext(t)
	required := q(uuid.New(), models.TypeText, true)
	optional := q(uuid.New(), models.TypeText, false)

	_, ok := buildAnswers(c, []models.Question{required, optional}, map[string]json.RawMessage{})
	require.False(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{required.ID.String()}, body.Missing)
}

func TestBuildAnswersSkipsInactiveRequired(t *testing.T) {
	c, _ := testContext(t)
	gate := q(uuid.New(), models.TypeRadio, true)
	gate.Options = []string{"Ya", "Tidak"}
	dependent := q(uuid.New(), models.TypeText, true)
	dependent.DependsOn = &gate.ID
	dependent.DependsValue = "Ya"

	// gate answered "Tidak", so the dependent question is inactive and its
	// required flag does not apply
	answers, ok := buildAnswers(c, []models.Question{gate, dependent}, map[string]json.RawMessage{
		gate.ID.String(): json.RawMessage(`"Tidak"`),
	})
	require.True(t, ok)
	require.Len(t, answers, 1)
	assert.Equal(t, gate.ID, answers[0].QuestionID)
}

func TestBuildAnswersDropsUnknownQuestions(t *testing.T) {
	c, _ := testContext(t)
	known := q(uuid.New(), models.TypeText, true)

	answers, ok := buildAnswers(c, []models.Question{known}, map[string]json.RawMessage{
		known.ID.String():   json.RawMessage(`"answer"`),
		uuid.New().String(): json.RawMessage(`"stray"`),
	})
	require.True(t, ok)
	assert.Len(t, answers, 1)
}

func TestBuildAnswersRejectsNonUUIDKeys(t *testing.T) {
	c, rec := testContext(t)

	_, ok := buildAnswers(c, nil, map[string]json.RawMessage{"first": json.RawMessage(`"x"`)})
	require.False(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestWriteSubmitErrorDuplicateConflict(t *testing.T) {
	c, rec := testContext(t)

	writeSubmitError(c, fmt.Errorf("insert response: %w", ErrDuplicateSubmission), zap.NewNop(), "you have already submitted this questionnaire")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "you have already submitted this questionnaire", body.Error)
}

func TestWriteSubmitErrorOpaqueOnOtherFailures(t *testing.T) {
	c, rec := testContext(t)

	writeSubmitError(c, errors.New("connection reset"), zap.NewNop(), "unused")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed to submit response", body.Error)
}

func TestParseValueShapes(t *testing.T) {
	v, err := parseValue(json.RawMessage(`"text"`))
	require.NoError(t, err)
	assert.False(t, v.IsList)
	assert.Equal(t, "text", v.Scalar)

	v, err = parseValue(json.RawMessage(`["A","B"]`))
	require.NoError(t, err)
	assert.True(t, v.IsList)
	assert.Equal(t, []string{"A", "B"}, v.List)

	v, err = parseValue(json.RawMessage(`4`))
	require.NoError(t, err)
	assert.Equal(t, "4", v.Scalar)

	_, err = parseValue(json.RawMessage(`{"nested":"object"}`))
	assert.Error(t, err)
}
