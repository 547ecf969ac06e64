package responses

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/unitracer/backend/internal/auth"
	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/internal/questionnaires"
	"github.com/unitracer/backend/internal/questions"
	"github.com/unitracer/backend/internal/survey"
	"github.com/unitracer/backend/pkg/clock"
	"github.com/unitracer/backend/pkg/pagination"
	"github.com/unitracer/backend/pkg/response"
)

var listParams = pagination.Params{
	DefaultPerPage: 15,
	DefaultSortBy:  "created_at",
	AllowedSorts: map[string]string{
		"title":      "q.title",
		"year":       "y.name",
		"created_at": "q.created_at",
	},
}

// SubmitRequest is the body for questionnaire submission. Answers are keyed
// by question ID; each value is either a string or an array of selected
// option labels.
type SubmitRequest struct {
	Answers map[string]json.RawMessage `json:"answers" binding:"required"`
}

// Handler handles the alumni-facing questionnaire endpoints.
type Handler struct {
	repo              *Repository
	questionnaireRepo *questionnaires.Repository
	questionRepo      *questions.Repository
	authRepo          *auth.Repository
	clock             clock.Clock
	logger            *zap.Logger
}

// NewHandler creates an alumni responses handler.
func NewHandler(repo *Repository, questionnaireRepo *questionnaires.Repository, questionRepo *questions.Repository, authRepo *auth.Repository, clk clock.Clock, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Handler{
		repo:              repo,
		questionnaireRepo: questionnaireRepo,
		questionRepo:      questionRepo,
		authRepo:          authRepo,
		clock:             clk,
		logger:            logger,
	}
}

// alumniIdentity resolves the authenticated user's alumni record. Users
// without one cannot use alumni endpoints, whatever their role.
func (h *Handler) alumniIdentity(c *gin.Context) (*models.Alumni, bool) {
	claims := auth.ClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "missing user context")
		return nil, false
	}
	alumni, err := h.authRepo.GetAlumniByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Forbidden(c, "no alumni profile linked to this account")
			return nil, false
		}
		h.logger.Error("load alumni identity failed", zap.Error(err))
		response.Internal(c, "failed to load alumni profile")
		return nil, false
	}
	return alumni, true
}

// Counts handles GET /alumni/questionnaires/counts. Returns how many open
// questionnaires the alumni is eligible for and how many are done.
func (h *Handler) Counts(c *gin.Context) {
	alumni, ok := h.alumniIdentity(c)
	if !ok {
		return
	}
	total, completed, err := h.questionnaireRepo.CountsForAlumni(c.Request.Context(), h.clock.Now(), alumni.ProgramID, alumni.ID)
	if err != nil {
		h.logger.Error("count questionnaires failed", zap.Error(err))
		response.Internal(c, "failed to count questionnaires")
		return
	}
	response.OK(c, gin.H{"total": total, "completed": completed, "pending": total - completed})
}

// List handles GET /alumni/questionnaires. Lists open questionnaires the
// alumni's program is eligible for, with a has_submitted flag per item.
// status=completed|pending filters on submission state.
func (h *Handler) List(c *gin.Context) {
	alumni, ok := h.alumniIdentity(c)
	if !ok {
		return
	}
	q := pagination.Parse(c, listParams)
	status := c.Query("status")

	list, total, err := h.questionnaireRepo.ListOpenForAlumni(c.Request.Context(), h.clock.Now(), alumni.ProgramID, alumni.ID, q, status)
	if err != nil {
		h.logger.Error("list questionnaires failed", zap.Error(err))
		response.Internal(c, "failed to list questionnaires")
		return
	}
	response.OK(c, gin.H{"questionnaires": list, "meta": pagination.NewMeta(q, total)})
}

// Show handles GET /alumni/questionnaires/:id. Returns the questionnaire
// with its questions and, when already submitted, the decoded answers.
// Closed questionnaires are only visible to alumni who submitted while open.
func (h *Handler) Show(c *gin.Context) {
	alumni, ok := h.alumniIdentity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid questionnaire id")
		return
	}

	questionnaire, err := h.questionnaireRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "questionnaire not found")
		return
	}
	eligible, err := h.questionnaireRepo.EligibleForProgram(c.Request.Context(), id, alumni.ProgramID)
	if err != nil {
		response.Internal(c, "failed to load questionnaire")
		return
	}
	if !eligible {
		response.Forbidden(c, "this questionnaire is not available for your study program")
		return
	}

	submitted, err := h.repo.HasAlumniResponse(c.Request.Context(), id, alumni.ID)
	if err != nil {
		response.Internal(c, "failed to load questionnaire")
		return
	}
	if !questionnaire.IsOpen(h.clock.Now()) && !submitted {
		response.Forbidden(c, "questionnaire is not open")
		return
	}
	questionnaire.HasSubmitted = submitted

	questionList, err := h.questionRepo.ListByQuestionnaire(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load questions")
		return
	}

	body := gin.H{"questionnaire": questionnaire, "questions": questionList}
	if submitted {
		_, answers, err := h.repo.GetAlumniResponse(c.Request.Context(), id, alumni.ID)
		if err != nil {
			response.Internal(c, "failed to load submitted answers")
			return
		}
		body["submitted_answers"] = decodeAnswers(answers)
	}
	response.OK(c, body)
}

// decodeAnswers maps question ID to the decoded answer value: a string for
// scalars, a string slice for multi-choice.
func decodeAnswers(answers []models.Answer) map[string]interface{} {
	out := make(map[string]interface{}, len(answers))
	for _, a := range answers {
		v := survey.Decode(a.Value)
		if v.IsList {
			out[a.QuestionID.String()] = v.List
		} else {
			out[a.QuestionID.String()] = v.Scalar
		}
	}
	return out
}

// Submit handles POST /alumni/questionnaires/:id/submit.
func (h *Handler) Submit(c *gin.Context) {
	alumni, ok := h.alumniIdentity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid questionnaire id")
		return
	}

	questionnaire, err := h.questionnaireRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "questionnaire not found")
		return
	}
	if !questionnaire.IsOpen(h.clock.Now()) {
		response.Forbidden(c, "questionnaire is not open")
		return
	}
	eligible, err := h.questionnaireRepo.EligibleForProgram(c.Request.Context(), id, alumni.ProgramID)
	if err != nil {
		response.Internal(c, "failed to submit response")
		return
	}
	if !eligible {
		response.Forbidden(c, "this questionnaire is not available for your study program")
		return
	}

	submitted, err := h.repo.HasAlumniResponse(c.Request.Context(), id, alumni.ID)
	if err != nil {
		response.Internal(c, "failed to submit response")
		return
	}
	if submitted {
		response.Unprocessable(c, "you have already submitted this questionnaire")
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"answers": "answers object is required"})
		return
	}

	questionList, err := h.questionRepo.ListByQuestionnaire(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to submit response")
		return
	}

	answers, ok := buildAnswers(c, questionList, req.Answers)
	if !ok {
		return
	}

	now := h.clock.Now()
	resp := &models.Response{
		QuestionnaireID: id,
		AlumniID:        &alumni.ID,
		SubmittedAt:     &now,
	}
	if err := h.repo.CreateWithAnswers(c.Request.Context(), resp, answers); err != nil {
		writeSubmitError(c, err, h.logger, "you have already submitted this questionnaire")
		return
	}
	response.Created(c, gin.H{"response_id": resp.ID, "submitted_at": resp.SubmittedAt})
}

// writeSubmitError maps a CreateWithAnswers failure to the API response. A
// duplicate lost the insert race against the unique index and is a
// business-rule conflict; anything else stays opaque to the caller.
func writeSubmitError(c *gin.Context, err error, logger *zap.Logger, duplicateMsg string) {
	if errors.Is(err, ErrDuplicateSubmission) {
		response.Unprocessable(c, duplicateMsg)
		return
	}
	logger.Error("create response failed", zap.Error(err))
	response.Internal(c, "failed to submit response")
}

// buildAnswers validates the submitted answer set against the question list
// and encodes it for storage. Answers to unknown questions are dropped.
// Missing active required questions reject the whole submission.
func buildAnswers(c *gin.Context, questionList []models.Question, raw map[string]json.RawMessage) ([]models.Answer, bool) {
	byID := make(map[uuid.UUID]*models.Question, len(questionList))
	for i := range questionList {
		byID[questionList[i].ID] = &questionList[i]
	}

	encoded := make(map[uuid.UUID]string, len(raw))
	for key, value := range raw {
		qid, err := uuid.Parse(key)
		if err != nil {
			response.ValidationFailed(c, map[string]string{"answers": "answer keys must be question ids"})
			return nil, false
		}
		if _, known := byID[qid]; !known {
			continue
		}
		v, err := parseValue(value)
		if err != nil {
			response.ValidationFailed(c, map[string]string{"answers": "answer values must be strings or arrays of strings"})
			return nil, false
		}
		stored, err := survey.Encode(v)
		if err != nil {
			response.Internal(c, "failed to encode answers")
			return nil, false
		}
		encoded[qid] = stored
	}

	if missing := survey.MissingRequired(questionList, encoded); len(missing) > 0 {
		ids := make([]string, len(missing))
		for i, id := range missing {
			ids[i] = id.String()
		}
		response.MissingRequired(c, "required questions are unanswered", ids)
		return nil, false
	}

	answers := make([]models.Answer, 0, len(encoded))
	for i := range questionList {
		stored, ok := encoded[questionList[i].ID]
		if !ok {
			continue
		}
		answers = append(answers, models.Answer{QuestionID: questionList[i].ID, Value: stored})
	}
	return answers, true
}

// parseValue accepts a JSON string or array of strings.
func parseValue(raw json.RawMessage) (survey.Value, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return survey.ListValue(list), nil
	}
	var scalar string
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return survey.ScalarValue(scalar), nil
	}
	// numbers and booleans arrive as bare JSON literals
	var anyValue interface{}
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return survey.Value{}, err
	}
	switch anyValue.(type) {
	case float64, bool:
		return survey.ScalarValue(string(raw)), nil
	}
	return survey.Value{}, errInvalidAnswer
}

var errInvalidAnswer = errors.New("invalid answer value")
