package responses

import (
	"encoding/json"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/internal/questionnaires"
	"github.com/unitracer/backend/internal/questions"
	"github.com/unitracer/backend/pkg/clock"
	"github.com/unitracer/backend/pkg/response"
)

// PublicSubmitRequest is the body for unauthenticated submission. The
// respondent identifies themselves by name and email; email is the
// duplicate-submission key.
type PublicSubmitRequest struct {
	RespondentName  string                     `json:"respondent_name" binding:"required,max=255"`
	RespondentEmail string                     `json:"respondent_email" binding:"required,max=255"`
	RespondentPhone string                     `json:"respondent_phone" binding:"max=50"`
	Answers         map[string]json.RawMessage `json:"answers" binding:"required"`
}

// PublicHandler handles the unauthenticated questionnaire endpoints. Only
// questionnaires flagged public and active are reachable here.
type PublicHandler struct {
	repo              *Repository
	questionnaireRepo *questionnaires.Repository
	questionRepo      *questions.Repository
	clock             clock.Clock
	logger            *zap.Logger
}

// NewPublicHandler creates a public responses handler.
func NewPublicHandler(repo *Repository, questionnaireRepo *questionnaires.Repository, questionRepo *questions.Repository, clk clock.Clock, logger *zap.Logger) *PublicHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &PublicHandler{
		repo:              repo,
		questionnaireRepo: questionnaireRepo,
		questionRepo:      questionRepo,
		clock:             clk,
		logger:            logger,
	}
}

// List handles GET /public/questionnaires. Returns public active
// questionnaires with an is_open flag so closed ones can be rendered as such.
func (h *PublicHandler) List(c *gin.Context) {
	list, err := h.questionnaireRepo.ListPublic(c.Request.Context())
	if err != nil {
		h.logger.Error("list public questionnaires failed", zap.Error(err))
		response.Internal(c, "failed to list questionnaires")
		return
	}

	now := h.clock.Now()
	items := make([]gin.H, 0, len(list))
	for i := range list {
		items = append(items, gin.H{"questionnaire": list[i], "is_open": list[i].IsOpen(now)})
	}
	response.OK(c, gin.H{"questionnaires": items})
}

// Show handles GET /public/questionnaires/:id. Non-public or inactive
// questionnaires are indistinguishable from missing ones.
func (h *PublicHandler) Show(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid questionnaire id")
		return
	}
	questionnaire, err := h.questionnaireRepo.GetPublicByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "questionnaire not found")
		return
	}

	questionList, err := h.questionRepo.ListByQuestionnaire(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load questions")
		return
	}
	response.OK(c, gin.H{
		"questionnaire": questionnaire,
		"questions":     questionList,
		"is_open":       questionnaire.IsOpen(h.clock.Now()),
	})
}

// Submit handles POST /public/questionnaires/:id/submit.
func (h *PublicHandler) Submit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid questionnaire id")
		return
	}
	questionnaire, err := h.questionnaireRepo.GetPublicByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "questionnaire not found")
		return
	}
	if !questionnaire.IsOpen(h.clock.Now()) {
		response.Forbidden(c, "questionnaire is not open")
		return
	}

	var req PublicSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"body": "respondent_name, respondent_email and answers are required"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.RespondentEmail))
	if _, err := mail.ParseAddress(email); err != nil {
		response.ValidationFailed(c, map[string]string{"respondent_email": "a valid email address is required"})
		return
	}

	duplicate, err := h.repo.HasPublicResponse(c.Request.Context(), id, email)
	if err != nil {
		response.Internal(c, "failed to submit response")
		return
	}
	if duplicate {
		response.Unprocessable(c, "a response with this email has already been submitted")
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
		RespondentName:  strings.TrimSpace(req.RespondentName),
		RespondentEmail: email,
		RespondentPhone: strings.TrimSpace(req.RespondentPhone),
		SubmittedAt:     &now,
	}
	if err := h.repo.CreateWithAnswers(c.Request.Context(), resp, answers); err != nil {
		writeSubmitError(c, err, h.logger, "a response with this email has already been submitted")
		return
	}
	response.Created(c, gin.H{"response_id": resp.ID, "submitted_at": resp.SubmittedAt})
}
