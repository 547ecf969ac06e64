package questions

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/internal/questionnaires"
	"github.com/unitracer/backend/pkg/response"
)

// UpsertRequest is the body for question create/update.
type UpsertRequest struct {
	Text         string     `json:"question_text" binding:"required"`
	Type         string     `json:"type" binding:"required"`
	Options      []string   `json:"options"`
	IsRequired   *bool      `json:"is_required"`
	Order        int        `json:"order" binding:"required,min=1"`
	Section      int        `json:"section" binding:"required,min=1"`
	DependsOn    *uuid.UUID `json:"depends_on"`
	DependsValue string     `json:"depends_value"`
}

// ReorderRequest is the body for the bulk reorder endpoint.
type ReorderRequest struct {
	Questions []ReorderItem `json:"questions" binding:"required,min=1,dive"`
}

// Handler handles question management endpoints.
type Handler struct {
	repo              *Repository
	questionnaireRepo *questionnaires.Repository
	logger            *zap.Logger
}

// NewHandler creates a questions handler.
func NewHandler(repo *Repository, questionnaireRepo *questionnaires.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, questionnaireRepo: questionnaireRepo, logger: logger}
}

func (h *Handler) validate(c *gin.Context, req *UpsertRequest) (*models.Question, bool) {
	fields := map[string]string{}
	if !models.ValidQuestionType(req.Type) {
		fields["type"] = "unknown question type"
	}
	qtype := models.QuestionType(req.Type)
	if qtype.Enumerable() && len(req.Options) == 0 {
		fields["options"] = "options are required for choice questions"
	}
	if req.DependsOn != nil {
		if _, err := h.repo.GetByID(c.Request.Context(), *req.DependsOn); err != nil {
			fields["depends_on"] = "dependency question not found"
		}
	}
	if len(fields) > 0 {
		response.ValidationFailed(c, fields)
		return nil, false
	}

	required := true
	if req.IsRequired != nil {
		required = *req.IsRequired
	}
	return &models.Question{
		Text:         req.Text,
		Type:         qtype,
		Options:      req.Options,
		IsRequired:   required,
		Order:        req.Order,
		Section:      req.Section,
		DependsOn:    req.DependsOn,
		DependsValue: req.DependsValue,
	}, true
}

// Create handles POST /admin/questionnaires/:id/questions.
func (h *Handler) Create(c *gin.Context) {
	questionnaireID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid questionnaire id")
		return
	}
	if _, err := h.questionnaireRepo.GetByID(c.Request.Context(), questionnaireID); err != nil {
		response.NotFound(c, "questionnaire not found")
		return
	}

	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"body": err.Error()})
		return
	}
	q, ok := h.validate(c, &req)
	if !ok {
		return
	}
	q.QuestionnaireID = questionnaireID

	if err := h.repo.Create(c.Request.Context(), q); err != nil {
		h.logger.Error("create question failed", zap.Error(err))
		response.Internal(c, "failed to create question")
		return
	}
	response.Created(c, q)
}

// Update handles PUT /admin/questions/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "question not found")
		return
	}

	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"body": err.Error()})
		return
	}
	q, ok := h.validate(c, &req)
	if !ok {
		return
	}
	q.ID = existing.ID
	q.QuestionnaireID = existing.QuestionnaireID

	if err := h.repo.Update(c.Request.Context(), q); err != nil {
		h.logger.Error("update question failed", zap.Error(err))
		response.Internal(c, "failed to update question")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), id)
	response.OK(c, updated)
}

// Delete handles DELETE /admin/questions/:id. Blocked when the question is
// the target of another question's dependency or already has answers.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "question not found")
		return
	}

	dependents, err := h.repo.DependentCount(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to delete question")
		return
	}
	if dependents > 0 {
		response.Unprocessable(c, "cannot delete a question that other questions depend on")
		return
	}

	answers, err := h.repo.AnswerCount(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to delete question")
		return
	}
	if answers > 0 {
		response.Unprocessable(c, "cannot delete a question that already has answers")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete question")
		return
	}
	response.OK(c, gin.H{"message": "question deleted"})
}

// Reorder handles POST /admin/questionnaires/:id/questions/reorder.
func (h *Handler) Reorder(c *gin.Context) {
	questionnaireID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid questionnaire id")
		return
	}
	if _, err := h.questionnaireRepo.GetByID(c.Request.Context(), questionnaireID); err != nil {
		response.NotFound(c, "questionnaire not found")
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"questions": "questions with id, order and section are required"})
		return
	}

	if err := h.repo.Reorder(c.Request.Context(), questionnaireID, req.Questions); err != nil {
		h.logger.Error("reorder questions failed", zap.Error(err))
		response.Unprocessable(c, "failed to reorder questions; all questions must belong to the questionnaire")
		return
	}
	response.OK(c, gin.H{"message": "question order updated"})
}
