package export

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/internal/questionnaires"
	"github.com/unitracer/backend/internal/questions"
	"github.com/unitracer/backend/internal/responses"
	"github.com/unitracer/backend/internal/survey"
	"github.com/unitracer/backend/pkg/clock"
	"github.com/unitracer/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// Handler handles the admin export endpoints.
type Handler struct {
	questionnaireRepo *questionnaires.Repository
	questionRepo      *questions.Repository
	responseRepo      *responses.Repository
	clock             clock.Clock
	logger            *zap.Logger
}

// NewHandler creates an export handler.
func NewHandler(questionnaireRepo *questionnaires.Repository, questionRepo *questions.Repository, responseRepo *responses.Repository, clk clock.Clock, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Handler{
		questionnaireRepo: questionnaireRepo,
		questionRepo:      questionRepo,
		responseRepo:      responseRepo,
		clock:             clk,
		logger:            logger,
	}
}

// load resolves the questionnaire and its questions from either the :id
// route param or the questionnaire_id query param.
func (h *Handler) load(c *gin.Context) (*models.Questionnaire, []models.Question, bool) {
	raw := c.Param("id")
	if raw == "" {
		raw = c.Query("questionnaire_id")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(c, "a questionnaire id is required")
		return nil, nil, false
	}

	questionnaire, err := h.questionnaireRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "questionnaire not found")
		return nil, nil, false
	}
	questionList, err := h.questionRepo.ListByQuestionnaire(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load questions")
		return nil, nil, false
	}
	return questionnaire, questionList, true
}

func parseExportFilter(c *gin.Context) responses.ExportFilter {
	f := responses.ExportFilter{}
	if v := c.Query("program_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.ProgramID = &id
		}
	}
	if v := c.Query("year_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.YearID = &id
		}
	}
	return f
}

// filename builds a safe attachment name from the questionnaire title.
func filename(title, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		}
		return -1
	}, title)
	if name == "" {
		name = "questionnaire"
	}
	return name + "_responses." + ext
}

// Excel handles GET /admin/questionnaires/:id/export/excel and
// GET /admin/export/excel?questionnaire_id=. Streams the response matrix as
// an .xlsx attachment; program_id and year_id narrow the rows.
func (h *Handler) Excel(c *gin.Context) {
	questionnaire, questionList, ok := h.load(c)
	if !ok {
		return
	}
	rows, err := h.responseRepo.ListForExport(c.Request.Context(), questionnaire.ID, parseExportFilter(c))
	if err != nil {
		h.logger.Error("load export rows failed", zap.Error(err))
		response.Internal(c, "failed to export responses")
		return
	}

	var buf bytes.Buffer
	if err := WriteExcel(&buf, questionnaire, questionList, rows); err != nil {
		h.logger.Error("render excel export failed", zap.Error(err))
		response.Internal(c, "failed to export responses")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename(questionnaire.Title, "xlsx")))
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// PDF handles GET /admin/questionnaires/:id/export/pdf and
// GET /admin/export/pdf?questionnaire_id=. Streams the aggregated results
// report as a PDF attachment.
func (h *Handler) PDF(c *gin.Context) {
	questionnaire, questionList, ok := h.load(c)
	if !ok {
		return
	}

	stats := make([]survey.QuestionStats, 0, len(questionList))
	for i := range questionList {
		values, err := h.responseRepo.ValuesByQuestion(c.Request.Context(), questionList[i].ID)
		if err != nil {
			h.logger.Error("load answer values failed", zap.Error(err))
			response.Internal(c, "failed to export results")
			return
		}
		stats = append(stats, survey.Aggregate(&questionList[i], values))
	}
	total, err := h.responseRepo.CountByQuestionnaire(c.Request.Context(), questionnaire.ID)
	if err != nil {
		response.Internal(c, "failed to export results")
		return
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, questionnaire, total, stats, h.clock.Now()); err != nil {
		h.logger.Error("render pdf export failed", zap.Error(err))
		response.Internal(c, "failed to export results")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename(questionnaire.Title, "pdf")))
	c.Data(http.StatusOK, contentTypePDF, buf.Bytes())
}
