package dashboard

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/internal/questionnaires"
	"github.com/unitracer/backend/internal/questions"
	"github.com/unitracer/backend/internal/responses"
	"github.com/unitracer/backend/internal/survey"
	"github.com/unitracer/backend/pkg/clock"
	"github.com/unitracer/backend/pkg/pagination"
	"github.com/unitracer/backend/pkg/response"
)

// Handler handles admin reporting endpoints: the dashboard summary and
// per-questionnaire results.
type Handler struct {
	repo              *Repository
	questionnaireRepo *questionnaires.Repository
	questionRepo      *questions.Repository
	responseRepo      *responses.Repository
	clock             clock.Clock
	logger            *zap.Logger
}

// NewHandler creates a dashboard handler.
func NewHandler(repo *Repository, questionnaireRepo *questionnaires.Repository, questionRepo *questions.Repository, responseRepo *responses.Repository, clk clock.Clock, logger *zap.Logger) *Handler {
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
		responseRepo:      responseRepo,
		clock:             clk,
		logger:            logger,
	}
}

func parseFilter(c *gin.Context) Filter {
	f := Filter{}
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
	if v := c.Query("questionnaire_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.QuestionnaireID = &id
		}
	}
	return f
}

// Summary handles GET /admin/dashboard. Returns headline totals, response
// rate and per-program / per-cohort breakdowns. Filters: program_id,
// year_id, questionnaire_id.
func (h *Handler) Summary(c *gin.Context) {
	f := parseFilter(c)
	ctx := c.Request.Context()

	totals, err := h.repo.Totals(ctx, h.clock.Now(), f)
	if err != nil {
		h.logger.Error("dashboard totals failed", zap.Error(err))
		response.Internal(c, "failed to load dashboard")
		return
	}

	byProgram, err := h.repo.ByProgram(ctx, f)
	if err != nil {
		h.logger.Error("dashboard program breakdown failed", zap.Error(err))
		response.Internal(c, "failed to load dashboard")
		return
	}
	byYear, err := h.repo.ByYear(ctx, f)
	if err != nil {
		h.logger.Error("dashboard year breakdown failed", zap.Error(err))
		response.Internal(c, "failed to load dashboard")
		return
	}
	for i := range byProgram {
		byProgram[i].Percentage = survey.Percentage(byProgram[i].Responded, byProgram[i].Alumni)
	}
	for i := range byYear {
		byYear[i].Percentage = survey.Percentage(byYear[i].Responded, byYear[i].Alumni)
	}

	stats, err := h.questionnaireStats(c, f)
	if err != nil {
		h.logger.Error("dashboard questionnaire stats failed", zap.Error(err))
		response.Internal(c, "failed to load dashboard")
		return
	}

	response.OK(c, gin.H{
		"totals":         totals,
		"response_rate":  survey.Percentage(totals.Respondents, totals.Alumni),
		"by_program":     byProgram,
		"by_year":        byYear,
		"questionnaires": stats,
	})
}

// questionnaireStats lists questionnaires with their response counts and an
// is_open flag, newest first.
func (h *Handler) questionnaireStats(c *gin.Context, f Filter) ([]gin.H, error) {
	listFilter := questionnaires.Filter{YearID: f.YearID}
	q := pagination.Query{Page: 1, PerPage: pagination.MaxPerPage, SortBy: "q.created_at", SortOrder: "desc"}

	var list []models.Questionnaire
	if f.QuestionnaireID != nil {
		one, err := h.questionnaireRepo.GetByID(c.Request.Context(), *f.QuestionnaireID)
		if err != nil {
			return nil, err
		}
		list = []models.Questionnaire{*one}
	} else {
		var err error
		list, _, err = h.questionnaireRepo.List(c.Request.Context(), q, listFilter)
		if err != nil {
			return nil, err
		}
	}

	now := h.clock.Now()
	stats := make([]gin.H, 0, len(list))
	for i := range list {
		stats = append(stats, gin.H{
			"questionnaire": list[i],
			"is_open":       list[i].IsOpen(now),
		})
	}
	return stats, nil
}

// Results handles GET /admin/questionnaires/:id/results. Aggregates every
// question of the questionnaire: option tallies with percentages for choice
// questions, a recent-answer sample for free-text ones.
func (h *Handler) Results(c *gin.Context) {
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

	questionList, err := h.questionRepo.ListByQuestionnaire(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load results")
		return
	}

	stats := make([]survey.QuestionStats, 0, len(questionList))
	for i := range questionList {
		values, err := h.responseRepo.ValuesByQuestion(c.Request.Context(), questionList[i].ID)
		if err != nil {
			h.logger.Error("load answer values failed", zap.Error(err))
			response.Internal(c, "failed to load results")
			return
		}
		stats = append(stats, survey.Aggregate(&questionList[i], values))
	}

	total, err := h.responseRepo.CountByQuestionnaire(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load results")
		return
	}

	response.OK(c, gin.H{
		"questionnaire":   questionnaire,
		"total_responses": total,
		"is_open":         questionnaire.IsOpen(h.clock.Now()),
		"results":         stats,
	})
}
