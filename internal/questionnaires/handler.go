package questionnaires

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/internal/qtypes"
	"github.com/unitracer/backend/internal/years"
	"github.com/unitracer/backend/pkg/clock"
	"github.com/unitracer/backend/pkg/pagination"
	"github.com/unitracer/backend/pkg/response"
)

const dateLayout = "2006-01-02"

var listParams = pagination.Params{
	DefaultPerPage: 10,
	DefaultSortBy:  "created_at",
	AllowedSorts: map[string]string{
		"title":      "q.title",
		"created_at": "q.created_at",
		"start_date": "q.start_date",
		"end_date":   "q.end_date",
	},
}

// UpsertRequest is the body for questionnaire create/update. Dates are
// calendar dates in YYYY-MM-DD form. ProgramIDs is the eligible-program set;
// empty means open to every program.
type UpsertRequest struct {
	TypeID      uuid.UUID   `json:"type_id" binding:"required"`
	YearID      uuid.UUID   `json:"year_id" binding:"required"`
	Title       string      `json:"title" binding:"required,max=255"`
	Description string      `json:"description"`
	IsMandatory bool        `json:"is_mandatory"`
	IsActive    bool        `json:"is_active"`
	IsPublic    bool        `json:"is_public"`
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	ProgramIDs  []uuid.UUID `json:"program_ids"`
}

// Handler handles admin questionnaire endpoints.
type Handler struct {
	repo     *Repository
	typeRepo *qtypes.Repository
	yearRepo *years.Repository
	clock    clock.Clock
	logger   *zap.Logger
}

// NewHandler creates an admin questionnaires handler.
func NewHandler(repo *Repository, typeRepo *qtypes.Repository, yearRepo *years.Repository, clk clock.Clock, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Handler{repo: repo, typeRepo: typeRepo, yearRepo: yearRepo, clock: clk, logger: logger}
}

// List handles GET /admin/questionnaires. Filters: type_id, year_id,
// is_active; search matches title and description.
func (h *Handler) List(c *gin.Context) {
	q := pagination.Parse(c, listParams)
	f := Filter{}
	if v := c.Query("type_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.TypeID = &id
		}
	}
	if v := c.Query("year_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.YearID = &id
		}
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true" || v == "1"
		f.IsActive = &active
	}

	list, total, err := h.repo.List(c.Request.Context(), q, f)
	if err != nil {
		h.logger.Error("list questionnaires failed", zap.Error(err))
		response.Internal(c, "failed to list questionnaires")
		return
	}
	response.OK(c, gin.H{"questionnaires": list, "meta": pagination.NewMeta(q, total)})
}

// Get handles GET /admin/questionnaires/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid questionnaire id")
		return
	}
	questionnaire, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "questionnaire not found")
		return
	}
	programIDs, err := h.repo.ProgramIDs(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load questionnaire")
		return
	}
	response.OK(c, gin.H{"questionnaire": questionnaire, "program_ids": programIDs})
}

func (h *Handler) validate(c *gin.Context, req *UpsertRequest) (*models.Questionnaire, bool) {
	fields := map[string]string{}
	if _, err := h.typeRepo.GetByID(c.Request.Context(), req.TypeID); err != nil {
		fields["type_id"] = "questionnaire type not found"
	}
	if _, err := h.yearRepo.GetByID(c.Request.Context(), req.YearID); err != nil {
		fields["year_id"] = "academic year not found"
	}

	var start, end *time.Time
	if req.StartDate != "" {
		t, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			fields["start_date"] = "start_date must be YYYY-MM-DD"
		} else {
			start = &t
		}
	}
	if req.EndDate != "" {
		t, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			fields["end_date"] = "end_date must be YYYY-MM-DD"
		} else {
			end = &t
		}
	}
	if start != nil && end != nil && end.Before(*start) {
		fields["end_date"] = "end_date must not be before start_date"
	}
	if len(fields) > 0 {
		response.ValidationFailed(c, fields)
		return nil, false
	}

	return &models.Questionnaire{
		TypeID:      req.TypeID,
		YearID:      req.YearID,
		Title:       req.Title,
		Description: req.Description,
		IsMandatory: req.IsMandatory,
		IsActive:    req.IsActive,
		IsPublic:    req.IsPublic,
		StartDate:   start,
		EndDate:     end,
	}, true
}

// Create handles POST /admin/questionnaires.
func (h *Handler) Create(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"body": err.Error()})
		return
	}
	questionnaire, ok := h.validate(c, &req)
	if !ok {
		return
	}
	if err := h.repo.Create(c.Request.Context(), questionnaire, req.ProgramIDs); err != nil {
		h.logger.Error("create questionnaire failed", zap.Error(err))
		response.Internal(c, "failed to create questionnaire")
		return
	}
	response.Created(c, questionnaire)
}

// Update handles PUT /admin/questionnaires/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid questionnaire id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "questionnaire not found")
		return
	}

	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"body": err.Error()})
		return
	}
	questionnaire, ok := h.validate(c, &req)
	if !ok {
		return
	}
	questionnaire.ID = id

	if err := h.repo.Update(c.Request.Context(), questionnaire, req.ProgramIDs); err != nil {
		h.logger.Error("update questionnaire failed", zap.Error(err))
		response.Internal(c, "failed to update questionnaire")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), id)
	response.OK(c, updated)
}

// Delete handles DELETE /admin/questionnaires/:id. Blocked once any response
// has been collected; collected data is never silently destroyed.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid questionnaire id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "questionnaire not found")
		return
	}

	count, err := h.repo.ResponseCount(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to delete questionnaire")
		return
	}
	if count > 0 {
		response.Unprocessable(c, "cannot delete a questionnaire that already has responses")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete questionnaire")
		return
	}
	response.OK(c, gin.H{"message": "questionnaire deleted"})
}
