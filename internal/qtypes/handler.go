package qtypes

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/pkg/pagination"
	"github.com/unitracer/backend/pkg/response"
)

var listParams = pagination.Params{
	DefaultPerPage: 10,
	DefaultSortBy:  "name",
	AllowedSorts: map[string]string{
		"name":       "name",
		"created_at": "created_at",
	},
}

// UpsertRequest is the body for questionnaire-type create/update.
type UpsertRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

// Handler handles questionnaire type CRUD endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a questionnaire types handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /admin/questionnaire-types.
func (h *Handler) List(c *gin.Context) {
	q := pagination.Parse(c, listParams)
	list, total, err := h.repo.List(c.Request.Context(), q)
	if err != nil {
		response.Internal(c, "failed to list questionnaire types")
		return
	}
	response.OK(c, gin.H{"types": list, "meta": pagination.NewMeta(q, total)})
}

// Create handles POST /admin/questionnaire-types.
func (h *Handler) Create(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"name": "name is required"})
		return
	}
	t := &models.QuestionnaireType{Name: req.Name, Description: req.Description}
	if err := h.repo.Create(c.Request.Context(), t); err != nil {
		response.Unprocessable(c, "failed to create questionnaire type; name may already exist")
		return
	}
	response.Created(c, t)
}

// Update handles PUT /admin/questionnaire-types/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid questionnaire type id")
		return
	}
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"name": "name is required"})
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "questionnaire type not found")
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Name, req.Description); err != nil {
		response.Unprocessable(c, "failed to update questionnaire type")
		return
	}
	t, _ := h.repo.GetByID(c.Request.Context(), id)
	response.OK(c, t)
}

// Delete handles DELETE /admin/questionnaire-types/:id. Blocked while any
// questionnaire uses the type.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid questionnaire type id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "questionnaire type not found")
		return
	}
	used, err := h.repo.InUse(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to delete questionnaire type")
		return
	}
	if used {
		response.Unprocessable(c, "cannot delete a questionnaire type that is still in use")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete questionnaire type")
		return
	}
	response.OK(c, gin.H{"message": "questionnaire type deleted"})
}
