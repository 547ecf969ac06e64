package years

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/pkg/pagination"
	"github.com/unitracer/backend/pkg/response"
)

var listParams = pagination.Params{
	DefaultPerPage: 15,
	DefaultSortBy:  "name",
	AllowedSorts: map[string]string{
		"name":       "name",
		"created_at": "created_at",
	},
}

// UpsertRequest is the body for year create/update.
type UpsertRequest struct {
	Name string `json:"name" binding:"required,max=20"`
}

// Handler handles academic year CRUD endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a years handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /admin/years.
func (h *Handler) List(c *gin.Context) {
	q := pagination.Parse(c, listParams)
	list, total, err := h.repo.List(c.Request.Context(), q)
	if err != nil {
		response.Internal(c, "failed to list years")
		return
	}
	response.OK(c, gin.H{"years": list, "meta": pagination.NewMeta(q, total)})
}

// Get handles GET /admin/years/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid year id")
		return
	}
	y, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "year not found")
		return
	}
	response.OK(c, y)
}

// Create handles POST /admin/years.
func (h *Handler) Create(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"name": "name is required"})
		return
	}
	y := &models.AcademicYear{Name: req.Name}
	if err := h.repo.Create(c.Request.Context(), y); err != nil {
		response.Unprocessable(c, "failed to create year; name may already exist")
		return
	}
	response.Created(c, y)
}

// Update handles PUT /admin/years/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid year id")
		return
	}
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"name": "name is required"})
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "year not found")
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Name); err != nil {
		response.Unprocessable(c, "failed to update year; name may already exist")
		return
	}
	y, _ := h.repo.GetByID(c.Request.Context(), id)
	response.OK(c, y)
}

// Delete handles DELETE /admin/years/:id. Blocked while alumni or
// questionnaires reference the year.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid year id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "year not found")
		return
	}
	used, err := h.repo.InUse(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to delete year")
		return
	}
	if used {
		response.Unprocessable(c, "cannot delete a year that is still in use")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete year")
		return
	}
	response.OK(c, gin.H{"message": "year deleted"})
}
