package faculties

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

// UpsertRequest is the body for faculty create/update.
type UpsertRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// Handler handles faculty CRUD endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a faculties handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /admin/faculties.
func (h *Handler) List(c *gin.Context) {
	q := pagination.Parse(c, listParams)
	list, total, err := h.repo.List(c.Request.Context(), q)
	if err != nil {
		response.Internal(c, "failed to list faculties")
		return
	}
	response.OK(c, gin.H{"faculties": list, "meta": pagination.NewMeta(q, total)})
}

// Get handles GET /admin/faculties/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid faculty id")
		return
	}
	f, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "faculty not found")
		return
	}
	response.OK(c, f)
}

// Create handles POST /admin/faculties.
func (h *Handler) Create(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"name": "name is required"})
		return
	}
	f := &models.Faculty{Name: req.Name}
	if err := h.repo.Create(c.Request.Context(), f); err != nil {
		response.Internal(c, "failed to create faculty")
		return
	}
	response.Created(c, f)
}

// Update handles PUT /admin/faculties/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid faculty id")
		return
	}
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"name": "name is required"})
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "faculty not found")
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Name); err != nil {
		response.Internal(c, "failed to update faculty")
		return
	}
	f, _ := h.repo.GetByID(c.Request.Context(), id)
	response.OK(c, f)
}

// Delete handles DELETE /admin/faculties/:id. Blocked while programs still
// belong to the faculty.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid faculty id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "faculty not found")
		return
	}
	n, err := h.repo.ProgramCount(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to delete faculty")
		return
	}
	if n > 0 {
		response.Unprocessable(c, "cannot delete a faculty that still has programs")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete faculty")
		return
	}
	response.OK(c, gin.H{"message": "faculty deleted"})
}
