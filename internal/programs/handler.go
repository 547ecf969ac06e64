package programs

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
		"name":       "p.name",
		"code":       "p.code",
		"created_at": "p.created_at",
	},
}

// UpsertRequest is the body for program create/update.
type UpsertRequest struct {
	FacultyID uuid.UUID `json:"faculty_id" binding:"required"`
	Code      string    `json:"code" binding:"required,max=20"`
	Name      string    `json:"name" binding:"required,max=255"`
}

// Handler handles program CRUD endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a programs handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /programs and GET /admin/programs.
func (h *Handler) List(c *gin.Context) {
	q := pagination.Parse(c, listParams)

	var f Filter
	if v := c.Query("faculty_id"); v != "" && v != "all" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "invalid faculty_id")
			return
		}
		f.FacultyID = &id
	}

	list, total, err := h.repo.List(c.Request.Context(), q, f)
	if err != nil {
		response.Internal(c, "failed to list programs")
		return
	}
	response.OK(c, gin.H{"programs": list, "meta": pagination.NewMeta(q, total)})
}

// Get handles GET /admin/programs/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid program id")
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "program not found")
		return
	}
	response.OK(c, p)
}

// Create handles POST /admin/programs.
func (h *Handler) Create(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"body": err.Error()})
		return
	}
	p := &models.Program{FacultyID: req.FacultyID, Code: req.Code, Name: req.Name}
	if err := h.repo.Create(c.Request.Context(), p); err != nil {
		response.Unprocessable(c, "failed to create program; code may already exist")
		return
	}
	response.Created(c, p)
}

// Update handles PUT /admin/programs/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid program id")
		return
	}
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"body": err.Error()})
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "program not found")
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.FacultyID, req.Code, req.Name); err != nil {
		response.Unprocessable(c, "failed to update program; code may already exist")
		return
	}
	p, _ := h.repo.GetByID(c.Request.Context(), id)
	response.OK(c, p)
}

// Delete handles DELETE /admin/programs/:id. Blocked while alumni still
// belong to the program.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid program id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "program not found")
		return
	}
	n, err := h.repo.AlumniCount(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to delete program")
		return
	}
	if n > 0 {
		response.Unprocessable(c, "cannot delete a program that still has alumni")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete program")
		return
	}
	response.OK(c, gin.H{"message": "program deleted"})
}
