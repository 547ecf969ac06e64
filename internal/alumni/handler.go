package alumni

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/internal/programs"
	"github.com/unitracer/backend/internal/years"
	"github.com/unitracer/backend/pkg/pagination"
	"github.com/unitracer/backend/pkg/response"
	"github.com/unitracer/backend/pkg/utils"
)

var listParams = pagination.Params{
	DefaultPerPage: 15,
	DefaultSortBy:  "student_no",
	AllowedSorts: map[string]string{
		"student_no": "a.student_no",
		"full_name":  "a.full_name",
		"created_at": "a.created_at",
	},
}

// CreateRequest is the body for alumni creation. The student number doubles
// as the username and initial password of the generated login account.
type CreateRequest struct {
	StudentNo string    `json:"student_no" binding:"required,max=50"`
	FullName  string    `json:"full_name" binding:"required,max=255"`
	ProgramID uuid.UUID `json:"program_id" binding:"required"`
	YearID    uuid.UUID `json:"year_id" binding:"required"`
	Email     string    `json:"email" binding:"omitempty,email,max=255"`
	Phone     string    `json:"phone" binding:"max=50"`
	Status    string    `json:"status"`
}

// UpdateRequest is the body for alumni updates. The student number is
// immutable once created.
type UpdateRequest struct {
	FullName  string    `json:"full_name" binding:"required,max=255"`
	ProgramID uuid.UUID `json:"program_id" binding:"required"`
	YearID    uuid.UUID `json:"year_id" binding:"required"`
	Email     string    `json:"email" binding:"omitempty,email,max=255"`
	Phone     string    `json:"phone" binding:"max=50"`
	Status    string    `json:"status"`
}

// Handler handles admin alumni endpoints.
type Handler struct {
	repo        *Repository
	programRepo *programs.Repository
	yearRepo    *years.Repository
	maxImportMB int
	logger      *zap.Logger
}

// NewHandler creates an alumni handler. maxImportMB caps uploaded import
// files.
func NewHandler(repo *Repository, programRepo *programs.Repository, yearRepo *years.Repository, maxImportMB int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, programRepo: programRepo, yearRepo: yearRepo, maxImportMB: maxImportMB, logger: logger}
}

// List handles GET /admin/alumni. Filters: program_id, year_id, status;
// search matches student number and full name.
func (h *Handler) List(c *gin.Context) {
	q := pagination.Parse(c, listParams)
	f := Filter{Status: c.Query("status")}
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

	list, total, err := h.repo.List(c.Request.Context(), q, f)
	if err != nil {
		h.logger.Error("list alumni failed", zap.Error(err))
		response.Internal(c, "failed to list alumni")
		return
	}
	response.OK(c, gin.H{"alumni": list, "meta": pagination.NewMeta(q, total)})
}

// Get handles GET /admin/alumni/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid alumni id")
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "alumni not found")
		return
	}
	response.OK(c, a)
}

func (h *Handler) checkReferences(c *gin.Context, programID, yearID uuid.UUID, status string) (map[string]string, string) {
	fields := map[string]string{}
	if _, err := h.programRepo.GetByID(c.Request.Context(), programID); err != nil {
		fields["program_id"] = "study program not found"
	}
	if _, err := h.yearRepo.GetByID(c.Request.Context(), yearID); err != nil {
		fields["year_id"] = "academic year not found"
	}
	if status == "" {
		status = models.StatusNotYetWorking
	}
	if !models.ValidStatus(status) {
		fields["status"] = "unknown employment status"
	}
	return fields, status
}

// Create handles POST /admin/alumni. Creates the alumni together with a
// login account; the initial password is the student number and should be
// changed on first login.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"body": err.Error()})
		return
	}
	fields, status := h.checkReferences(c, req.ProgramID, req.YearID, req.Status)
	if _, err := h.repo.GetByStudentNo(c.Request.Context(), req.StudentNo); err == nil {
		fields["student_no"] = "student number already registered"
	} else if !errors.Is(err, pgx.ErrNoRows) {
		response.Internal(c, "failed to create alumni")
		return
	}
	if len(fields) > 0 {
		response.ValidationFailed(c, fields)
		return
	}

	hash, err := utils.HashPassword(req.StudentNo)
	if err != nil {
		response.Internal(c, "failed to create alumni")
		return
	}
	a := &models.Alumni{
		StudentNo: req.StudentNo,
		FullName:  req.FullName,
		ProgramID: req.ProgramID,
		YearID:    req.YearID,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    status,
	}
	if err := h.repo.CreateWithUser(c.Request.Context(), a, hash); err != nil {
		h.logger.Error("create alumni failed", zap.Error(err))
		response.Internal(c, "failed to create alumni")
		return
	}
	response.Created(c, a)
}

// Update handles PUT /admin/alumni/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid alumni id")
		return
	}
	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "alumni not found")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, map[string]string{"body": err.Error()})
		return
	}
	fields, status := h.checkReferences(c, req.ProgramID, req.YearID, req.Status)
	if len(fields) > 0 {
		response.ValidationFailed(c, fields)
		return
	}

	existing.FullName = req.FullName
	existing.ProgramID = req.ProgramID
	existing.YearID = req.YearID
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.Status = status
	if err := h.repo.Update(c.Request.Context(), existing); err != nil {
		h.logger.Error("update alumni failed", zap.Error(err))
		response.Internal(c, "failed to update alumni")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), id)
	response.OK(c, updated)
}

// Delete handles DELETE /admin/alumni/:id. Blocked once the alumni has
// submitted responses; collected data is never silently destroyed.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid alumni id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "alumni not found")
		return
	}

	count, err := h.repo.ResponseCount(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to delete alumni")
		return
	}
	if count > 0 {
		response.Unprocessable(c, "cannot delete an alumni who has already submitted responses")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete alumni failed", zap.Error(err))
		response.Internal(c, "failed to delete alumni")
		return
	}
	response.OK(c, gin.H{"message": "alumni deleted"})
}
