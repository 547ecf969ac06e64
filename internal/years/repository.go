package years

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/pkg/pagination"
)

// Repository handles academic-year persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a years repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns academic years matching the paginated query, plus the total count.
func (r *Repository) List(ctx context.Context, q pagination.Query) ([]models.AcademicYear, int, error) {
	where := ""
	var args []interface{}
	if q.Search != "" {
		where = " WHERE name ILIKE $1"
		args = append(args, "%"+q.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM academic_years"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT id, name, created_at, updated_at FROM academic_years%s ORDER BY %s LIMIT %d OFFSET %d",
		where, q.OrderClause(), q.PerPage, q.Offset())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.AcademicYear
	for rows.Next() {
		var y models.AcademicYear
		if err := rows.Scan(&y.ID, &y.Name, &y.CreatedAt, &y.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, y)
	}
	return list, total, rows.Err()
}

// GetByID returns an academic year by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.AcademicYear, error) {
	const q = `SELECT id, name, created_at, updated_at FROM academic_years WHERE id = $1`
	var y models.AcademicYear
	if err := r.pool.QueryRow(ctx, q, id).Scan(&y.ID, &y.Name, &y.CreatedAt, &y.UpdatedAt); err != nil {
		return nil, err
	}
	return &y, nil
}

// GetByName returns an academic year by its exact name. Used by the alumni
// import to resolve cohort years from spreadsheet cells.
func (r *Repository) GetByName(ctx context.Context, name string) (*models.AcademicYear, error) {
	const q = `SELECT id, name, created_at, updated_at FROM academic_years WHERE name = $1`
	var y models.AcademicYear
	if err := r.pool.QueryRow(ctx, q, name).Scan(&y.ID, &y.Name, &y.CreatedAt, &y.UpdatedAt); err != nil {
		return nil, err
	}
	return &y, nil
}

// Create inserts a new academic year.
func (r *Repository) Create(ctx context.Context, y *models.AcademicYear) error {
	const q = `INSERT INTO academic_years (name) VALUES ($1) RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, y.Name).Scan(&y.ID, &y.CreatedAt, &y.UpdatedAt)
}

// Update renames an academic year.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name string) error {
	const q = `UPDATE academic_years SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, name, id)
	return err
}

// Delete removes an academic year.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM academic_years WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// InUse reports whether any alumni or questionnaire references the year.
func (r *Repository) InUse(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM alumni WHERE year_id = $1)
		OR EXISTS (SELECT 1 FROM questionnaires WHERE year_id = $1)`
	var used bool
	err := r.pool.QueryRow(ctx, q, id).Scan(&used)
	return used, err
}
