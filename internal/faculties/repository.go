package faculties

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/pkg/pagination"
)

// Repository handles faculty persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a faculties repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns faculties matching the paginated query, plus the total count.
func (r *Repository) List(ctx context.Context, q pagination.Query) ([]models.Faculty, int, error) {
	where := ""
	var args []interface{}
	if q.Search != "" {
		where = " WHERE name ILIKE $1"
		args = append(args, "%"+q.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM faculties"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT id, name, created_at, updated_at FROM faculties%s ORDER BY %s LIMIT %d OFFSET %d",
		where, q.OrderClause(), q.PerPage, q.Offset())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Faculty
	for rows.Next() {
		var f models.Faculty
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, f)
	}
	return list, total, rows.Err()
}

// GetByID returns a faculty by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Faculty, error) {
	const q = `SELECT id, name, created_at, updated_at FROM faculties WHERE id = $1`
	var f models.Faculty
	if err := r.pool.QueryRow(ctx, q, id).Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new faculty.
func (r *Repository) Create(ctx context.Context, f *models.Faculty) error {
	const q = `INSERT INTO faculties (name) VALUES ($1) RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, f.Name).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

// Update updates a faculty's name.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name string) error {
	const q = `UPDATE faculties SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, name, id)
	return err
}

// Delete removes a faculty. Fails while programs still reference it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM faculties WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// ProgramCount returns the number of programs under a faculty.
func (r *Repository) ProgramCount(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM programs WHERE faculty_id = $1`, id).Scan(&n)
	return n, err
}
