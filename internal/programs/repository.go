package programs

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/pkg/pagination"
)

// Filter narrows the program listing.
type Filter struct {
	FacultyID *uuid.UUID
}

// Repository handles study-program persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a programs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns programs matching the paginated query and filter, plus the
// total count. Search matches code and name.
func (r *Repository) List(ctx context.Context, q pagination.Query, f Filter) ([]models.Program, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (p.code ILIKE $" + n + " OR p.name ILIKE $" + n + ")"
	}
	if f.FacultyID != nil {
		args = append(args, *f.FacultyID)
		where += " AND p.faculty_id = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM programs p"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT p.id, p.faculty_id, p.code, p.name, f.name, p.created_at, p.updated_at
		FROM programs p JOIN faculties f ON f.id = p.faculty_id%s ORDER BY %s LIMIT %d OFFSET %d`,
		where, q.OrderClause(), q.PerPage, q.Offset())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Program
	for rows.Next() {
		var p models.Program
		if err := rows.Scan(&p.ID, &p.FacultyID, &p.Code, &p.Name, &p.FacultyName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// GetByID returns a program by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	const q = `SELECT p.id, p.faculty_id, p.code, p.name, f.name, p.created_at, p.updated_at
		FROM programs p JOIN faculties f ON f.id = p.faculty_id WHERE p.id = $1`
	var p models.Program
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.FacultyID, &p.Code, &p.Name, &p.FacultyName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByCode returns a program by its unique code.
func (r *Repository) GetByCode(ctx context.Context, code string) (*models.Program, error) {
	const q = `SELECT p.id, p.faculty_id, p.code, p.name, f.name, p.created_at, p.updated_at
		FROM programs p JOIN faculties f ON f.id = p.faculty_id WHERE p.code = $1`
	var p models.Program
	err := r.pool.QueryRow(ctx, q, code).Scan(&p.ID, &p.FacultyID, &p.Code, &p.Name, &p.FacultyName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new program.
func (r *Repository) Create(ctx context.Context, p *models.Program) error {
	const q = `INSERT INTO programs (faculty_id, code, name) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, p.FacultyID, p.Code, p.Name).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update updates a program.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, facultyID uuid.UUID, code, name string) error {
	const q = `UPDATE programs SET faculty_id = $1, code = $2, name = $3, updated_at = NOW() WHERE id = $4`
	_, err := r.pool.Exec(ctx, q, facultyID, code, name, id)
	return err
}

// Delete removes a program.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM programs WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// AlumniCount returns how many alumni belong to a program.
func (r *Repository) AlumniCount(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM alumni WHERE program_id = $1`, id).Scan(&n)
	return n, err
}
