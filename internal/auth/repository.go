package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unitracer/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT id, username, password_hash, role, created_at, updated_at FROM users WHERE id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername returns a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const q = `SELECT id, username, password_hash, role, created_at, updated_at FROM users WHERE username = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetAlumniByUserID returns the alumni record linked to a user, or nil when
// the user has no alumni identity.
func (r *Repository) GetAlumniByUserID(ctx context.Context, userID uuid.UUID) (*models.Alumni, error) {
	const q = `SELECT a.id, a.user_id, a.student_no, a.full_name, a.program_id, a.year_id,
		COALESCE(a.email,''), COALESCE(a.phone,''), a.status, p.name, y.name, a.created_at, a.updated_at
		FROM alumni a
		JOIN programs p ON p.id = a.program_id
		JOIN academic_years y ON y.id = a.year_id
		WHERE a.user_id = $1`
	var a models.Alumni
	err := r.pool.QueryRow(ctx, q, userID).Scan(&a.ID, &a.UserID, &a.StudentNo, &a.FullName, &a.ProgramID, &a.YearID,
		&a.Email, &a.Phone, &a.Status, &a.ProgramName, &a.YearName, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
