package alumni

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/pkg/pagination"
)

// Filter narrows the alumni listing.
type Filter struct {
	ProgramID *uuid.UUID
	YearID    *uuid.UUID
	Status    string
}

// Repository handles alumni persistence. Alumni rows and their login users
// are managed together: creating an alumni creates the account.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an alumni repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `a.id, a.user_id, a.student_no, a.full_name, a.program_id, a.year_id,
	COALESCE(a.email,''), COALESCE(a.phone,''), a.status, p.name, y.name, a.created_at, a.updated_at`

func scanAlumni(row pgx.Row) (*models.Alumni, error) {
	var a models.Alumni
	err := row.Scan(&a.ID, &a.UserID, &a.StudentNo, &a.FullName, &a.ProgramID, &a.YearID,
		&a.Email, &a.Phone, &a.Status, &a.ProgramName, &a.YearName, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns alumni matching the paginated query and filter, plus the
// total count. Search matches student number and full name.
func (r *Repository) List(ctx context.Context, q pagination.Query, f Filter) ([]models.Alumni, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (a.student_no ILIKE $" + n + " OR a.full_name ILIKE $" + n + ")"
	}
	if f.ProgramID != nil {
		args = append(args, *f.ProgramID)
		where += " AND a.program_id = $" + strconv.Itoa(len(args))
	}
	if f.YearID != nil {
		args = append(args, *f.YearID)
		where += " AND a.year_id = $" + strconv.Itoa(len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += " AND a.status = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM alumni a"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM alumni a
		JOIN programs p ON p.id = a.program_id
		JOIN academic_years y ON y.id = a.year_id
		%s ORDER BY %s LIMIT %d OFFSET %d`,
		selectColumns, where, q.OrderClause(), q.PerPage, q.Offset())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Alumni
	for rows.Next() {
		a, err := scanAlumni(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *a)
	}
	return list, total, rows.Err()
}

// GetByID returns an alumni by ID with program and year names.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Alumni, error) {
	query := fmt.Sprintf(`SELECT %s FROM alumni a
		JOIN programs p ON p.id = a.program_id
		JOIN academic_years y ON y.id = a.year_id
		WHERE a.id = $1`, selectColumns)
	return scanAlumni(r.pool.QueryRow(ctx, query, id))
}

// GetByStudentNo returns an alumni by student number, or pgx.ErrNoRows.
func (r *Repository) GetByStudentNo(ctx context.Context, studentNo string) (*models.Alumni, error) {
	query := fmt.Sprintf(`SELECT %s FROM alumni a
		JOIN programs p ON p.id = a.program_id
		JOIN academic_years y ON y.id = a.year_id
		WHERE a.student_no = $1`, selectColumns)
	return scanAlumni(r.pool.QueryRow(ctx, query, studentNo))
}

// CreateWithUser inserts an alumni and its login user in one transaction.
// The username is the student number; passwordHash is the bcrypt hash of the
// initial password.
func (r *Repository) CreateWithUser(ctx context.Context, a *models.Alumni, passwordHash string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	const insUser = `INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id`
	if err := tx.QueryRow(ctx, insUser, a.StudentNo, passwordHash, models.RoleAlumni).Scan(&userID); err != nil {
		return err
	}
	a.UserID = &userID

	const insAlumni = `INSERT INTO alumni (user_id, student_no, full_name, program_id, year_id, email, phone, status)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), NULLIF($7,''), $8)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insAlumni, userID, a.StudentNo, a.FullName, a.ProgramID, a.YearID,
		a.Email, a.Phone, a.Status).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update updates alumni profile fields. The student number and the linked
// user are left alone.
func (r *Repository) Update(ctx context.Context, a *models.Alumni) error {
	const q = `UPDATE alumni SET full_name = $1, program_id = $2, year_id = $3,
		email = NULLIF($4,''), phone = NULLIF($5,''), status = $6, updated_at = NOW()
		WHERE id = $7`
	_, err := r.pool.Exec(ctx, q, a.FullName, a.ProgramID, a.YearID, a.Email, a.Phone, a.Status, a.ID)
	return err
}

// Delete removes an alumni and, when linked, its login user. Callers must
// check ResponseCount first: alumni with submitted responses are not
// deletable.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID *uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT user_id FROM alumni WHERE id = $1`, id).Scan(&userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM alumni WHERE id = $1`, id); err != nil {
		return err
	}
	if userID != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, *userID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ResponseCount returns how many responses the alumni has submitted.
func (r *Repository) ResponseCount(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM responses WHERE alumni_id = $1`, id).Scan(&n)
	return n, err
}
