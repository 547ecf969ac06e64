package qtypes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/pkg/pagination"
)

// Repository handles questionnaire-type persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a questionnaire types repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns questionnaire types matching the paginated query, plus the
// total count.
func (r *Repository) List(ctx context.Context, q pagination.Query) ([]models.QuestionnaireType, int, error) {
	where := ""
	var args []interface{}
	if q.Search != "" {
		where = " WHERE name ILIKE $1"
		args = append(args, "%"+q.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM questionnaire_types"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT id, name, COALESCE(description,''), created_at, updated_at
		FROM questionnaire_types%s ORDER BY %s LIMIT %d OFFSET %d`,
		where, q.OrderClause(), q.PerPage, q.Offset())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.QuestionnaireType
	for rows.Next() {
		var t models.QuestionnaireType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

// GetByID returns a questionnaire type by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.QuestionnaireType, error) {
	const q = `SELECT id, name, COALESCE(description,''), created_at, updated_at FROM questionnaire_types WHERE id = $1`
	var t models.QuestionnaireType
	if err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new questionnaire type.
func (r *Repository) Create(ctx context.Context, t *models.QuestionnaireType) error {
	const q = `INSERT INTO questionnaire_types (name, description) VALUES ($1, NULLIF($2,''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.Name, t.Description).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update updates a questionnaire type.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, description string) error {
	const q = `UPDATE questionnaire_types SET name = $1, description = NULLIF($2,''), updated_at = NOW() WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, name, description, id)
	return err
}

// Delete removes a questionnaire type.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM questionnaire_types WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// InUse reports whether any questionnaire references the type.
func (r *Repository) InUse(ctx context.Context, id uuid.UUID) (bool, error) {
	var used bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM questionnaires WHERE type_id = $1)`, id).Scan(&used)
	return used, err
}
