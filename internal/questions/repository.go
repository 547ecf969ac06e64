package questions

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unitracer/backend/internal/models"
)

// Repository handles question persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a questions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question
	var options []byte
	err := row.Scan(&q.ID, &q.QuestionnaireID, &q.Text, &q.Type, &options,
		&q.IsRequired, &q.Order, &q.Section, &q.DependsOn, &q.DependsValue,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, err
		}
	}
	return &q, nil
}

const selectColumns = `id, questionnaire_id, question_text, type, options,
	is_required, "order", section, depends_on, COALESCE(depends_value,''),
	created_at, updated_at`

// ListByQuestionnaire returns the questionnaire's questions ordered by
// section then order.
func (r *Repository) ListByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) ([]models.Question, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM questions
		WHERE questionnaire_id = $1 ORDER BY section, "order"`, questionnaireID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *q)
	}
	return list, rows.Err()
}

// GetByID returns a question by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM questions WHERE id = $1`, id))
}

// Create inserts a new question.
func (r *Repository) Create(ctx context.Context, q *models.Question) error {
	options, err := marshalOptions(q.Options)
	if err != nil {
		return err
	}
	const ins = `INSERT INTO questions (questionnaire_id, question_text, type, options, is_required, "order", section, depends_on, depends_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9,''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, ins, q.QuestionnaireID, q.Text, q.Type, options,
		q.IsRequired, q.Order, q.Section, q.DependsOn, q.DependsValue).
		Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update updates a question.
func (r *Repository) Update(ctx context.Context, q *models.Question) error {
	options, err := marshalOptions(q.Options)
	if err != nil {
		return err
	}
	const upd = `UPDATE questions SET question_text = $1, type = $2, options = $3, is_required = $4,
		"order" = $5, section = $6, depends_on = $7, depends_value = NULLIF($8,''), updated_at = NOW()
		WHERE id = $9`
	_, err = r.pool.Exec(ctx, upd, q.Text, q.Type, options, q.IsRequired,
		q.Order, q.Section, q.DependsOn, q.DependsValue, q.ID)
	return err
}

func marshalOptions(options []string) ([]byte, error) {
	if options == nil {
		return nil, nil
	}
	return json.Marshal(options)
}

// Delete removes a question.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// DependentCount returns how many questions declare this question as their
// conditional dependency.
func (r *Repository) DependentCount(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE depends_on = $1`, id).Scan(&n)
	return n, err
}

// AnswerCount returns how many answers reference this question.
func (r *Repository) AnswerCount(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM answers WHERE question_id = $1`, id).Scan(&n)
	return n, err
}

// ReorderItem is one question's new position.
type ReorderItem struct {
	ID      uuid.UUID `json:"id" binding:"required"`
	Order   int       `json:"order" binding:"required,min=1"`
	Section int       `json:"section" binding:"required,min=1"`
}

// Reorder bulk-updates question order and section in one transaction so a
// partial reorder is never visible.
func (r *Repository) Reorder(ctx context.Context, questionnaireID uuid.UUID, items []ReorderItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		tag, err := tx.Exec(ctx, `UPDATE questions SET "order" = $1, section = $2, updated_at = NOW()
			WHERE id = $3 AND questionnaire_id = $4`, item.Order, item.Section, item.ID, questionnaireID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
	}
	return tx.Commit(ctx)
}
