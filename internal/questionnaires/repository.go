package questionnaires

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/pkg/pagination"
)

// Filter narrows the admin questionnaire listing.
type Filter struct {
	TypeID   *uuid.UUID
	YearID   *uuid.UUID
	IsActive *bool
}

// Repository handles questionnaire persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a questionnaires repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `q.id, q.type_id, q.year_id, q.title, COALESCE(q.description,''),
	q.is_mandatory, q.is_active, q.is_public, q.start_date, q.end_date,
	t.name, y.name,
	(SELECT COUNT(*) FROM questions qs WHERE qs.questionnaire_id = q.id),
	(SELECT COUNT(*) FROM responses r WHERE r.questionnaire_id = q.id),
	q.created_at, q.updated_at`

func scanQuestionnaire(row pgx.Row) (*models.Questionnaire, error) {
	var q models.Questionnaire
	err := row.Scan(&q.ID, &q.TypeID, &q.YearID, &q.Title, &q.Description,
		&q.IsMandatory, &q.IsActive, &q.IsPublic, &q.StartDate, &q.EndDate,
		&q.TypeName, &q.YearName, &q.QuestionsCount, &q.ResponsesCount,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// List returns questionnaires matching the paginated query and filter, plus
// the total count. Search matches title and description.
func (r *Repository) List(ctx context.Context, q pagination.Query, f Filter) ([]models.Questionnaire, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (q.title ILIKE $" + n + " OR q.description ILIKE $" + n + ")"
	}
	if f.TypeID != nil {
		args = append(args, *f.TypeID)
		where += " AND q.type_id = $" + strconv.Itoa(len(args))
	}
	if f.YearID != nil {
		args = append(args, *f.YearID)
		where += " AND q.year_id = $" + strconv.Itoa(len(args))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		where += " AND q.is_active = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM questionnaires q"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM questionnaires q
		JOIN questionnaire_types t ON t.id = q.type_id
		JOIN academic_years y ON y.id = q.year_id
		%s ORDER BY %s LIMIT %d OFFSET %d`,
		selectColumns, where, q.OrderClause(), q.PerPage, q.Offset())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Questionnaire
	for rows.Next() {
		item, err := scanQuestionnaire(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *item)
	}
	return list, total, rows.Err()
}

// GetByID returns a questionnaire by ID with type/year names and counts.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Questionnaire, error) {
	query := fmt.Sprintf(`SELECT %s FROM questionnaires q
		JOIN questionnaire_types t ON t.id = q.type_id
		JOIN academic_years y ON y.id = q.year_id
		WHERE q.id = $1`, selectColumns)
	return scanQuestionnaire(r.pool.QueryRow(ctx, query, id))
}

// GetPublicByID returns a questionnaire only when it is public and active.
func (r *Repository) GetPublicByID(ctx context.Context, id uuid.UUID) (*models.Questionnaire, error) {
	query := fmt.Sprintf(`SELECT %s FROM questionnaires q
		JOIN questionnaire_types t ON t.id = q.type_id
		JOIN academic_years y ON y.id = q.year_id
		WHERE q.id = $1 AND q.is_public = TRUE AND q.is_active = TRUE`, selectColumns)
	return scanQuestionnaire(r.pool.QueryRow(ctx, query, id))
}

// ListPublic returns all public active questionnaires.
func (r *Repository) ListPublic(ctx context.Context) ([]models.Questionnaire, error) {
	query := fmt.Sprintf(`SELECT %s FROM questionnaires q
		JOIN questionnaire_types t ON t.id = q.type_id
		JOIN academic_years y ON y.id = q.year_id
		WHERE q.is_public = TRUE AND q.is_active = TRUE
		ORDER BY q.created_at DESC`, selectColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Questionnaire
	for rows.Next() {
		item, err := scanQuestionnaire(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *item)
	}
	return list, rows.Err()
}

// openCondition restricts to questionnaires open on the given calendar date.
// $1 is date-truncated and cast so the DATE comparison matches
// Questionnaire.IsOpen through the whole end date, not just its midnight.
const openCondition = ` AND q.is_active = TRUE
	AND (q.start_date IS NULL OR q.start_date <= $1::date)
	AND (q.end_date IS NULL OR q.end_date >= $1::date)`

// eligibleCondition restricts to questionnaires whose eligible program set
// contains the alumni's program (or that declare no program restriction).
const eligibleCondition = ` AND (
	NOT EXISTS (SELECT 1 FROM questionnaire_programs qp WHERE qp.questionnaire_id = q.id)
	OR EXISTS (SELECT 1 FROM questionnaire_programs qp WHERE qp.questionnaire_id = q.id AND qp.program_id = $2))`

// ListOpenForAlumni returns open questionnaires the alumni's program is
// eligible for, with a has_submitted flag. Status filters to "completed" or
// "pending" submissions.
func (r *Repository) ListOpenForAlumni(ctx context.Context, today time.Time, programID, alumniID uuid.UUID, q pagination.Query, status string) ([]models.Questionnaire, int, error) {
	where := " WHERE 1=1" + openCondition + eligibleCondition
	args := []interface{}{models.DateOf(today), programID, alumniID}
	submitted := `EXISTS (SELECT 1 FROM responses r WHERE r.questionnaire_id = q.id AND r.alumni_id = $3)`

	switch status {
	case "completed":
		where += " AND " + submitted
	case "pending":
		where += " AND NOT " + submitted
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (q.title ILIKE $" + n + " OR q.description ILIKE $" + n + ")"
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM questionnaires q"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s, %s FROM questionnaires q
		JOIN questionnaire_types t ON t.id = q.type_id
		JOIN academic_years y ON y.id = q.year_id
		%s ORDER BY %s LIMIT %d OFFSET %d`,
		selectColumns, submitted, where, q.OrderClause(), q.PerPage, q.Offset())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Questionnaire
	for rows.Next() {
		var item models.Questionnaire
		err := rows.Scan(&item.ID, &item.TypeID, &item.YearID, &item.Title, &item.Description,
			&item.IsMandatory, &item.IsActive, &item.IsPublic, &item.StartDate, &item.EndDate,
			&item.TypeName, &item.YearName, &item.QuestionsCount, &item.ResponsesCount,
			&item.CreatedAt, &item.UpdatedAt, &item.HasSubmitted)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, item)
	}
	return list, total, rows.Err()
}

// CountsForAlumni returns how many open questionnaires the alumni is
// eligible for, and how many of those they have completed.
func (r *Repository) CountsForAlumni(ctx context.Context, today time.Time, programID, alumniID uuid.UUID) (total, completed int, err error) {
	day := models.DateOf(today)
	base := "SELECT COUNT(*) FROM questionnaires q WHERE 1=1" + openCondition + eligibleCondition
	if err = r.pool.QueryRow(ctx, base, day, programID, alumniID).Scan(&total); err != nil {
		return 0, 0, err
	}
	withSubmitted := base + ` AND EXISTS (SELECT 1 FROM responses r WHERE r.questionnaire_id = q.id AND r.alumni_id = $3)`
	if err = r.pool.QueryRow(ctx, withSubmitted, day, programID, alumniID).Scan(&completed); err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}

// EligibleForProgram reports whether the program may answer the
// questionnaire: eligible when no program restriction is declared or the
// program is in the eligible set.
func (r *Repository) EligibleForProgram(ctx context.Context, questionnaireID, programID uuid.UUID) (bool, error) {
	const q = `SELECT NOT EXISTS (SELECT 1 FROM questionnaire_programs WHERE questionnaire_id = $1)
		OR EXISTS (SELECT 1 FROM questionnaire_programs WHERE questionnaire_id = $1 AND program_id = $2)`
	var ok bool
	err := r.pool.QueryRow(ctx, q, questionnaireID, programID).Scan(&ok)
	return ok, err
}

// Create inserts a questionnaire and its eligible-program set in one
// transaction.
func (r *Repository) Create(ctx context.Context, q *models.Questionnaire, programIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const ins = `INSERT INTO questionnaires (type_id, year_id, title, description, is_mandatory, is_active, is_public, start_date, end_date)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, ins, q.TypeID, q.YearID, q.Title, q.Description,
		q.IsMandatory, q.IsActive, q.IsPublic, q.StartDate, q.EndDate).
		Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return err
	}
	if err := replacePrograms(ctx, tx, q.ID, programIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update updates a questionnaire and replaces its eligible-program set in
// one transaction.
func (r *Repository) Update(ctx context.Context, q *models.Questionnaire, programIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const upd = `UPDATE questionnaires SET type_id = $1, year_id = $2, title = $3, description = NULLIF($4,''),
		is_mandatory = $5, is_active = $6, is_public = $7, start_date = $8, end_date = $9, updated_at = NOW()
		WHERE id = $10`
	if _, err := tx.Exec(ctx, upd, q.TypeID, q.YearID, q.Title, q.Description,
		q.IsMandatory, q.IsActive, q.IsPublic, q.StartDate, q.EndDate, q.ID); err != nil {
		return err
	}
	if err := replacePrograms(ctx, tx, q.ID, programIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func replacePrograms(ctx context.Context, tx pgx.Tx, questionnaireID uuid.UUID, programIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM questionnaire_programs WHERE questionnaire_id = $1`, questionnaireID); err != nil {
		return err
	}
	for _, pid := range programIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO questionnaire_programs (questionnaire_id, program_id) VALUES ($1, $2)`, questionnaireID, pid); err != nil {
			return err
		}
	}
	return nil
}

// ProgramIDs returns the eligible-program set of a questionnaire.
func (r *Repository) ProgramIDs(ctx context.Context, questionnaireID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT program_id FROM questionnaire_programs WHERE questionnaire_id = $1`, questionnaireID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ResponseCount returns the number of responses collected for a questionnaire.
func (r *Repository) ResponseCount(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM responses WHERE questionnaire_id = $1`, id).Scan(&n)
	return n, err
}

// Delete removes a questionnaire and its questions.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM questionnaires WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}
