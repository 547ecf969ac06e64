package responses

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unitracer/backend/internal/models"
)

// ErrDuplicateSubmission is returned when the database uniqueness constraint
// rejects a second response for the same respondent. The constraint, not the
// handler pre-check, is the authoritative guard against concurrent submits.
var ErrDuplicateSubmission = errors.New("duplicate submission")

// Repository handles response and answer persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a responses repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// HasAlumniResponse reports whether the alumni already responded to the
// questionnaire.
func (r *Repository) HasAlumniResponse(ctx context.Context, questionnaireID, alumniID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM responses WHERE questionnaire_id = $1 AND alumni_id = $2)`
	var exists bool
	err := r.pool.QueryRow(ctx, q, questionnaireID, alumniID).Scan(&exists)
	return exists, err
}

// HasPublicResponse reports whether a completed public response exists for
// the email. Responses without submitted_at do not count.
func (r *Repository) HasPublicResponse(ctx context.Context, questionnaireID uuid.UUID, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM responses
		WHERE questionnaire_id = $1 AND respondent_email = $2 AND submitted_at IS NOT NULL)`
	var exists bool
	err := r.pool.QueryRow(ctx, q, questionnaireID, email).Scan(&exists)
	return exists, err
}

// CreateWithAnswers inserts the response and all its answers in a single
// transaction: either everything persists or nothing does. A uniqueness
// violation maps to ErrDuplicateSubmission.
func (r *Repository) CreateWithAnswers(ctx context.Context, resp *models.Response, answers []models.Answer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const ins = `INSERT INTO responses (questionnaire_id, alumni_id, respondent_name, respondent_email, respondent_phone, submitted_at)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), $6)
		RETURNING id, created_at`
	err = tx.QueryRow(ctx, ins, resp.QuestionnaireID, resp.AlumniID,
		resp.RespondentName, resp.RespondentEmail, resp.RespondentPhone, resp.SubmittedAt).
		Scan(&resp.ID, &resp.CreatedAt)
	if err != nil {
		return mapDuplicate(err)
	}

	for i := range answers {
		answers[i].ResponseID = resp.ID
		const insAnswer = `INSERT INTO answers (response_id, question_id, answer_value) VALUES ($1, $2, $3) RETURNING id, created_at`
		if err := tx.QueryRow(ctx, insAnswer, resp.ID, answers[i].QuestionID, answers[i].Value).
			Scan(&answers[i].ID, &answers[i].CreatedAt); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return mapDuplicate(err)
	}
	return nil
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateSubmission
	}
	return err
}

// GetAlumniResponse returns the alumni's response to the questionnaire with
// its answers, or pgx.ErrNoRows.
func (r *Repository) GetAlumniResponse(ctx context.Context, questionnaireID, alumniID uuid.UUID) (*models.Response, []models.Answer, error) {
	const q = `SELECT id, questionnaire_id, alumni_id, COALESCE(respondent_name,''), COALESCE(respondent_email,''),
		COALESCE(respondent_phone,''), submitted_at, created_at
		FROM responses WHERE questionnaire_id = $1 AND alumni_id = $2`
	var resp models.Response
	err := r.pool.QueryRow(ctx, q, questionnaireID, alumniID).Scan(&resp.ID, &resp.QuestionnaireID, &resp.AlumniID,
		&resp.RespondentName, &resp.RespondentEmail, &resp.RespondentPhone, &resp.SubmittedAt, &resp.CreatedAt)
	if err != nil {
		return nil, nil, err
	}

	answers, err := r.AnswersByResponse(ctx, resp.ID)
	if err != nil {
		return nil, nil, err
	}
	return &resp, answers, nil
}

// AnswersByResponse returns all answers of one response.
func (r *Repository) AnswersByResponse(ctx context.Context, responseID uuid.UUID) ([]models.Answer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, response_id, question_id, answer_value, created_at
		FROM answers WHERE response_id = $1`, responseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Answer
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.ResponseID, &a.QuestionID, &a.Value, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ValuesByQuestion returns the stored answer values for one question across
// all completed responses, most recent first.
func (r *Repository) ValuesByQuestion(ctx context.Context, questionID uuid.UUID) ([]string, error) {
	const q = `SELECT a.answer_value FROM answers a
		JOIN responses r ON r.id = a.response_id
		WHERE a.question_id = $1 AND r.submitted_at IS NOT NULL
		ORDER BY r.submitted_at DESC`
	rows, err := r.pool.Query(ctx, q, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ExportFilter narrows export rows by respondent program or cohort year.
type ExportFilter struct {
	ProgramID *uuid.UUID
	YearID    *uuid.UUID
}

// ExportRow is one response flattened for spreadsheet/PDF export.
type ExportRow struct {
	StudentNo   string
	FullName    string
	ProgramName string
	YearName    string
	Response    models.Response
	// Answers maps question ID to the stored answer value.
	Answers map[uuid.UUID]string
}

// ListForExport returns all completed responses for a questionnaire with
// respondent identity and answers, ordered by submission time.
func (r *Repository) ListForExport(ctx context.Context, questionnaireID uuid.UUID, f ExportFilter) ([]ExportRow, error) {
	where := ` WHERE r.questionnaire_id = $1 AND r.submitted_at IS NOT NULL`
	args := []interface{}{questionnaireID}
	if f.ProgramID != nil {
		args = append(args, *f.ProgramID)
		where += ` AND al.program_id = $` + strconv.Itoa(len(args))
	}
	if f.YearID != nil {
		args = append(args, *f.YearID)
		where += ` AND al.year_id = $` + strconv.Itoa(len(args))
	}

	query := `SELECT r.id, r.questionnaire_id, r.alumni_id,
		COALESCE(r.respondent_name,''), COALESCE(r.respondent_email,''), COALESCE(r.respondent_phone,''),
		r.submitted_at, r.created_at,
		COALESCE(al.student_no,''), COALESCE(al.full_name, COALESCE(r.respondent_name,'')),
		COALESCE(p.name,''), COALESCE(y.name,'')
		FROM responses r
		LEFT JOIN alumni al ON al.id = r.alumni_id
		LEFT JOIN programs p ON p.id = al.program_id
		LEFT JOIN academic_years y ON y.id = al.year_id` +
		where + ` ORDER BY r.submitted_at`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		var row ExportRow
		if err := rows.Scan(&row.Response.ID, &row.Response.QuestionnaireID, &row.Response.AlumniID,
			&row.Response.RespondentName, &row.Response.RespondentEmail, &row.Response.RespondentPhone,
			&row.Response.SubmittedAt, &row.Response.CreatedAt,
			&row.StudentNo, &row.FullName, &row.ProgramName, &row.YearName); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		answers, err := r.AnswersByResponse(ctx, out[i].Response.ID)
		if err != nil {
			return nil, err
		}
		out[i].Answers = make(map[uuid.UUID]string, len(answers))
		for _, a := range answers {
			out[i].Answers[a.QuestionID] = a.Value
		}
	}
	return out, nil
}

// CountByQuestionnaire returns the number of completed responses.
func (r *Repository) CountByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM responses WHERE questionnaire_id = $1 AND submitted_at IS NOT NULL`, questionnaireID).Scan(&n)
	return n, err
}
