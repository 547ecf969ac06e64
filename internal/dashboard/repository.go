package dashboard

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unitracer/backend/internal/models"
)

// Filter narrows dashboard statistics to one program, cohort year or
// questionnaire.
type Filter struct {
	ProgramID       *uuid.UUID
	YearID          *uuid.UUID
	QuestionnaireID *uuid.UUID
}

// Totals are the headline dashboard numbers.
type Totals struct {
	Alumni             int `json:"alumni"`
	Responses          int `json:"responses"`
	OpenQuestionnaires int `json:"open_questionnaires"`
	Respondents        int `json:"respondents"`
}

// GroupCount is one program's or cohort's share of responses.
type GroupCount struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Alumni     int       `json:"alumni"`
	Responded  int       `json:"responded"`
	Percentage float64   `json:"percentage"`
}

// Repository runs the dashboard aggregation queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a dashboard repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// alumniFilter appends program/year predicates against the "a" alias.
func alumniFilter(f Filter, args *[]interface{}) string {
	where := ""
	if f.ProgramID != nil {
		*args = append(*args, *f.ProgramID)
		where += " AND a.program_id = $" + strconv.Itoa(len(*args))
	}
	if f.YearID != nil {
		*args = append(*args, *f.YearID)
		where += " AND a.year_id = $" + strconv.Itoa(len(*args))
	}
	return where
}

// Totals returns the headline counts. Respondents counts distinct alumni
// with at least one completed response, scoped by the filter.
func (r *Repository) Totals(ctx context.Context, today time.Time, f Filter) (Totals, error) {
	var t Totals

	var args []interface{}
	where := alumniFilter(f, &args)
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM alumni a WHERE 1=1"+where, args...).Scan(&t.Alumni); err != nil {
		return t, err
	}

	args = args[:0]
	respWhere := " WHERE r.submitted_at IS NOT NULL"
	if f.QuestionnaireID != nil {
		args = append(args, *f.QuestionnaireID)
		respWhere += " AND r.questionnaire_id = $" + strconv.Itoa(len(args))
	}
	respWhere += alumniFilter(f, &args)
	respQuery := "SELECT COUNT(*), COUNT(DISTINCT r.alumni_id) FILTER (WHERE r.alumni_id IS NOT NULL) FROM responses r LEFT JOIN alumni a ON a.id = r.alumni_id" + respWhere
	if err := r.pool.QueryRow(ctx, respQuery, args...).Scan(&t.Responses, &t.Respondents); err != nil {
		return t, err
	}

	// Date-truncated comparison, matching models.Questionnaire.IsOpen: a
	// questionnaire counts as open through the whole of its end date.
	const openQuery = `SELECT COUNT(*) FROM questionnaires q
		WHERE q.is_active = TRUE
		AND (q.start_date IS NULL OR q.start_date <= $1::date)
		AND (q.end_date IS NULL OR q.end_date >= $1::date)`
	if err := r.pool.QueryRow(ctx, openQuery, models.DateOf(today)).Scan(&t.OpenQuestionnaires); err != nil {
		return t, err
	}
	return t, nil
}

// ByProgram returns per-program alumni and respondent counts. A respondent
// is an alumni with at least one completed response, optionally scoped to
// one questionnaire.
func (r *Repository) ByProgram(ctx context.Context, f Filter) ([]GroupCount, error) {
	return r.grouped(ctx, f, "programs", "a.program_id")
}

// ByYear returns per-cohort alumni and respondent counts.
func (r *Repository) ByYear(ctx context.Context, f Filter) ([]GroupCount, error) {
	return r.grouped(ctx, f, "academic_years", "a.year_id")
}

func (r *Repository) grouped(ctx context.Context, f Filter, table, fk string) ([]GroupCount, error) {
	var args []interface{}
	responded := `(SELECT COUNT(DISTINCT r.alumni_id) FROM responses r
		JOIN alumni a ON a.id = r.alumni_id
		WHERE r.submitted_at IS NOT NULL AND ` + fk + ` = g.id`
	if f.QuestionnaireID != nil {
		args = append(args, *f.QuestionnaireID)
		responded += ` AND r.questionnaire_id = $` + strconv.Itoa(len(args))
	}
	responded += `)`

	query := `SELECT g.id, g.name,
		(SELECT COUNT(*) FROM alumni a WHERE ` + fk + ` = g.id), ` +
		responded + `
		FROM ` + table + ` g ORDER BY g.name`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupCount
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.ID, &g.Name, &g.Alumni, &g.Responded); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
