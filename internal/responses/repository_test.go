package responses

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapDuplicateUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_responses_alumni"}
	assert.ErrorIs(t, mapDuplicate(pgErr), ErrDuplicateSubmission)

	// errors.As unwraps, so a wrapped driver error still maps
	wrapped := fmt.Errorf("insert response: %w", pgErr)
	assert.ErrorIs(t, mapDuplicate(wrapped), ErrDuplicateSubmission)
}

func TestMapDuplicatePassesThroughOtherErrors(t *testing.T) {
	fkErr := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, error(fkErr), mapDuplicate(fkErr))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapDuplicate(plain))
	assert.NotErrorIs(t, mapDuplicate(plain), ErrDuplicateSubmission)
}
