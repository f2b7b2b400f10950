package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	err := fmt.Errorf("insert voyage: %w", &pgconn.PgError{Code: "23505", ConstraintName: "voyages_nom_annee_key"})

	assert.True(t, IsDuplicateConstraintError(err, "voyages_nom_annee_key"))
	assert.False(t, IsDuplicateConstraintError(err, "payments_ref_key"))
	assert.True(t, IsUniqueViolation(err))
}

func TestIsUniqueViolationIgnoresOtherCodes(t *testing.T) {
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
}

func TestIsInvalidInput(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"22001", true},
		{"22003", true},
		{"22007", true},
		{"22P02", true},
		{"22012", true},
		{"23514", true},
		{"23505", false},
		{"42P01", false},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			err := fmt.Errorf("insert payment: %w", &pgconn.PgError{Code: tc.code})
			assert.Equal(t, tc.want, IsInvalidInput(err))
		})
	}
	assert.False(t, IsInvalidInput(errors.New("value too long")))
}
