package db

import (
	"errors"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapErrorKeepsDriverError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "voyages_nom_annee_key", Message: "duplicate key"}

	err := wrapError("query", pgErr)

	var dbErr *DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "query", dbErr.Op)
	assert.Contains(t, err.Error(), "duplicate key")

	var unwrapped *pgconn.PgError
	require.ErrorAs(t, err, &unwrapped)
	assert.Equal(t, "voyages_nom_annee_key", unwrapped.ConstraintName)
}

func TestWrapErrorDoesNotDoubleWrap(t *testing.T) {
	first := wrapError("query", errors.New("boom"))
	second := wrapError("collect", first)
	assert.Same(t, first, second)
	assert.NoError(t, wrapError("query", nil))
}

func TestToInt64(t *testing.T) {
	for _, v := range []any{int64(7), int32(7), 7, int16(7)} {
		n, ok := toInt64(v)
		assert.True(t, ok)
		assert.Equal(t, int64(7), n)
	}
	_, ok := toInt64("7")
	assert.False(t, ok)
}

func TestBuildRendersDollarPlaceholders(t *testing.T) {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := build(sb.Select("id").From("voyages").Where(squirrel.Eq{"nom": "HAJJ", "annee": 2025}))
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM voyages WHERE annee = $1 AND nom = $2", sql)
	assert.Equal(t, []any{2025, "HAJJ"}, args)
}

func TestBuildReportsBuilderErrors(t *testing.T) {
	_, _, err := build(squirrel.Select().From("x"))
	assert.Error(t, err)
}
