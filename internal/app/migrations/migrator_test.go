package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/bmvt?sslmode=disable", toPgx5URL("postgres://u:p@db:5432/bmvt?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/bmvt", toPgx5URL("postgresql://u@db/bmvt"))
	assert.Equal(t, "pgx5://already", toPgx5URL("pgx5://already"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(files, "sql/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(files, down)
		assert.NoError(t, err, "missing down migration for %s", up)
	}
}

func TestInitialSchemaEnforcesUniqueness(t *testing.T) {
	content, err := fs.ReadFile(files, "sql/000001_init.up.sql")
	require.NoError(t, err)
	sql := string(content)

	assert.Contains(t, sql, "CONSTRAINT voyages_nom_annee_key UNIQUE (nom, annee)")
	assert.Contains(t, sql, "passengers_flight_seat_key ON passengers (flight_id, UPPER(seat)) WHERE seat <> '—'")
	assert.Contains(t, sql, "CONSTRAINT payments_ref_key UNIQUE (ref)")
	assert.Contains(t, sql, "users_email_key ON users (LOWER(email))")
}

func TestPhotoOwnershipMigration(t *testing.T) {
	content, err := fs.ReadFile(files, "sql/000002_photo_ownership.up.sql")
	require.NoError(t, err)
	sql := string(content)

	assert.Contains(t, sql, "ALTER TABLE passengers ADD COLUMN IF NOT EXISTS photo_owned BOOLEAN NOT NULL DEFAULT FALSE")
	assert.Contains(t, sql, "ALTER TABLE room_occupants ADD COLUMN IF NOT EXISTS photo_owned BOOLEAN NOT NULL DEFAULT FALSE")
}
