package pg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/tribehub/notify/pkg/pg"
)

func TestErrorClassifiers(t *testing.T) {
	t.Parallel()

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}
	badUUID := &pgconn.PgError{Code: "22P02"}

	assert.True(t, pg.IsNotFoundError(fmt.Errorf("query: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(nil))
	assert.False(t, pg.IsNotFoundError(errors.New("other")))

	assert.True(t, pg.IsDuplicateKeyError(dup))
	assert.False(t, pg.IsDuplicateKeyError(fk))
	assert.False(t, pg.IsDuplicateKeyError(nil))

	assert.True(t, pg.IsForeignKeyViolationError(fk))
	assert.False(t, pg.IsForeignKeyViolationError(dup))

	assert.True(t, pg.IsInvalidTextRepresentation(badUUID))
	assert.False(t, pg.IsInvalidTextRepresentation(errors.New("22P02")))
}

func TestConnect_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(t.Context(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)

	_, err = pg.Connect(t.Context(), pg.Config{ConnectionString: "postgres://%zz"})
	assert.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}

func TestMigrate_RequiresFS(t *testing.T) {
	t.Parallel()

	err := pg.Migrate(t.Context(), nil, pg.Config{}, nil, ".", nil)
	assert.ErrorIs(t, err, pg.ErrFailedToApplyMigrations)
	assert.ErrorIs(t, err, pg.ErrMigrationsNotProvided)
}
