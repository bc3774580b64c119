package database

import (
	"errors"
	"testing"

	"novel-relay/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapWriteError(t *testing.T) {
	t.Run("Foreign key violation is a generic not found", func(t *testing.T) {
		err := mapWriteError("failed to insert vote", &pgconn.PgError{
			Code:           "23503",
			ConstraintName: "extension_votes_extension_id_fkey",
		})
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NotErrorIs(t, err, models.ErrStoryNotFound)
		assert.Contains(t, err.Error(), "failed to insert vote")
		assert.Contains(t, err.Error(), "extension_votes_extension_id_fkey")
	})

	t.Run("Unique violation is a conflict", func(t *testing.T) {
		err := mapWriteError("failed to insert vote", &pgconn.PgError{Code: "23505"})
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("Other errors are wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := mapWriteError("failed to save story", cause)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, models.ErrNotFound)
	})
}
