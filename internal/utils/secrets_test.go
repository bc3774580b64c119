package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"novel-relay/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSecret(t *testing.T) {
	dir := t.TempDir()
	prev := utils.SecretsDir
	utils.SecretsDir = dir
	t.Cleanup(func() { utils.SecretsDir = prev })

	t.Run("File wins over env", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("  from-file\n"), 0o600))
		t.Setenv("JWT_SECRET", "from-env")

		secret, err := utils.ReadSecret("jwt_secret")
		require.NoError(t, err)
		assert.Equal(t, "from-file", secret)
	})

	t.Run("Env fallback", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "pass")
		secret, err := utils.ReadSecret("db_password")
		require.NoError(t, err)
		assert.Equal(t, "pass", secret)
	})

	t.Run("Empty file is an error", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "redis_password"), []byte(" "), 0o600))
		_, err := utils.ReadSecret("redis_password")
		assert.Error(t, err)
	})

	t.Run("Missing everywhere", func(t *testing.T) {
		_, err := utils.ReadSecret("missing_secret")
		assert.Error(t, err)
	})
}
