package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid MySQL Connection", func(t *testing.T) {
		cfg := Config{
			Driver:         DriverMySQL,
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "modsync",
			TimeoutSeconds: 2,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("SQLite File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "history.db")

		db, err := Connect(Config{Driver: DriverSQLite, Name: path})
		require.NoError(t, err)
		require.NotNil(t, db)
		assert.FileExists(t, path)
	})

	t.Run("SQLite Empty Path", func(t *testing.T) {
		db, err := Connect(Config{Driver: DriverSQLite})
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		_, err := Connect(Config{Driver: "postgres", Name: "x"})
		assert.ErrorContains(t, err, "unsupported database driver")
	})
}
