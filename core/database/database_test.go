package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Driver:         DriverMySQL,
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "ledger",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		db, err := Connect(Config{Driver: "oracle"})
		assert.Error(t, err)
		assert.Nil(t, db)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})

	t.Run("SQLite Without Name", func(t *testing.T) {
		db, err := Connect(Config{Driver: DriverSQLite})
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("SQLite In Memory", func(t *testing.T) {
		db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)
		require.NotNil(t, db)
		assert.NoError(t, Close(db))
	})
}

func TestConnect_TranslatesDuplicateKey(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.Exec("CREATE TABLE dedup_keys (k TEXT PRIMARY KEY)").Error)
	require.NoError(t, db.Exec("INSERT INTO dedup_keys (k) VALUES ('a')").Error)

	type Key struct {
		K string `gorm:"primaryKey;column:k"`
	}
	err = db.Table("dedup_keys").Create(&Key{K: "a"}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "expected duplicate key, got %v", err)
}

func TestDialector(t *testing.T) {
	tests := []struct {
		driver string
		name   string
	}{
		{DriverPostgres, "postgres"},
		{"", "postgres"},
		{DriverMySQL, "mysql"},
		{DriverSQLite, "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Dialector(Config{Driver: tt.driver, Name: "ledger"}, 5)
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
