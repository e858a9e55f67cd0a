package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct {
	ID   uint `gorm:"primarykey"`
	Name string
}

func TestConnect_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	m := NewManager(Config{Type: TypeSQLite, Path: path}, zerolog.Nop())

	require.NoError(t, m.Connect())
	defer m.Close()
	require.NoError(t, m.Setup(&testRow{}))

	require.NoError(t, m.DB.Create(&testRow{Name: "a"}).Error)
	var got testRow
	require.NoError(t, m.DB.First(&got).Error)
	assert.Equal(t, "a", got.Name)
	assert.FileExists(t, path)
}

func TestConnect_UnsupportedType(t *testing.T) {
	m := NewManager(Config{Type: "mysql"}, zerolog.Nop())
	assert.Error(t, m.Connect())
}

func TestConnect_PostgresFallsBackToSQLite(t *testing.T) {
	m := NewManager(Config{
		Type:     TypePostgres,
		Path:     filepath.Join(t.TempDir(), "fallback.db"),
		Host:     "127.0.0.1",
		Port:     "1",
		Username: "u",
		Password: "p",
		Database: "d",
	}, zerolog.Nop())

	require.NoError(t, m.Connect())
	defer m.Close()
	assert.Equal(t, "sqlite", m.DB.Dialector.Name())
}

func TestClose_NotConnected(t *testing.T) {
	m := NewManager(Config{}, zerolog.Nop())
	assert.NoError(t, m.Close())
}
