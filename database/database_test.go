package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeLogNewestFirst(t *testing.T) {
	log, err := OpenChangeLog(filepath.Join(t.TempDir(), "changelog.db"))
	require.NoError(t, err)
	defer log.Close()

	ctx := context.Background()
	require.NoError(t, log.Record(ctx, Change{PhotoID: 1, UserID: 7, Field: FieldTitle, OldValue: "a", NewValue: "b"}))
	require.NoError(t, log.Record(ctx, Change{PhotoID: 2, UserID: 7, Field: FieldTags, OldValue: "", NewValue: "x"}))
	require.NoError(t, log.Record(ctx, Change{PhotoID: 1, UserID: 7, Field: FieldDescription, OldValue: "", NewValue: "d"}))

	changes, err := log.ListForPhoto(ctx, 1)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, FieldDescription, changes[0].Field)
	assert.Equal(t, FieldTitle, changes[1].Field)
	assert.NotEmpty(t, changes[0].ID)
	assert.NotZero(t, changes[0].ChangedAt)
	assert.Equal(t, "b", changes[1].NewValue)
}

func TestChangeLogUnknownPhotoIsEmpty(t *testing.T) {
	log, err := OpenChangeLog(filepath.Join(t.TempDir(), "changelog.db"))
	require.NoError(t, err)
	defer log.Close()

	changes, err := log.ListForPhoto(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestInitGormDBCreatesDirectoryAndTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "photos.db")

	db, err := InitGormDB(path)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, AutoMigrateModels(db))
	for _, table := range []string{"photos", "albums", "users"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	var mode string
	require.NoError(t, db.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)
}
