package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingopal/internal/database"
	"github.com/example/lingopal/internal/logger"
	"github.com/example/lingopal/internal/progression"
)

func newTestEngine(t *testing.T) *progression.Engine {
	t.Helper()
	db, err := database.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	items := database.NewVocabularyRepository(db)
	users := database.NewProgressionRepository(db)
	awards := database.NewAwardRepository(db, users)
	return progression.New(items, users, awards, logger.NewNop())
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportCSV(t *testing.T) {
	engine := newTestEngine(t)
	path := writeCSV(t, "word,translation\nperro,dog\ngato,cat\nir (went),to go\n")

	cfg := DefaultConfig()
	cfg.FilePath = path
	cfg.UserID = "user-1"
	cfg.Language = "es"
	cfg.NativeLanguage = "en"

	result, err := Import(context.Background(), engine, cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Errors)

	// Parenthesized extras are stripped before saving.
	items, err := engine.DueForReview(context.Background(), "user-1", 10)
	require.NoError(t, err)
	words := make([]string, 0, len(items))
	for _, item := range items {
		words = append(words, item.Word)
	}
	assert.Contains(t, words, "ir")
}

func TestImportCSVDuplicatesSkipped(t *testing.T) {
	engine := newTestEngine(t)
	path := writeCSV(t, "word,translation\nperro,dog\nperro,hound\n")

	cfg := DefaultConfig()
	cfg.FilePath = path
	cfg.UserID = "user-1"
	cfg.Language = "es"
	cfg.NativeLanguage = "en"

	result, err := Import(context.Background(), engine, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped, "first save wins")
}

func TestImportCSVRowErrors(t *testing.T) {
	engine := newTestEngine(t)
	path := writeCSV(t, "word,translation\nperro,dog\n,missing-word\nsolo\n")

	cfg := DefaultConfig()
	cfg.FilePath = path
	cfg.UserID = "user-1"
	cfg.Language = "es"
	cfg.NativeLanguage = "en"

	result, err := Import(context.Background(), engine, cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 1, result.Created)
	assert.Len(t, result.Errors, 2, "bad rows are collected, not fatal")
}

func TestImportMissingFile(t *testing.T) {
	engine := newTestEngine(t)
	cfg := DefaultConfig()
	cfg.FilePath = filepath.Join(t.TempDir(), "absent.csv")
	cfg.UserID = "user-1"
	cfg.Language = "es"
	cfg.NativeLanguage = "en"

	_, err := Import(context.Background(), engine, cfg)
	assert.Error(t, err)
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 1, columnToIndex("B"))
	assert.Equal(t, 25, columnToIndex("Z"))
	assert.Equal(t, 26, columnToIndex("AA"))
}
