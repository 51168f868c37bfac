// Package importer bulk-loads vocabulary for a user from Excel or CSV files.
// Every row goes through the engine's SaveVocabulary, so imported items get
// the same SRS defaults and duplicate handling as interactively saved ones.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/lingopal/internal/progression"
)

// Config defines one import run.
type Config struct {
	FilePath       string // path to the Excel or CSV file
	UserID         string // owner of the imported items
	Language       string // language being learned
	NativeLanguage string // user's native language
	SheetName      string // Excel sheet to read
	WordColumn     string // Excel column holding the word
	TransColumn    string // Excel column holding the translation
	StartRow       int    // first data row, 1-based (skips headers)
}

// DefaultConfig returns the standard two-column layout with a header row.
func DefaultConfig() Config {
	return Config{
		SheetName:   "Sheet1",
		WordColumn:  "A",
		TransColumn: "B",
		StartRow:    2,
	}
}

// Result tallies one import run.
type Result struct {
	TotalProcessed int
	Created        int
	Skipped        int // duplicates of already-saved words
	Errors         []string
}

// Import loads the file and saves each row through the engine. Row-level
// failures are collected in the result; only file-level failures abort.
func Import(ctx context.Context, engine *progression.Engine, cfg Config) (*Result, error) {
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		return importFromCSV(ctx, engine, cfg)
	}
	return importFromExcel(ctx, engine, cfg)
}

func importFromExcel(ctx context.Context, engine *progression.Engine, cfg Config) (*Result, error) {
	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &Result{Errors: make([]string, 0)}
	wordIdx := columnToIndex(cfg.WordColumn)
	transIdx := columnToIndex(cfg.TransColumn)

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		var word, translation string
		if wordIdx < len(row) {
			word = row[wordIdx]
		}
		if transIdx < len(row) {
			translation = row[transIdx]
		}
		result.TotalProcessed++
		if err := saveRow(ctx, engine, cfg, result, word, translation); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

func importFromCSV(ctx context.Context, engine *progression.Engine, cfg Config) (*Result, error) {
	file, err := os.Open(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	result := &Result{Errors: make([]string, 0)}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++
		if rowNum < cfg.StartRow {
			continue
		}
		var word, translation string
		if len(row) > 0 {
			word = row[0]
		}
		if len(row) > 1 {
			translation = row[1]
		}
		result.TotalProcessed++
		if err := saveRow(ctx, engine, cfg, result, word, translation); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

func saveRow(ctx context.Context, engine *progression.Engine, cfg Config, result *Result, word, translation string) error {
	word = cleanWord(word)
	translation = strings.TrimSpace(translation)
	if word == "" {
		return fmt.Errorf("word cannot be empty")
	}
	if translation == "" {
		return fmt.Errorf("translation cannot be empty")
	}

	_, created, err := engine.SaveVocabulary(ctx, progression.SaveVocabularyParams{
		UserID:         cfg.UserID,
		Word:           word,
		Translation:    translation,
		Language:       cfg.Language,
		NativeLanguage: cfg.NativeLanguage,
	})
	if err != nil {
		return err
	}
	if created {
		result.Created++
	} else {
		result.Skipped++
	}
	return nil
}

// cleanWord strips parenthesized extras like "go (went, gone)".
func cleanWord(word string) string {
	if idx := strings.Index(word, "("); idx > 0 {
		return strings.TrimSpace(word[:idx])
	}
	return strings.TrimSpace(word)
}

// columnToIndex converts an Excel column letter to a zero-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
