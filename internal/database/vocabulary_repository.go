package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingopal/pkg/models"
)

// VocabularyRepository handles persistence of vocabulary items and their SRS
// state. Updates use optimistic versioning: a stale version loses the race
// and surfaces models.ErrConflict.
type VocabularyRepository struct {
	db *sqlx.DB
}

// NewVocabularyRepository creates a new repository instance.
func NewVocabularyRepository(db *sqlx.DB) *VocabularyRepository {
	return &VocabularyRepository{db: db}
}

// Create inserts a new vocabulary item.
func (r *VocabularyRepository) Create(ctx context.Context, item *models.VocabularyItem) error {
	query := `
		INSERT INTO vocabulary_items (
			id, user_id, word, translation, language, native_language,
			srs_level, ease_factor, interval_days, next_review, last_reviewed_at,
			total_reviews, correct_reviews, incorrect_reviews, item_streak, best_item_streak,
			review_history, is_mastered, mastered_at, archived, version,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		          $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.UserID, item.Word, item.Translation, item.Language, item.NativeLanguage,
		item.SRSLevel, item.EaseFactor, item.IntervalDays, item.NextReview, item.LastReviewedAt,
		item.TotalReviews, item.CorrectReviews, item.IncorrectReviews, item.ItemStreak, item.BestItemStreak,
		item.ReviewHistory, item.IsMastered, item.MasteredAt, item.Archived, item.Version,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create vocabulary item: %w", err)
	}
	return nil
}

// GetByID returns a vocabulary item by its id.
func (r *VocabularyRepository) GetByID(ctx context.Context, id string) (*models.VocabularyItem, error) {
	var item models.VocabularyItem
	err := r.db.GetContext(ctx, &item, "SELECT * FROM vocabulary_items WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrItemNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vocabulary item: %w", err)
	}
	return &item, nil
}

// FindByWord returns the user's item for a word/language pair, or nil when
// none exists.
func (r *VocabularyRepository) FindByWord(ctx context.Context, userID, word, language string) (*models.VocabularyItem, error) {
	var item models.VocabularyItem
	err := r.db.GetContext(ctx, &item,
		"SELECT * FROM vocabulary_items WHERE user_id = $1 AND word = $2 AND language = $3",
		userID, word, language)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vocabulary item: %w", err)
	}
	return &item, nil
}

// Update persists the full mutable state of an item. The row must still
// carry the version the item was loaded with; otherwise a concurrent review
// won and the caller gets models.ErrConflict.
func (r *VocabularyRepository) Update(ctx context.Context, item *models.VocabularyItem) error {
	query := `
		UPDATE vocabulary_items SET
			srs_level = $1,
			ease_factor = $2,
			interval_days = $3,
			next_review = $4,
			last_reviewed_at = $5,
			total_reviews = $6,
			correct_reviews = $7,
			incorrect_reviews = $8,
			item_streak = $9,
			best_item_streak = $10,
			review_history = $11,
			is_mastered = $12,
			mastered_at = $13,
			archived = $14,
			version = version + 1,
			updated_at = $15
		WHERE id = $16 AND version = $17
	`
	result, err := r.db.ExecContext(ctx, query,
		item.SRSLevel, item.EaseFactor, item.IntervalDays, item.NextReview, item.LastReviewedAt,
		item.TotalReviews, item.CorrectReviews, item.IncorrectReviews, item.ItemStreak, item.BestItemStreak,
		item.ReviewHistory, item.IsMastered, item.MasteredAt, item.Archived,
		time.Now().UTC(), item.ID, item.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update vocabulary item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM vocabulary_items WHERE id = $1)", item.ID); err != nil {
			return fmt.Errorf("failed to check vocabulary item: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", models.ErrItemNotFound, item.ID)
		}
		return fmt.Errorf("%w: vocabulary item %s", models.ErrConflict, item.ID)
	}
	item.Version++
	return nil
}

// Archive soft-deletes an item. Archived items are excluded from due queries
// and can no longer be reviewed.
func (r *VocabularyRepository) Archive(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE vocabulary_items SET archived = TRUE, version = version + 1, updated_at = $1 WHERE id = $2",
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to archive vocabulary item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", models.ErrItemNotFound, id)
	}
	return nil
}

// DueForReview returns the user's non-archived items due at or before now,
// earliest due date first, ties broken toward the least-mastered item.
func (r *VocabularyRepository) DueForReview(ctx context.Context, userID string, now time.Time, limit int) ([]models.VocabularyItem, error) {
	query := `
		SELECT * FROM vocabulary_items
		WHERE user_id = $1 AND archived = FALSE AND next_review <= $2
		ORDER BY next_review ASC, srs_level ASC
		LIMIT $3
	`
	var items []models.VocabularyItem
	if err := r.db.SelectContext(ctx, &items, query, userID, now, limit); err != nil {
		return nil, fmt.Errorf("failed to get due items: %w", err)
	}
	return items, nil
}

// CountDue returns how many non-archived items are due at or before now.
func (r *VocabularyRepository) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM vocabulary_items WHERE user_id = $1 AND archived = FALSE AND next_review <= $2",
		userID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to count due items: %w", err)
	}
	return count, nil
}

// UpcomingReviews returns the next_review timestamps of the user's
// non-archived items scheduled before the horizon. Bucketing into local days
// is the caller's concern.
func (r *VocabularyRepository) UpcomingReviews(ctx context.Context, userID string, until time.Time) ([]time.Time, error) {
	var rows []struct {
		NextReview time.Time `db:"next_review"`
	}
	err := r.db.SelectContext(ctx, &rows,
		"SELECT next_review FROM vocabulary_items WHERE user_id = $1 AND archived = FALSE AND next_review < $2 ORDER BY next_review ASC",
		userID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming reviews: %w", err)
	}
	reviews := make([]time.Time, len(rows))
	for i, row := range rows {
		reviews[i] = row.NextReview
	}
	return reviews, nil
}

// UsersWithDue returns users holding due items, most backlogged first. Used
// by the reminder scan.
func (r *VocabularyRepository) UsersWithDue(ctx context.Context, now time.Time, limit int) ([]models.DueCount, error) {
	query := `
		SELECT user_id, COUNT(*) AS due FROM vocabulary_items
		WHERE archived = FALSE AND next_review <= $1
		GROUP BY user_id
		ORDER BY due DESC
		LIMIT $2
	`
	var counts []models.DueCount
	if err := r.db.SelectContext(ctx, &counts, query, now, limit); err != nil {
		return nil, fmt.Errorf("failed to get users with due items: %w", err)
	}
	return counts, nil
}
