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

// ProgressionRepository handles persistence of per-user progression records.
type ProgressionRepository struct {
	db *sqlx.DB
}

// NewProgressionRepository creates a new repository instance.
func NewProgressionRepository(db *sqlx.DB) *ProgressionRepository {
	return &ProgressionRepository{db: db}
}

// Get returns the user's progression record.
func (r *ProgressionRepository) Get(ctx context.Context, userID string) (*models.UserProgression, error) {
	var p models.UserProgression
	err := r.db.GetContext(ctx, &p, "SELECT * FROM user_progressions WHERE user_id = $1", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user progression: %w", err)
	}
	return &p, nil
}

// GetOrCreate returns the user's progression record, lazily creating it with
// defaults on the first XP-earning event.
func (r *ProgressionRepository) GetOrCreate(ctx context.Context, userID string) (*models.UserProgression, error) {
	p, err := r.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	fresh := &models.UserProgression{
		UserID:           userID,
		DailyGoalXP:      50,
		ProficiencyLevel: "A1",
		Timezone:         "UTC",
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_progressions (user_id, daily_goal_xp, proficiency_level, timezone, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, fresh.UserID, fresh.DailyGoalXP, fresh.ProficiencyLevel, fresh.Timezone, fresh.Version, fresh.CreatedAt, fresh.UpdatedAt)
	if err != nil {
		// Two racing first events both miss the read; the insert loser
		// just loads the winner's row.
		if p, getErr := r.Get(ctx, userID); getErr == nil {
			return p, nil
		}
		return nil, fmt.Errorf("failed to create user progression: %w", err)
	}
	return fresh, nil
}

const progressionUpdateQuery = `
	UPDATE user_progressions SET
		total_xp = $1,
		weekly_xp = $2,
		daily_xp = $3,
		daily_goal_xp = $4,
		current_streak = $5,
		longest_streak = $6,
		last_activity_date = $7,
		proficiency_level = $8,
		timezone = $9,
		lessons_completed = $10,
		vocabulary_mastered = $11,
		corrections_given = $12,
		messages_sent = $13,
		reviews_completed = $14,
		version = version + 1,
		updated_at = $15
	WHERE user_id = $16 AND version = $17
`

// Update persists the record with an optimistic version check; a concurrent
// writer having bumped the version surfaces models.ErrConflict.
func (r *ProgressionRepository) Update(ctx context.Context, p *models.UserProgression) error {
	return r.update(ctx, r.db, p)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *ProgressionRepository) update(ctx context.Context, ex execer, p *models.UserProgression) error {
	result, err := ex.ExecContext(ctx, progressionUpdateQuery,
		p.TotalXP, p.WeeklyXP, p.DailyXP, p.DailyGoalXP,
		p.CurrentStreak, p.LongestStreak, p.LastActivityDate, p.ProficiencyLevel, p.Timezone,
		p.LessonsCompleted, p.VocabularyMastered, p.CorrectionsGiven, p.MessagesSent, p.ReviewsCompleted,
		time.Now().UTC(), p.UserID, p.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update user progression: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: user progression %s", models.ErrConflict, p.UserID)
	}
	p.Version++
	return nil
}

// ResetWindow zeroes one user's daily or weekly XP counter. Called by the
// external reset collaborator, never by the engine's own operations.
func (r *ProgressionRepository) ResetWindow(ctx context.Context, userID string, window models.Window) error {
	column, err := windowColumn(window)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(
		"UPDATE user_progressions SET %s = 0, version = version + 1, updated_at = $1 WHERE user_id = $2", column)
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to reset %s window: %w", window, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", models.ErrUserNotFound, userID)
	}
	return nil
}

// ResetWindowAll zeroes the window counter for every user and returns how
// many records changed.
func (r *ProgressionRepository) ResetWindowAll(ctx context.Context, window models.Window) (int64, error) {
	column, err := windowColumn(window)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(
		"UPDATE user_progressions SET %s = 0, version = version + 1, updated_at = $1 WHERE %s <> 0", column, column)
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to reset %s windows: %w", window, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func windowColumn(window models.Window) (string, error) {
	switch window {
	case models.WindowDaily:
		return "daily_xp", nil
	case models.WindowWeekly:
		return "weekly_xp", nil
	default:
		return "", fmt.Errorf("unknown window %q", window)
	}
}
