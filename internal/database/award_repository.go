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

// AwardRepository handles the append-only XP award journal.
type AwardRepository struct {
	db          *sqlx.DB
	progression *ProgressionRepository
}

// NewAwardRepository creates a new repository instance. It shares the
// progression repository so a counter update and its journal entry commit in
// one transaction.
func NewAwardRepository(db *sqlx.DB, progression *ProgressionRepository) *AwardRepository {
	return &AwardRepository{db: db, progression: progression}
}

const awardInsertQuery = `
	INSERT INTO xp_awards (
		id, user_id, base_amount, adjusted_amount, multiplier,
		reason, source, idempotency_key, awarded_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Record applies an award atomically: the versioned progression update and
// the journal insert commit together or not at all.
func (r *AwardRepository) Record(ctx context.Context, p *models.UserProgression, award *models.XPAward) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.progression.update(ctx, tx, p); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, awardInsertQuery,
		award.ID, award.UserID, award.BaseAmount, award.AdjustedAmount, award.Multiplier,
		award.Reason, award.Source, award.IdempotencyKey, award.AwardedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert xp award: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit award: %w", err)
	}
	return nil
}

// FindByKey returns the award previously recorded under an idempotency key,
// or nil when the key is unused.
func (r *AwardRepository) FindByKey(ctx context.Context, userID, key string) (*models.XPAward, error) {
	var award models.XPAward
	err := r.db.GetContext(ctx, &award,
		"SELECT * FROM xp_awards WHERE user_id = $1 AND idempotency_key = $2", userID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find xp award: %w", err)
	}
	return &award, nil
}

// ListSince returns the user's awards recorded at or after the given time,
// oldest first.
func (r *AwardRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]models.XPAward, error) {
	var awards []models.XPAward
	err := r.db.SelectContext(ctx, &awards,
		"SELECT * FROM xp_awards WHERE user_id = $1 AND awarded_at >= $2 ORDER BY awarded_at ASC",
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list xp awards: %w", err)
	}
	return awards, nil
}

// UsageBySource groups a reason's awards by their source tag, highest XP
// first. Backs the partner-usage breakdown.
func (r *AwardRepository) UsageBySource(ctx context.Context, userID, reason string, since time.Time) ([]models.SourceUsage, error) {
	query := `
		SELECT source, COUNT(*) AS awards, SUM(adjusted_amount) AS xp_earned
		FROM xp_awards
		WHERE user_id = $1 AND reason = $2 AND awarded_at >= $3
		GROUP BY source
		ORDER BY xp_earned DESC
	`
	var usage []models.SourceUsage
	if err := r.db.SelectContext(ctx, &usage, query, userID, reason, since); err != nil {
		return nil, fmt.Errorf("failed to get usage by source: %w", err)
	}
	return usage, nil
}
