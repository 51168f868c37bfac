// Package progression is the engine facade: the XP ledger, the day-streak
// tracker, vocabulary review scheduling and the read-side aggregation that
// callers (controllers, jobs) invoke. Callers decide that an activity
// happened; the engine decides how much progression state changes and when a
// review becomes due.
package progression

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/example/lingopal/internal/gamification"
	"github.com/example/lingopal/internal/logger"
	"github.com/example/lingopal/internal/srs"
	"github.com/example/lingopal/pkg/models"
)

// Engine wires the stores, the SM-2 scheduler and the clock into the
// operations callers consume. Every operation is one atomic read-modify-write
// against the owning record; concurrent writers are serialized by the stores'
// optimistic versioning and surface models.ErrConflict for the caller to
// retry.
type Engine struct {
	items    ItemStore
	users    ProgressionStore
	awards   AwardStore
	srs      *srs.Scheduler
	clock    clock.Clock
	log      *logger.Logger
	validate *validator.Validate
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects a clock, letting tests drive date-boundary logic with
// clock.NewMock().
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithScheduler overrides the SM-2 tuning parameters.
func WithScheduler(s *srs.Scheduler) Option {
	return func(e *Engine) { e.srs = s }
}

// New creates an Engine with default SM-2 parameters and the real clock.
func New(items ItemStore, users ProgressionStore, awards AwardStore, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		items:    items,
		users:    users,
		awards:   awards,
		srs:      srs.New(),
		clock:    clock.New(),
		log:      log.With("component", "progression"),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Review grades one recall of a vocabulary item and persists the resulting
// SRS state.
func (e *Engine) Review(ctx context.Context, itemID string, quality, responseMs int) (*srs.ReviewResult, error) {
	item, err := e.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	result, err := e.srs.Review(item, quality, responseMs, e.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := e.items.Update(ctx, item); err != nil {
		return nil, err
	}
	e.log.Debug("item reviewed",
		"item_id", itemID,
		"quality", quality,
		"srs_level", result.SRSLevel,
		"interval_days", result.IntervalDays,
		"just_mastered", result.JustMastered,
	)
	return result, nil
}

// AwardResult reports the outcome of one XP award.
type AwardResult struct {
	BaseAmount     int64   `json:"baseAmount"`
	AdjustedAmount int64   `json:"adjustedAmount"`
	Multiplier     float64 `json:"multiplier"`
	TotalXP        int64   `json:"totalXP"`
	Level          int     `json:"level"`
	LeveledUp      bool    `json:"leveledUp"`
	// Duplicate marks a replayed idempotency key; counters were left
	// untouched and the stored award is echoed back.
	Duplicate bool `json:"duplicate,omitempty"`
}

type awardOptions struct {
	idempotencyKey string
	source         string
}

// AwardOption configures a single AwardXP call.
type AwardOption func(*awardOptions)

// WithIdempotencyKey makes the award replay-safe: a second call with the
// same key returns the stored award without re-applying it. Callers granting
// one-time bonuses encode the logical event in the key.
func WithIdempotencyKey(key string) AwardOption {
	return func(o *awardOptions) { o.idempotencyKey = key }
}

// WithSource tags the journal entry with its origin, e.g. a chat partner id.
func WithSource(source string) AwardOption {
	return func(o *awardOptions) { o.source = source }
}

// AwardXP applies a base amount to the user's XP counters after the streak
// multiplier, records the award in the journal and reports level-up
// transitions. Without an idempotency key the ledger is deliberately not
// idempotent: calling it twice for the same logical event double-counts.
func (e *Engine) AwardXP(ctx context.Context, userID string, baseAmount int64, reason string, opts ...AwardOption) (*AwardResult, error) {
	if baseAmount < 0 {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidAmount, baseAmount)
	}
	var o awardOptions
	for _, opt := range opts {
		opt(&o)
	}

	p, err := e.users.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if o.idempotencyKey != "" {
		stored, err := e.awards.FindByKey(ctx, userID, o.idempotencyKey)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			return &AwardResult{
				BaseAmount:     stored.BaseAmount,
				AdjustedAmount: stored.AdjustedAmount,
				Multiplier:     stored.Multiplier,
				TotalXP:        p.TotalXP,
				Level:          gamification.Level(p.TotalXP),
				Duplicate:      true,
			}, nil
		}
	}

	multiplier := gamification.StreakMultiplier(p.CurrentStreak)
	adjusted := gamification.AdjustXP(baseAmount, multiplier)
	levelBefore := gamification.Level(p.TotalXP)
	p.AddXP(adjusted)
	levelAfter := gamification.Level(p.TotalXP)

	award := &models.XPAward{
		ID:             uuid.NewString(),
		UserID:         userID,
		BaseAmount:     baseAmount,
		AdjustedAmount: adjusted,
		Multiplier:     multiplier,
		Reason:         reason,
		Source:         o.source,
		AwardedAt:      e.clock.Now(),
	}
	if o.idempotencyKey != "" {
		key := o.idempotencyKey
		award.IdempotencyKey = &key
	}
	if err := e.awards.Record(ctx, p, award); err != nil {
		return nil, err
	}

	e.log.Debug("xp awarded",
		"user_id", userID,
		"reason", reason,
		"base", baseAmount,
		"adjusted", adjusted,
		"total_xp", p.TotalXP,
		"leveled_up", levelAfter > levelBefore,
	)
	return &AwardResult{
		BaseAmount:     baseAmount,
		AdjustedAmount: adjusted,
		Multiplier:     multiplier,
		TotalXP:        p.TotalXP,
		Level:          levelAfter,
		LeveledUp:      levelAfter > levelBefore,
	}, nil
}

// RecordActivity advances the user's consecutive-day streak for activity on
// the given day. Same-day repeats are no-ops and skip the write entirely.
func (e *Engine) RecordActivity(ctx context.Context, userID string, day models.Date) (*models.StreakResult, error) {
	day, err := models.ParseDate(string(day))
	if err != nil {
		return nil, err
	}
	p, err := e.users.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	result, err := p.RecordActivity(day)
	if err != nil {
		return nil, err
	}
	if !result.StreakUpdated {
		return &result, nil
	}
	if err := e.users.Update(ctx, p); err != nil {
		return nil, err
	}
	e.log.Debug("activity recorded",
		"user_id", userID,
		"day", day,
		"current_streak", result.CurrentStreak,
		"milestone", result.Milestone,
	)
	return &result, nil
}

// IncrementStat bumps one of the user's activity counters. The counters are
// informational bookkeeping for calling code and carry no engine invariants.
func (e *Engine) IncrementStat(ctx context.Context, userID, stat string, delta int) error {
	p, err := e.users.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if err := p.IncrementStat(stat, delta); err != nil {
		return err
	}
	return e.users.Update(ctx, p)
}

// ResetWindow zeroes one user's daily or weekly XP counter. Invoked by the
// external reset collaborator (cron), never by the engine itself.
func (e *Engine) ResetWindow(ctx context.Context, userID string, window models.Window) error {
	if !window.Valid() {
		return fmt.Errorf("unknown window %q", window)
	}
	return e.users.ResetWindow(ctx, userID, window)
}

// ResetWindows is the bulk form of ResetWindow across all users.
func (e *Engine) ResetWindows(ctx context.Context, window models.Window) (int64, error) {
	if !window.Valid() {
		return 0, fmt.Errorf("unknown window %q", window)
	}
	count, err := e.users.ResetWindowAll(ctx, window)
	if err != nil {
		return 0, err
	}
	e.log.Info("xp window reset", "window", window, "users", count)
	return count, nil
}

// SaveVocabularyParams describes a word to save for a user.
type SaveVocabularyParams struct {
	UserID         string `validate:"required"`
	Word           string `validate:"required"`
	Translation    string `validate:"required"`
	Language       string `validate:"required"`
	NativeLanguage string `validate:"required"`
}

// SaveVocabulary creates a vocabulary item with fresh SRS state, due
// immediately. Saving a word the user already has for that language returns
// the existing item; first save wins. The second return reports whether a
// new item was created.
func (e *Engine) SaveVocabulary(ctx context.Context, params SaveVocabularyParams) (*models.VocabularyItem, bool, error) {
	if err := e.validate.Struct(params); err != nil {
		return nil, false, fmt.Errorf("invalid vocabulary: %w", err)
	}
	existing, err := e.items.FindByWord(ctx, params.UserID, params.Word, params.Language)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := e.clock.Now()
	item := &models.VocabularyItem{
		ID:             uuid.NewString(),
		UserID:         params.UserID,
		Word:           params.Word,
		Translation:    params.Translation,
		Language:       params.Language,
		NativeLanguage: params.NativeLanguage,
		SRSLevel:       0,
		EaseFactor:     2.5,
		IntervalDays:   0,
		NextReview:     now,
		ReviewHistory:  models.ReviewHistory{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.items.Create(ctx, item); err != nil {
		return nil, false, err
	}
	e.log.Debug("vocabulary saved", "user_id", params.UserID, "word", params.Word, "item_id", item.ID)
	return item, true, nil
}

// ArchiveVocabulary soft-deletes an item. Archived items stop appearing in
// due queries and forecasts and reject further reviews.
func (e *Engine) ArchiveVocabulary(ctx context.Context, itemID string) error {
	return e.items.Archive(ctx, itemID)
}

// UsersWithDueItems lists users holding due reviews, for the reminder scan.
func (e *Engine) UsersWithDueItems(ctx context.Context, limit int) ([]models.DueCount, error) {
	return e.items.UsersWithDue(ctx, e.clock.Now(), limit)
}

// userLocation resolves the record's IANA timezone, falling back to UTC for
// unknown names.
func userLocation(p *models.UserProgression) *time.Location {
	if p == nil || p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
