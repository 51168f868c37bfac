package progression

import (
	"context"
	"time"

	"github.com/example/lingopal/pkg/models"
)

// ItemStore persists vocabulary items. Update applies the full item state
// with an optimistic version check and reports models.ErrConflict when a
// concurrent review won the race.
type ItemStore interface {
	Create(ctx context.Context, item *models.VocabularyItem) error
	GetByID(ctx context.Context, id string) (*models.VocabularyItem, error)
	FindByWord(ctx context.Context, userID, word, language string) (*models.VocabularyItem, error)
	Update(ctx context.Context, item *models.VocabularyItem) error
	Archive(ctx context.Context, id string) error
	DueForReview(ctx context.Context, userID string, now time.Time, limit int) ([]models.VocabularyItem, error)
	CountDue(ctx context.Context, userID string, now time.Time) (int, error)
	UpcomingReviews(ctx context.Context, userID string, until time.Time) ([]time.Time, error)
	UsersWithDue(ctx context.Context, now time.Time, limit int) ([]models.DueCount, error)
}

// ProgressionStore persists per-user progression records with the same
// versioned-update contract as ItemStore.
type ProgressionStore interface {
	Get(ctx context.Context, userID string) (*models.UserProgression, error)
	GetOrCreate(ctx context.Context, userID string) (*models.UserProgression, error)
	Update(ctx context.Context, p *models.UserProgression) error
	ResetWindow(ctx context.Context, userID string, window models.Window) error
	ResetWindowAll(ctx context.Context, window models.Window) (int64, error)
}

// AwardStore persists the XP award journal. Record commits the progression
// update and the journal entry atomically.
type AwardStore interface {
	Record(ctx context.Context, p *models.UserProgression, award *models.XPAward) error
	FindByKey(ctx context.Context, userID, key string) (*models.XPAward, error)
	ListSince(ctx context.Context, userID string, since time.Time) ([]models.XPAward, error)
	UsageBySource(ctx context.Context, userID, reason string, since time.Time) ([]models.SourceUsage, error)
}
