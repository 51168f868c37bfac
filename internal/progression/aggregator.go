package progression

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/lingopal/internal/gamification"
	"github.com/example/lingopal/pkg/models"
)

// ForecastDay is one bucket of the review forecast.
type ForecastDay struct {
	Date  models.Date `json:"date"`
	Count int         `json:"count"`
}

// ActivitySummary aggregates one local day of the award journal. Days
// without activity report zeros rather than being omitted.
type ActivitySummary struct {
	Date     models.Date `json:"date"`
	XPEarned int64       `json:"xpEarned"`
	Awards   int         `json:"awards"`
	Messages int         `json:"messages"`
	Reviews  int         `json:"reviews"`
}

// Dashboard is the read-side composition backing the user's progress screen.
type Dashboard struct {
	Level                int                     `json:"level"`
	LevelProgressPercent int                     `json:"levelProgressPercent"`
	TotalXP              int64                   `json:"totalXP"`
	CurrentStreak        int                     `json:"currentStreak"`
	LongestStreak        int                     `json:"longestStreak"`
	DailyGoalProgress    int                     `json:"dailyGoalProgress"` // percent of the daily XP goal, capped at 100
	Stats                models.ProgressionStats `json:"stats"`
	DueToday             int                     `json:"dueToday"`
	DailySummary         ActivitySummary         `json:"dailySummary"`
	WeeklySummary        []ActivitySummary       `json:"weeklySummary"`
}

// DueForReview returns the user's items due now, weakest material first.
// Read-only; due dates are not touched.
func (e *Engine) DueForReview(ctx context.Context, userID string, limit int) ([]models.VocabularyItem, error) {
	return e.items.DueForReview(ctx, userID, e.clock.Now(), limit)
}

// ReviewForecast buckets the user's scheduled reviews into the next `days`
// local calendar days. Day 0 is today and also absorbs the overdue backlog;
// later days are literal calendar buckets. Every day appears, zero-filled.
func (e *Engine) ReviewForecast(ctx context.Context, userID string, days int) ([]ForecastDay, error) {
	if days <= 0 {
		return []ForecastDay{}, nil
	}

	loc, err := e.locationFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	startToday := startOfDay(e.clock.Now().In(loc))
	horizon := startToday.AddDate(0, 0, days)

	reviews, err := e.items.UpcomingReviews(ctx, userID, horizon)
	if err != nil {
		return nil, err
	}

	forecast := make([]ForecastDay, days)
	for i := range forecast {
		forecast[i].Date = models.NewDate(startToday.AddDate(0, 0, i))
	}
	today := models.NewDate(startToday)
	for _, due := range reviews {
		idx := models.NewDate(due.In(loc)).DaysSince(today)
		if idx < 0 {
			idx = 0
		}
		if idx >= days {
			continue
		}
		forecast[idx].Count++
	}
	return forecast, nil
}

// DailySummary aggregates today's award journal in the user's timezone.
func (e *Engine) DailySummary(ctx context.Context, userID string) (*ActivitySummary, error) {
	loc, err := e.locationFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	startToday := startOfDay(e.clock.Now().In(loc))
	awards, err := e.awards.ListSince(ctx, userID, startToday)
	if err != nil {
		return nil, err
	}
	summary := ActivitySummary{Date: models.NewDate(startToday)}
	for _, award := range awards {
		addAward(&summary, award)
	}
	return &summary, nil
}

// WeeklySummary returns the last seven local days of activity, oldest first,
// with quiet days zero-filled.
func (e *Engine) WeeklySummary(ctx context.Context, userID string) ([]ActivitySummary, error) {
	loc, err := e.locationFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	startToday := startOfDay(e.clock.Now().In(loc))
	windowStart := startToday.AddDate(0, 0, -6)

	awards, err := e.awards.ListSince(ctx, userID, windowStart)
	if err != nil {
		return nil, err
	}

	summaries := make([]ActivitySummary, 7)
	index := make(map[models.Date]*ActivitySummary, 7)
	for i := range summaries {
		summaries[i].Date = models.NewDate(windowStart.AddDate(0, 0, i))
		index[summaries[i].Date] = &summaries[i]
	}
	for _, award := range awards {
		if summary, ok := index[models.NewDate(award.AwardedAt.In(loc))]; ok {
			addAward(summary, award)
		}
	}
	return summaries, nil
}

// PartnerUsage breaks chat-message XP down by partner since the given time.
func (e *Engine) PartnerUsage(ctx context.Context, userID string, since time.Time) ([]models.SourceUsage, error) {
	return e.awards.UsageBySource(ctx, userID, gamification.ReasonChatMessage, since)
}

// Dashboard assembles the progress screen. The independent reads fan out
// concurrently; any failure fails the whole call.
func (e *Engine) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	p, err := e.users.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		Level:                gamification.Level(p.TotalXP),
		LevelProgressPercent: gamification.LevelProgressPercent(p.TotalXP),
		TotalXP:              p.TotalXP,
		CurrentStreak:        p.CurrentStreak,
		LongestStreak:        p.LongestStreak,
		DailyGoalProgress:    goalProgress(p.DailyXP, p.DailyGoalXP),
		Stats:                p.ProgressionStats,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := e.items.CountDue(ctx, userID, e.clock.Now())
		if err != nil {
			return err
		}
		dashboard.DueToday = count
		return nil
	})
	g.Go(func() error {
		summary, err := e.DailySummary(ctx, userID)
		if err != nil {
			return err
		}
		dashboard.DailySummary = *summary
		return nil
	})
	g.Go(func() error {
		weekly, err := e.WeeklySummary(ctx, userID)
		if err != nil {
			return err
		}
		dashboard.WeeklySummary = weekly
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}

// locationFor resolves the user's timezone for day bucketing. Users without
// a progression record yet read in UTC.
func (e *Engine) locationFor(ctx context.Context, userID string) (*time.Location, error) {
	p, err := e.users.Get(ctx, userID)
	if errors.Is(err, models.ErrUserNotFound) {
		return time.UTC, nil
	}
	if err != nil {
		return nil, err
	}
	return userLocation(p), nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func goalProgress(dailyXP, goalXP int64) int {
	if goalXP <= 0 {
		return 0
	}
	percent := int(100 * dailyXP / goalXP)
	if percent > 100 {
		percent = 100
	}
	return percent
}

func addAward(summary *ActivitySummary, award models.XPAward) {
	summary.XPEarned += award.AdjustedAmount
	summary.Awards++
	switch award.Reason {
	case gamification.ReasonChatMessage:
		summary.Messages++
	case gamification.ReasonVocabReview, gamification.ReasonPerfectReview:
		summary.Reviews++
	}
}
