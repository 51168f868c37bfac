package models

import (
	"fmt"
	"time"
)

// Window identifies a periodically reset XP counter.
type Window string

const (
	WindowDaily  Window = "daily"
	WindowWeekly Window = "weekly"
)

// Valid reports whether w names a known window.
func (w Window) Valid() bool {
	return w == WindowDaily || w == WindowWeekly
}

// Stat names accepted by IncrementStat.
const (
	StatLessonsCompleted   = "lessons_completed"
	StatVocabularyMastered = "vocabulary_mastered"
	StatCorrectionsGiven   = "corrections_given"
	StatMessagesSent       = "messages_sent"
	StatReviewsCompleted   = "reviews_completed"
)

// ProgressionStats are activity counters bumped by calling code. They carry
// no invariants of their own.
type ProgressionStats struct {
	LessonsCompleted   int `json:"lessonsCompleted" db:"lessons_completed"`
	VocabularyMastered int `json:"vocabularyMastered" db:"vocabulary_mastered"`
	CorrectionsGiven   int `json:"correctionsGiven" db:"corrections_given"`
	MessagesSent       int `json:"messagesSent" db:"messages_sent"`
	ReviewsCompleted   int `json:"reviewsCompleted" db:"reviews_completed"`
}

// UserProgression is the per-user gamification record: XP counters, level
// inputs and the consecutive-day activity streak. Created lazily on the
// first XP-earning event.
type UserProgression struct {
	UserID string `json:"user_id" db:"user_id"`

	TotalXP     int64 `json:"total_xp" db:"total_xp"`
	WeeklyXP    int64 `json:"weekly_xp" db:"weekly_xp"`
	DailyXP     int64 `json:"daily_xp" db:"daily_xp"`
	DailyGoalXP int64 `json:"daily_goal_xp" db:"daily_goal_xp"`

	CurrentStreak    int    `json:"current_streak" db:"current_streak"`
	LongestStreak    int    `json:"longest_streak" db:"longest_streak"`
	LastActivityDate Date   `json:"last_activity_date" db:"last_activity_date"`
	ProficiencyLevel string `json:"proficiency_level" db:"proficiency_level"` // CEFR tier, informational
	Timezone         string `json:"timezone" db:"timezone"`                   // IANA name for day bucketing

	ProgressionStats

	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StreakResult reports the outcome of recording a day of activity.
type StreakResult struct {
	StreakUpdated bool `json:"streakUpdated"`
	CurrentStreak int  `json:"currentStreak"`
	LongestStreak int  `json:"longestStreak"`
	// Milestone is 7 or 30 exactly when the streak becomes that value,
	// 0 otherwise. Granting the bonus is the caller's job.
	Milestone int `json:"milestone,omitempty"`
}

// Streak milestones that earn a one-time bonus when first reached.
var streakMilestones = []int{7, 30}

// RecordActivity advances the consecutive-day streak for activity on the
// given day. Same-day repeats are no-ops, a next-day activity extends the
// streak, a gap restarts it at 1, and an earlier day than the last recorded
// one is rejected without mutating state.
func (p *UserProgression) RecordActivity(day Date) (StreakResult, error) {
	if day.IsZero() {
		return StreakResult{}, ErrInvalidDate
	}

	switch {
	case p.LastActivityDate.IsZero():
		p.CurrentStreak = 1
	case day == p.LastActivityDate:
		return StreakResult{
			StreakUpdated: false,
			CurrentStreak: p.CurrentStreak,
			LongestStreak: p.LongestStreak,
		}, nil
	case day.Before(p.LastActivityDate):
		return StreakResult{}, fmt.Errorf("%w: %s is before %s",
			ErrStaleActivity, day, p.LastActivityDate)
	case day.DaysSince(p.LastActivityDate) == 1:
		p.CurrentStreak++
	default:
		p.CurrentStreak = 1
	}

	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastActivityDate = day

	result := StreakResult{
		StreakUpdated: true,
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
	}
	for _, m := range streakMilestones {
		if p.CurrentStreak == m {
			result.Milestone = m
		}
	}
	return result, nil
}

// AddXP applies an already-adjusted amount to all XP counters.
func (p *UserProgression) AddXP(amount int64) {
	p.TotalXP += amount
	p.WeeklyXP += amount
	p.DailyXP += amount
}

// IncrementStat bumps a named activity counter.
func (p *UserProgression) IncrementStat(stat string, delta int) error {
	switch stat {
	case StatLessonsCompleted:
		p.LessonsCompleted += delta
	case StatVocabularyMastered:
		p.VocabularyMastered += delta
	case StatCorrectionsGiven:
		p.CorrectionsGiven += delta
	case StatMessagesSent:
		p.MessagesSent += delta
	case StatReviewsCompleted:
		p.ReviewsCompleted += delta
	default:
		return fmt.Errorf("unknown stat %q", stat)
	}
	return nil
}
