// Package gamification holds the pure numeric rules of the progression
// engine: the leveling curve, the streak multiplier and the canonical XP
// amounts. Everything here is stateless and deterministic.
package gamification

import "math"

// Canonical award reasons. Callers may pass free-form reasons; these are the
// ones with published base amounts.
const (
	ReasonChatMessage     = "chat_message"
	ReasonConversation    = "conversation"
	ReasonLessonCompleted = "lesson_completed"
	ReasonVocabReview     = "vocabulary_review"
	ReasonPerfectReview   = "perfect_review"
	ReasonDailyGoal       = "daily_goal"
	ReasonStreakMilestone = "streak_milestone"
)

var baseXP = map[string]int64{
	ReasonChatMessage:     5,
	ReasonConversation:    20,
	ReasonLessonCompleted: 50,
	ReasonVocabReview:     10,
	ReasonPerfectReview:   15,
	ReasonDailyGoal:       25,
}

// BaseXP returns the published base amount for a canonical reason. The
// second return is false for reasons without a published amount.
func BaseXP(reason string) (int64, bool) {
	amount, ok := baseXP[reason]
	return amount, ok
}

// Level maps total XP to a level via level = floor(sqrt(xp/25)) + 1.
// Non-positive XP is level 1.
func Level(totalXP int64) int {
	if totalXP <= 0 {
		return 1
	}
	return int(math.Sqrt(float64(totalXP)/25.0)) + 1
}

// XPForLevel is the total XP at which a level begins: (level-1)^2 * 25.
// Inverse-consistent with Level at exact boundaries.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return n * n * 25
}

// LevelProgressPercent reports how far into the current level the total XP
// sits, as an integer percent in [0, 100).
func LevelProgressPercent(totalXP int64) int {
	level := Level(totalXP)
	floor := XPForLevel(level)
	ceil := XPForLevel(level + 1)
	if totalXP < floor {
		return 0
	}
	return int(100 * (totalXP - floor) / (ceil - floor))
}

// StreakMultiplier maps the consecutive-day streak to an XP multiplier.
// Non-decreasing step function.
func StreakMultiplier(streak int) float64 {
	switch {
	case streak >= 30:
		return 1.5
	case streak >= 14:
		return 1.3
	case streak >= 7:
		return 1.2
	case streak >= 3:
		return 1.1
	default:
		return 1.0
	}
}

// AdjustXP applies the multiplier and truncates toward zero. Floor, never
// banker's rounding, so identical inputs always produce identical awards.
func AdjustXP(base int64, multiplier float64) int64 {
	return int64(math.Floor(float64(base) * multiplier))
}

// MilestoneBonusXP is the one-time bonus for first reaching a streak
// milestone; 0 for non-milestone values.
func MilestoneBonusXP(days int) int64 {
	switch days {
	case 7:
		return 100
	case 30:
		return 500
	default:
		return 0
	}
}
