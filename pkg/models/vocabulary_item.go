package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReviewHistoryLimit bounds the per-item review history. Older events are
// evicted FIFO.
const ReviewHistoryLimit = 10

// ReviewEvent is one recorded review of a vocabulary item.
type ReviewEvent struct {
	Quality    int       `json:"quality"`
	ResponseMs int       `json:"responseMs"`
	Correct    bool      `json:"correct"`
	ReviewedAt time.Time `json:"reviewedAt"`
}

// ReviewHistory is a bounded, chronologically ordered list of the most
// recent review events. Stored as a JSON column.
type ReviewHistory []ReviewEvent

// Append adds an event and evicts the oldest entries beyond the limit.
func (h ReviewHistory) Append(event ReviewEvent) ReviewHistory {
	h = append(h, event)
	if len(h) > ReviewHistoryLimit {
		h = h[len(h)-ReviewHistoryLimit:]
	}
	return h
}

// Value implements driver.Valuer for JSON storage.
func (h ReviewHistory) Value() (driver.Value, error) {
	if h == nil {
		h = ReviewHistory{}
	}
	data, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal review history: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for JSON storage.
func (h *ReviewHistory) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*h = ReviewHistory{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan review history from %T", src)
	}
	if len(data) == 0 {
		*h = ReviewHistory{}
		return nil
	}
	return json.Unmarshal(data, h)
}

// ReviewStats holds per-item review counters. ItemStreak counts consecutive
// correct reviews of this item and is unrelated to the user-level day streak.
type ReviewStats struct {
	TotalReviews     int `json:"totalReviews" db:"total_reviews"`
	CorrectReviews   int `json:"correctReviews" db:"correct_reviews"`
	IncorrectReviews int `json:"incorrectReviews" db:"incorrect_reviews"`
	ItemStreak       int `json:"itemStreak" db:"item_streak"`
	BestItemStreak   int `json:"bestItemStreak" db:"best_item_streak"`
}

// VocabularyItem is one user's saved word with its spaced-repetition state.
// Identity fields are immutable after creation; SRS state is mutated only by
// the review operation.
type VocabularyItem struct {
	ID             string `json:"id" db:"id"`
	UserID         string `json:"user_id" db:"user_id"`
	Word           string `json:"word" db:"word"`
	Translation    string `json:"translation" db:"translation"`
	Language       string `json:"language" db:"language"`
	NativeLanguage string `json:"native_language" db:"native_language"`

	SRSLevel       int        `json:"srs_level" db:"srs_level"`         // 0 = unseen/failed, 9 = mastered
	EaseFactor     float64    `json:"ease_factor" db:"ease_factor"`     // SM-2 EF, never below 1.3
	IntervalDays   int        `json:"interval_days" db:"interval_days"` // current interval in days
	NextReview     time.Time  `json:"next_review" db:"next_review"`
	LastReviewedAt *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`

	ReviewStats
	ReviewHistory ReviewHistory `json:"review_history" db:"review_history"`

	IsMastered bool       `json:"is_mastered" db:"is_mastered"`
	MasteredAt *time.Time `json:"mastered_at" db:"mastered_at"`
	Archived   bool       `json:"archived" db:"archived"`

	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RecordOutcome applies the counter and history effects of one review. The
// item streak resets on an incorrect answer; the best streak is a high-water
// mark and never decreases.
func (v *VocabularyItem) RecordOutcome(event ReviewEvent) {
	v.TotalReviews++
	if event.Correct {
		v.CorrectReviews++
		v.ItemStreak++
		if v.ItemStreak > v.BestItemStreak {
			v.BestItemStreak = v.ItemStreak
		}
	} else {
		v.IncorrectReviews++
		v.ItemStreak = 0
	}
	v.ReviewHistory = v.ReviewHistory.Append(event)
	t := event.ReviewedAt
	v.LastReviewedAt = &t
}

// Master marks the item mastered. The transition happens at most once; the
// return value reports whether this call performed it.
func (v *VocabularyItem) Master(now time.Time) bool {
	if v.IsMastered {
		return false
	}
	v.IsMastered = true
	t := now
	v.MasteredAt = &t
	return true
}

// Accuracy returns the fraction of correct reviews, 0 when unreviewed.
func (v *VocabularyItem) Accuracy() float64 {
	if v.TotalReviews == 0 {
		return 0
	}
	return float64(v.CorrectReviews) / float64(v.TotalReviews)
}
