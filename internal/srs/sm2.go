// Package srs implements the modified SM-2 spaced-repetition scheduler for
// vocabulary items.
package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/example/lingopal/pkg/models"
)

// Recall quality grades, 0-5.
const (
	QualityBlackout          = 0 // total blackout, unable to recall
	QualityIncorrect         = 1 // incorrect, remembered upon seeing the answer
	QualityIncorrectFamiliar = 2 // incorrect, but the answer felt familiar
	QualityCorrectDifficult  = 3 // correct with significant effort
	QualityCorrectHesitation = 4 // correct after some hesitation
	QualityPerfect           = 5 // perfect recall
)

// Scheduler holds the SM-2 tuning parameters.
type Scheduler struct {
	// Grades at or above this count as a correct recall
	PassThreshold int
	// Interval after the first correct review (level 0 -> 1), in days
	FirstInterval int
	// Interval after the second correct review (level 1 -> 2), in days
	SecondInterval int
	// Cap on the review interval in days
	MaxInterval int
	// Floor for the ease factor
	MinEaseFactor float64
	// Level at which an item counts as mastered
	MasteryLevel int
}

// New returns a scheduler with the default SM-2 parameters.
func New() *Scheduler {
	return &Scheduler{
		PassThreshold:  3,
		FirstInterval:  1,
		SecondInterval: 6,
		MaxInterval:    365,
		MinEaseFactor:  1.3,
		MasteryLevel:   9,
	}
}

// ReviewResult reports the item state after one review.
type ReviewResult struct {
	WasCorrect   bool      `json:"wasCorrect"`
	SRSLevel     int       `json:"srsLevel"`
	EaseFactor   float64   `json:"easeFactor"`
	IntervalDays int       `json:"intervalDays"`
	NextReview   time.Time `json:"nextReview"`
	IsMastered   bool      `json:"isMastered"`
	// JustMastered fires on the single review that first reaches the
	// mastery level, never again.
	JustMastered bool `json:"justMastered"`
}

// Review grades one recall of an item and mutates its SRS state in place.
// A failed review (quality below the pass threshold) resets the item to
// level 0 and makes it due immediately; a passed review advances the level
// and grows the interval. The ease factor is adjusted on every review and
// never drops below the floor.
func (s *Scheduler) Review(item *models.VocabularyItem, quality, responseMs int, now time.Time) (*ReviewResult, error) {
	if quality < QualityBlackout || quality > QualityPerfect {
		return nil, fmt.Errorf("%w: got %d", models.ErrInvalidQuality, quality)
	}
	if item.Archived {
		return nil, fmt.Errorf("%w: %s", models.ErrItemArchived, item.ID)
	}

	wasCorrect := quality >= s.PassThreshold

	item.RecordOutcome(models.ReviewEvent{
		Quality:    quality,
		ResponseMs: responseMs,
		Correct:    wasCorrect,
		ReviewedAt: now,
	})

	if wasCorrect {
		// The interval uses the pre-update ease factor; the EF
		// adjustment below only affects later reviews.
		switch item.SRSLevel {
		case 0:
			item.IntervalDays = s.FirstInterval
		case 1:
			item.IntervalDays = s.SecondInterval
		default:
			item.IntervalDays = int(math.Round(float64(item.IntervalDays) * item.EaseFactor))
		}
		if item.IntervalDays > s.MaxInterval {
			item.IntervalDays = s.MaxInterval
		}
		if item.SRSLevel < s.MasteryLevel {
			item.SRSLevel++
		}
		item.NextReview = now.AddDate(0, 0, item.IntervalDays)
	} else {
		// Failed recall: back to the start, due again today.
		item.SRSLevel = 0
		item.IntervalDays = 0
		item.NextReview = now
	}

	q := float64(quality)
	ef := item.EaseFactor + (0.1 - (5.0-q)*(0.08+(5.0-q)*0.02))
	if ef < s.MinEaseFactor {
		ef = s.MinEaseFactor
	}
	item.EaseFactor = ef

	justMastered := false
	if item.SRSLevel >= s.MasteryLevel {
		justMastered = item.Master(now)
	}

	return &ReviewResult{
		WasCorrect:   wasCorrect,
		SRSLevel:     item.SRSLevel,
		EaseFactor:   item.EaseFactor,
		IntervalDays: item.IntervalDays,
		NextReview:   item.NextReview,
		IsMastered:   item.IsMastered,
		JustMastered: justMastered,
	}, nil
}
