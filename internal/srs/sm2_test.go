package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingopal/pkg/models"
)

func newItem() *models.VocabularyItem {
	return &models.VocabularyItem{
		ID:         "item-1",
		UserID:     "user-1",
		Word:       "hund",
		EaseFactor: 2.5,
	}
}

var reviewTime = time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

func TestReviewInvalidQuality(t *testing.T) {
	s := New()
	for _, quality := range []int{-1, 6, 100} {
		item := newItem()
		_, err := s.Review(item, quality, 0, reviewTime)
		require.ErrorIs(t, err, models.ErrInvalidQuality)
		assert.Equal(t, 0, item.TotalReviews, "rejected review must not mutate the item")
	}
}

func TestReviewArchivedItem(t *testing.T) {
	s := New()
	item := newItem()
	item.Archived = true
	_, err := s.Review(item, 5, 0, reviewTime)
	assert.ErrorIs(t, err, models.ErrItemArchived)
}

func TestReviewFailedResets(t *testing.T) {
	s := New()
	for quality := 0; quality <= 2; quality++ {
		item := newItem()
		item.SRSLevel = 5
		item.IntervalDays = 30
		item.ItemStreak = 4

		result, err := s.Review(item, quality, 800, reviewTime)
		require.NoError(t, err)
		assert.False(t, result.WasCorrect)
		assert.Equal(t, 0, item.SRSLevel)
		assert.Equal(t, 0, item.IntervalDays)
		assert.Equal(t, reviewTime, item.NextReview, "failed items are due immediately")
		assert.Equal(t, 0, item.ItemStreak)
		assert.GreaterOrEqual(t, item.EaseFactor, 1.3)
	}
}

func TestReviewPassedAdvances(t *testing.T) {
	s := New()
	item := newItem()
	item.SRSLevel = 4
	item.IntervalDays = 12

	result, err := s.Review(item, 4, 1500, reviewTime)
	require.NoError(t, err)
	assert.True(t, result.WasCorrect)
	assert.Equal(t, 5, item.SRSLevel)
	// round(12 * 2.5) with the pre-update ease factor
	assert.Equal(t, 30, item.IntervalDays)
	assert.Equal(t, reviewTime.AddDate(0, 0, 30), item.NextReview)
}

func TestReviewProgressionScenario(t *testing.T) {
	s := New()
	item := newItem()

	first, err := s.Review(item, 5, 0, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, 1, first.SRSLevel)
	assert.Equal(t, 1, first.IntervalDays)

	second, err := s.Review(item, 5, 0, reviewTime.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, second.SRSLevel)
	assert.Equal(t, 6, second.IntervalDays)

	// EF has grown 2.5 -> 2.6 -> 2.7 by now; the third interval uses it
	// before this review's own adjustment.
	third, err := s.Review(item, 5, 0, reviewTime.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 3, third.SRSLevel)
	assert.Equal(t, 16, third.IntervalDays)
}

func TestEaseFactorFloor(t *testing.T) {
	s := New()
	item := newItem()
	item.EaseFactor = 1.3

	for i := 0; i < 5; i++ {
		_, err := s.Review(item, 0, 0, reviewTime)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, item.EaseFactor, 1.3)
	}
	assert.Equal(t, 1.3, item.EaseFactor)
}

func TestEaseFactorMonotoneInQuality(t *testing.T) {
	s := New()
	var previous float64
	for quality := 0; quality <= 5; quality++ {
		item := newItem()
		_, err := s.Review(item, quality, 0, reviewTime)
		require.NoError(t, err)
		if quality > 0 {
			assert.GreaterOrEqual(t, item.EaseFactor, previous,
				"quality %d must not yield a lower EF than quality %d", quality, quality-1)
		}
		previous = item.EaseFactor
	}
}

func TestIntervalCap(t *testing.T) {
	s := New()
	item := newItem()
	item.SRSLevel = 5
	item.IntervalDays = 300

	_, err := s.Review(item, 5, 0, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, s.MaxInterval, item.IntervalDays)
}

func TestMasteryFiresExactlyOnce(t *testing.T) {
	s := New()
	item := newItem()
	item.SRSLevel = 8
	item.IntervalDays = 60

	result, err := s.Review(item, 5, 0, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, 9, result.SRSLevel)
	assert.True(t, result.IsMastered)
	assert.True(t, result.JustMastered)
	require.NotNil(t, item.MasteredAt)
	masteredAt := *item.MasteredAt

	// Level is pinned at 9; further passes never re-fire mastery.
	again, err := s.Review(item, 5, 0, reviewTime.AddDate(0, 0, 90))
	require.NoError(t, err)
	assert.Equal(t, 9, again.SRSLevel)
	assert.True(t, again.IsMastered)
	assert.False(t, again.JustMastered)
	assert.Equal(t, masteredAt, *item.MasteredAt)
}

func TestFailedThenRecoveredPath(t *testing.T) {
	s := New()
	item := newItem()
	item.SRSLevel = 6
	item.IntervalDays = 40

	// Failure resets to level 0 / interval 0; the recovery climbs through
	// the fixed early intervals, so the interval is never multiplied at 0.
	_, err := s.Review(item, 1, 0, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, 0, item.SRSLevel)
	assert.Equal(t, 0, item.IntervalDays)

	first, err := s.Review(item, 4, 0, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, 1, first.IntervalDays)

	second, err := s.Review(item, 4, 0, reviewTime.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 6, second.IntervalDays)

	third, err := s.Review(item, 4, 0, reviewTime.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Greater(t, third.IntervalDays, 6)
}

func TestReviewHistoryRecorded(t *testing.T) {
	s := New()
	item := newItem()

	for i := 0; i < 12; i++ {
		_, err := s.Review(item, 5, 1000+i, reviewTime.AddDate(0, 0, i))
		require.NoError(t, err)
	}
	require.Len(t, item.ReviewHistory, models.ReviewHistoryLimit)
	assert.Equal(t, 12, item.TotalReviews)
	assert.Equal(t, 1002, item.ReviewHistory[0].ResponseMs, "oldest events are evicted first")
}
