package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewHistoryBounded(t *testing.T) {
	var h ReviewHistory
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < ReviewHistoryLimit; i++ {
		h = h.Append(ReviewEvent{Quality: i % 6, ReviewedAt: base.AddDate(0, 0, i)})
	}
	require.Len(t, h, ReviewHistoryLimit)

	// One more evicts the oldest and keeps chronological order.
	h = h.Append(ReviewEvent{Quality: 5, ReviewedAt: base.AddDate(0, 0, ReviewHistoryLimit)})
	require.Len(t, h, ReviewHistoryLimit)
	assert.Equal(t, base.AddDate(0, 0, 1), h[0].ReviewedAt)
	assert.Equal(t, base.AddDate(0, 0, ReviewHistoryLimit), h[len(h)-1].ReviewedAt)
	for i := 1; i < len(h); i++ {
		assert.True(t, h[i-1].ReviewedAt.Before(h[i].ReviewedAt))
	}
}

func TestReviewHistoryRoundTrip(t *testing.T) {
	h := ReviewHistory{
		{Quality: 4, ResponseMs: 1200, Correct: true, ReviewedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
	value, err := h.Value()
	require.NoError(t, err)

	var decoded ReviewHistory
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 1)
	assert.Equal(t, 4, decoded[0].Quality)
	assert.Equal(t, 1200, decoded[0].ResponseMs)
	assert.True(t, decoded[0].Correct)

	var empty ReviewHistory
	require.NoError(t, empty.Scan(nil))
	assert.Empty(t, empty)
}

func TestRecordOutcomeCounters(t *testing.T) {
	item := &VocabularyItem{}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	item.RecordOutcome(ReviewEvent{Quality: 5, Correct: true, ReviewedAt: now})
	item.RecordOutcome(ReviewEvent{Quality: 4, Correct: true, ReviewedAt: now})
	assert.Equal(t, 2, item.TotalReviews)
	assert.Equal(t, 2, item.CorrectReviews)
	assert.Equal(t, 2, item.ItemStreak)
	assert.Equal(t, 2, item.BestItemStreak)

	item.RecordOutcome(ReviewEvent{Quality: 1, Correct: false, ReviewedAt: now})
	assert.Equal(t, 3, item.TotalReviews)
	assert.Equal(t, 1, item.IncorrectReviews)
	assert.Equal(t, 0, item.ItemStreak, "item streak resets on a miss")
	assert.Equal(t, 2, item.BestItemStreak, "best streak is a high-water mark")

	require.NotNil(t, item.LastReviewedAt)
	assert.Equal(t, now, *item.LastReviewedAt)
	assert.InDelta(t, 2.0/3.0, item.Accuracy(), 1e-9)
}

func TestMasterFiresOnce(t *testing.T) {
	item := &VocabularyItem{}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.True(t, item.Master(now))
	require.NotNil(t, item.MasteredAt)
	assert.Equal(t, now, *item.MasteredAt)

	assert.False(t, item.Master(now.AddDate(0, 0, 1)))
	assert.Equal(t, now, *item.MasteredAt, "mastered timestamp never moves")
}
