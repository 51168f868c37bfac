package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "valid", input: "2026-08-25", want: Date("2026-08-25")},
		{name: "empty", input: "", wantErr: true},
		{name: "malformed", input: "25/08/2026", wantErr: true},
		{name: "impossible day", input: "2026-02-30", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDateTruncatesToDay(t *testing.T) {
	ts := time.Date(2026, 8, 25, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, Date("2026-08-25"), NewDate(ts))
}

func TestDateArithmetic(t *testing.T) {
	d := Date("2026-08-25")

	assert.Equal(t, Date("2026-08-26"), d.AddDays(1))
	assert.Equal(t, Date("2026-09-01"), d.AddDays(7))
	assert.Equal(t, Date("2026-08-24"), d.AddDays(-1))

	assert.Equal(t, 1, d.AddDays(1).DaysSince(d))
	assert.Equal(t, -3, d.DaysSince(d.AddDays(3)))
	assert.Equal(t, 0, d.DaysSince(d))

	assert.True(t, d.Before(d.AddDays(1)))
	assert.False(t, d.Before(d))
}

func TestDateIsZero(t *testing.T) {
	assert.True(t, Date("").IsZero())
	assert.False(t, Date("2026-08-25").IsZero())
	assert.True(t, Date("").Time().IsZero())
}
