package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetvo/backend/pkg/apperr"
)

var testNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "defaults to last 30 days",
			wantStart: time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 6, 15, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		},
		{
			name:      "explicit range",
			start:     "2024-01-01",
			end:       "2024-01-31",
			wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		},
		{
			name:      "unparseable start falls back relative to end",
			start:     "not-a-date",
			end:       "2024-03-31",
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		},
		{
			name:      "unparseable end falls back to now",
			start:     "2024-06-01",
			end:       "31/12/2024",
			wantStart: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 6, 15, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseRange(tt.start, tt.end, testNow)
			assert.Equal(t, tt.wantStart, r.Start)
			assert.Equal(t, tt.wantEnd, r.End)
		})
	}
}

func TestDateRangeContains(t *testing.T) {
	r := ParseRange("2024-06-01", "2024-06-30", testNow)

	assert.True(t, r.Contains(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseCutoff(t *testing.T) {
	tests := []struct {
		timeframe string
		want      time.Time
	}{
		{"2w", testNow.AddDate(0, 0, -14)},
		{"1m", testNow.AddDate(0, 0, -30)},
		{"3m", testNow.AddDate(0, 0, -90)},
		{"6m", testNow.AddDate(0, 0, -180)},
		{"1y", testNow.AddDate(0, 0, -365)},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.timeframe, func(t *testing.T) {
			cutoff, err := ParseCutoff(tt.timeframe, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cutoff)
		})
	}
}

func TestParseCutoffInvalid(t *testing.T) {
	for _, timeframe := range []string{"", "5d", "two weeks", "1month"} {
		t.Run(timeframe, func(t *testing.T) {
			_, err := ParseCutoff(timeframe, testNow)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}
