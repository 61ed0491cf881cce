package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCadenceNext(t *testing.T) {
	cadence := DefaultCadence()

	t.Run("Adds Exactly 28 Calendar Days", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		next, err := cadence.Next(start)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC), next)
	})

	t.Run("Crosses Month And Year Boundaries", func(t *testing.T) {
		start := time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)
		next, err := cadence.Next(start)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), next)
	})

	t.Run("Ignores Time Of Day", func(t *testing.T) {
		start := time.Date(2024, 3, 1, 17, 45, 12, 0, time.UTC)
		next, err := cadence.Next(start)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC), next)
	})

	t.Run("Rejects Zero Date", func(t *testing.T) {
		_, err := cadence.Next(time.Time{})
		require.Error(t, err)
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeValidation, domainErr.Code)
	})

	t.Run("Thirteen Steps Stay Within A Year", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		d := start
		var err error
		for i := 0; i < 13; i++ {
			d, err = cadence.Next(d)
			require.NoError(t, err)
		}
		// 13 steps: day 364, still inside the horizon.
		assert.Equal(t, 364, daysBetween(start, d))
		assert.LessOrEqual(t, daysBetween(start, d), DefaultHorizonDays)

		d, err = cadence.Next(d)
		require.NoError(t, err)
		// Step 14 lands on day 392, past the one-year boundary.
		assert.Equal(t, 392, daysBetween(start, d))
		assert.Greater(t, daysBetween(start, d), DefaultHorizonDays)
	})
}

func TestCadenceSeed(t *testing.T) {
	cadence := DefaultCadence()

	t.Run("Fourteen Occurrences On The Default Horizon", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		dates, err := cadence.Seed(start)
		require.NoError(t, err)
		require.Len(t, dates, 14)

		assert.Equal(t, start, dates[0])
		for i := 1; i < len(dates); i++ {
			assert.Equal(t, 28, daysBetween(dates[i-1], dates[i]))
		}
		assert.Equal(t, 364, daysBetween(start, dates[len(dates)-1]))
	})

	t.Run("Rejects Zero Start", func(t *testing.T) {
		_, err := cadence.Seed(time.Time{})
		require.Error(t, err)
	})
}

func TestParseDate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		d, err := ParseDate("2024-06-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := ParseDate("15/06/2024")
		assert.Error(t, err)
	})
}
