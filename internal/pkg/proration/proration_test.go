package proration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year     int
		month    time.Month
		expected int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29}, // leap year
		{2000, time.February, 29}, // divisible by 400
		{1900, time.February, 28}, // divisible by 100 but not 400
		{2025, time.April, 30},
		{2025, time.September, 30},
		{2025, time.December, 31},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysInMonth(tt.year, tt.month))
		})
	}
}

func TestProratePeriod(t *testing.T) {
	t.Run("mid-February start", func(t *testing.T) {
		p, err := ProratePeriod(date(2025, time.February, 10), 1500)
		require.NoError(t, err)
		assert.Equal(t, 28, p.PeriodLengthDays)
		assert.Equal(t, 10, p.DayOfPeriod)
		assert.Equal(t, 19, p.DaysRemaining)
		assert.Equal(t, 53.57, p.DailyRate)
		assert.Equal(t, 1017.83, p.ProratedAmount)
		assert.False(t, p.IsFullPeriod)
	})

	t.Run("first of month is a full period", func(t *testing.T) {
		p, err := ProratePeriod(date(2025, time.March, 1), 1800)
		require.NoError(t, err)
		assert.True(t, p.IsFullPeriod)
		assert.Equal(t, 31, p.DaysRemaining)
		assert.Equal(t, 1800.0, p.ProratedAmount)
	})

	t.Run("last day of month charges one day", func(t *testing.T) {
		p, err := ProratePeriod(date(2025, time.April, 30), 1200)
		require.NoError(t, err)
		assert.Equal(t, 1, p.DaysRemaining)
		assert.Equal(t, 40.0, p.DailyRate)
		assert.Equal(t, 40.0, p.ProratedAmount)
	})

	t.Run("prorated amount never exceeds the period rate", func(t *testing.T) {
		for day := 1; day <= 31; day++ {
			p, err := ProratePeriod(date(2025, time.July, day), 2350)
			require.NoError(t, err)
			assert.LessOrEqual(t, p.ProratedAmount, 2350.0, "day %d", day)
			if p.IsFullPeriod {
				assert.Equal(t, 2350.0, p.ProratedAmount)
			} else {
				assert.Less(t, p.ProratedAmount, 2350.0, "day %d", day)
			}
		}
	})

	t.Run("zero start date", func(t *testing.T) {
		_, err := ProratePeriod(time.Time{}, 1500)
		assert.Error(t, err)
	})

	t.Run("negative rate", func(t *testing.T) {
		_, err := ProratePeriod(date(2025, time.February, 10), -1)
		assert.Error(t, err)
	})
}

func TestApplyMoveInDeposit(t *testing.T) {
	t.Run("remainder covers part of the security deposit", func(t *testing.T) {
		b, err := ApplyMoveInDeposit(date(2025, time.February, 10), 1500, 500)
		require.NoError(t, err)
		assert.Equal(t, 1500.0, b.MoveInDeposit)
		assert.Equal(t, 1017.83, b.FirstPeriodCost)
		assert.Equal(t, 482.17, b.TowardSecurity)
		assert.Equal(t, 0.0, b.TowardNextPeriod)
		assert.Equal(t, 17.83, b.SecurityRemaining)
		assert.Equal(t, 1517.83, b.TotalDueAtActivation)
		assert.False(t, b.RemainderClamped)
	})

	t.Run("remainder exceeds the security deposit", func(t *testing.T) {
		b, err := ApplyMoveInDeposit(date(2025, time.February, 20), 2800, 300)
		require.NoError(t, err)
		// 9 days at 100/day leaves 1900 after the first period.
		assert.Equal(t, 900.0, b.FirstPeriodCost)
		assert.Equal(t, 300.0, b.TowardSecurity)
		assert.Equal(t, 1600.0, b.TowardNextPeriod)
		assert.Equal(t, 0.0, b.SecurityRemaining)
		assert.Equal(t, 2800.0, b.TotalDueAtActivation)
	})

	t.Run("full period leaves nothing to apply", func(t *testing.T) {
		b, err := ApplyMoveInDeposit(date(2025, time.June, 1), 1500, 500)
		require.NoError(t, err)
		assert.Equal(t, 1500.0, b.FirstPeriodCost)
		assert.Equal(t, 0.0, b.TowardSecurity)
		assert.Equal(t, 500.0, b.SecurityRemaining)
		assert.Equal(t, 2000.0, b.TotalDueAtActivation)
	})

	t.Run("negative security deposit", func(t *testing.T) {
		_, err := ApplyMoveInDeposit(date(2025, time.June, 1), 1500, -5)
		assert.Error(t, err)
	})
}

func TestApplyCredits(t *testing.T) {
	tests := []struct {
		name     string
		due      float64
		credits  []float64
		expected float64
	}{
		{"no credits", 500, nil, 500},
		{"partial credit", 500, []float64{120.50}, 379.50},
		{"multiple credits", 500, []float64{100, 250.25}, 149.75},
		{"credits exceed due", 500, []float64{400, 200}, 0},
		{"exact cover", 500, []float64{500}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyCredits(tt.due, tt.credits))
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1017.83, Round2(1017.8299999))
	assert.Equal(t, 53.57, Round2(1500.0/28.0))
	assert.Equal(t, 0.01, Round2(0.005))
	assert.Equal(t, -0.01, Round2(-0.005))
	assert.Equal(t, 100.0, Round2(100))
}
