package growth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)
	return d
}

func TestAgeInMonths(t *testing.T) {
	a, err := AgeInMonths(30)
	require.NoError(t, err)
	assert.Equal(t, 30.0, a.Months)
	assert.Equal(t, 30, a.WholeMonths)
	assert.Equal(t, AgeDirect, a.Mode)

	for _, m := range []int{-1, 61} {
		_, err := AgeInMonths(m)
		assert.ErrorIs(t, err, ErrInput, "months %d", m)
	}

	for _, m := range []int{0, 60} {
		_, err := AgeInMonths(m)
		assert.NoError(t, err, "months %d", m)
	}
}

func TestAgeBetween(t *testing.T) {
	tests := []struct {
		name   string
		birth  string
		test   string
		months int
		days   int
	}{
		{"same day", "2024-01-15", "2024-01-15", 0, 0},
		{"later day in month", "2024-01-15", "2024-03-20", 2, 5},
		{"borrow from december", "2023-05-20", "2024-01-05", 7, 16},
		{"birth day past end of previous month", "2024-01-31", "2024-03-10", 1, 10},
		{"whole years", "2020-06-01", "2024-06-01", 48, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := AgeBetween(date(t, tt.birth), date(t, tt.test))
			require.NoError(t, err)
			assert.Equal(t, tt.months, a.WholeMonths)
			assert.Equal(t, tt.days, a.Days)
			assert.InDelta(t, float64(tt.months)+float64(tt.days)/30, a.Months, 1e-12)
			assert.Equal(t, AgeFromDates, a.Mode)
		})
	}
}

func TestAgeBetween_Errors(t *testing.T) {
	_, err := AgeBetween(date(t, "2024-03-10"), date(t, "2024-03-09"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInput)

	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "test_date", ie.Field)

	_, err = AgeBetween(date(t, "2018-01-01"), date(t, "2024-01-20"))
	assert.ErrorIs(t, err, ErrInput)

	_, err = AgeBetween(date(t, "2019-01-01"), date(t, "2024-01-01"))
	assert.NoError(t, err, "exactly 60 months is accepted")
}
