package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeAppliesClockToDate(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	date := time.Date(2024, 3, 15, 9, 30, 0, 0, madrid)
	got, err := ParseTime("18:15:00", date)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 15, 18, 15, 0, 0, madrid), got)
}

func TestParseTimeEmptyReturnsDate(t *testing.T) {
	date := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	got, err := ParseTime("", date)
	require.NoError(t, err)
	assert.Equal(t, date, got)
}

func TestSameDayUsesLocalCalendar(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	// las 23:30 UTC del día 14 ya son día 15 en Madrid (UTC+1 en invierno)
	utcLate := time.Date(2024, 1, 14, 23, 30, 0, 0, time.UTC)
	localMorning := time.Date(2024, 1, 15, 8, 0, 0, 0, madrid)

	assert.True(t, SameDay(localMorning, utcLate))
	assert.False(t, SameDay(localMorning.AddDate(0, 0, 1), utcLate))
}

func TestEndOfDay(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	got := EndOfDay(time.Date(2024, 7, 3, 11, 22, 33, 0, madrid))
	assert.Equal(t, time.Date(2024, 7, 3, 23, 59, 59, 999000000, madrid), got)
}
