package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fichaje/internal/model"
)

var madrid = mustLoadLocation("Europe/Madrid")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func entry(id int64, t model.EntryType, ts time.Time) model.TimeEntry {
	return model.TimeEntry{ID: id, PublicID: id, UserID: 1, EntryType: t, Timestamp: ts}
}

func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
}

func TestReconcileEmpty(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, madrid)

	view, anomaly := Reconcile(nil, now)

	assert.Empty(t, view.Shifts)
	assert.False(t, view.CurrentlyClockedIn)
	assert.Nil(t, anomaly)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, madrid), view.Date)
}

func TestReconcileSingleOpenShift(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, madrid)
	entries := []model.TimeEntry{
		entry(1, model.EntryTypeClockIn, at(now, 9, 0)),
	}

	view, anomaly := Reconcile(entries, now)

	require.Len(t, view.Shifts, 1)
	assert.True(t, view.Shifts[0].Open())
	assert.True(t, view.CurrentlyClockedIn)
	assert.Nil(t, anomaly)
}

func TestReconcileClosedShift(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, madrid)
	entries := []model.TimeEntry{
		entry(1, model.EntryTypeClockIn, at(now, 9, 0)),
		entry(2, model.EntryTypeClockOut, at(now, 17, 0)),
	}

	view, anomaly := Reconcile(entries, now)

	require.Len(t, view.Shifts, 1)
	s := view.Shifts[0]
	require.NotNil(t, s.ClockOut)
	assert.False(t, s.Incomplete)
	assert.Equal(t, 8*time.Hour, s.Duration())
	assert.True(t, s.ClockIn.Timestamp.Before(s.ClockOut.Timestamp))
	assert.False(t, view.CurrentlyClockedIn)
	assert.Nil(t, anomaly)
}

func TestReconcileUnorderedInput(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, madrid)
	entries := []model.TimeEntry{
		entry(2, model.EntryTypeClockOut, at(now, 17, 0)),
		entry(1, model.EntryTypeClockIn, at(now, 9, 0)),
	}

	view, _ := Reconcile(entries, now)

	require.Len(t, view.Shifts, 1)
	require.NotNil(t, view.Shifts[0].ClockOut)
	assert.Equal(t, int64(1), view.Shifts[0].ClockIn.ID)
}

func TestReconcileDuplicateClockIn(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, madrid)
	entries := []model.TimeEntry{
		entry(1, model.EntryTypeClockIn, at(now, 9, 0)),
		entry(2, model.EntryTypeClockIn, at(now, 14, 0)),
	}

	view, anomaly := Reconcile(entries, now)

	require.Len(t, view.Shifts, 2)
	assert.True(t, view.Shifts[0].Incomplete)
	assert.Nil(t, view.Shifts[0].ClockOut)
	assert.False(t, view.Shifts[0].Open())
	assert.True(t, view.Shifts[1].Open())
	assert.True(t, view.CurrentlyClockedIn)
	assert.Nil(t, anomaly)
}

func TestReconcileOrphanClockOutIgnored(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, madrid)
	entries := []model.TimeEntry{
		entry(1, model.EntryTypeClockOut, at(now, 8, 0)),
	}

	view, anomaly := Reconcile(entries, now)

	assert.Empty(t, view.Shifts)
	assert.False(t, view.CurrentlyClockedIn)
	assert.Nil(t, anomaly)
}

func TestReconcileTwoShiftsSecondOpen(t *testing.T) {
	now := time.Date(2026, 3, 10, 16, 0, 0, 0, madrid)
	entries := []model.TimeEntry{
		entry(1, model.EntryTypeClockIn, at(now, 9, 0)),
		entry(2, model.EntryTypeClockOut, at(now, 13, 0)),
		entry(3, model.EntryTypeClockIn, at(now, 15, 0)),
	}

	view, anomaly := Reconcile(entries, now)

	require.Len(t, view.Shifts, 2)
	require.NotNil(t, view.Shifts[0].ClockOut)
	assert.True(t, view.Shifts[1].Open())
	assert.True(t, view.CurrentlyClockedIn)
	assert.Nil(t, anomaly)
}

func TestReconcileIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 16, 0, 0, 0, madrid)
	entries := []model.TimeEntry{
		entry(1, model.EntryTypeClockIn, at(now, 9, 0)),
		entry(2, model.EntryTypeClockOut, at(now, 13, 0)),
		entry(3, model.EntryTypeClockIn, at(now, 15, 0)),
	}

	v1, a1 := Reconcile(entries, now)
	v2, a2 := Reconcile(entries, now)

	assert.Equal(t, v1, v2)
	assert.Equal(t, a1, a2)
}

func TestReconcileYesterdayShiftsExcluded(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, madrid)
	yesterday := now.AddDate(0, 0, -1)
	entries := []model.TimeEntry{
		entry(1, model.EntryTypeClockIn, at(yesterday, 9, 0)),
		entry(2, model.EntryTypeClockOut, at(yesterday, 17, 0)),
		entry(3, model.EntryTypeClockIn, at(now, 9, 0)),
	}

	view, anomaly := Reconcile(entries, now)

	require.Len(t, view.Shifts, 1)
	assert.Equal(t, int64(3), view.Shifts[0].ClockIn.ID)
	assert.Nil(t, anomaly)
}

func TestReconcileForgottenShift(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, madrid)
	yesterday := now.AddDate(0, 0, -1)
	entries := []model.TimeEntry{
		entry(1, model.EntryTypeClockIn, at(yesterday, 9, 0)),
	}

	view, anomaly := Reconcile(entries, now)

	assert.Empty(t, view.Shifts)
	require.NotNil(t, anomaly)
	assert.Equal(t, int64(1), anomaly.LastOpenEvent.ID)
	assert.InDelta(t, 23.0, anomaly.AgeHours, 0.01)
	assert.Equal(t, SeverityExtended, anomaly.Severity)

	want := time.Date(2026, 3, 9, 23, 59, 59, 999000000, madrid)
	assert.True(t, anomaly.CorrectiveTimestamp.Equal(want))
}

func TestReconcileSeverityBoundary(t *testing.T) {
	yesterday := time.Date(2026, 3, 9, 20, 0, 0, 0, madrid)

	cases := []struct {
		name string
		now  time.Time
		want Severity
	}{
		{"justo antes de 10h", yesterday.Add(10*time.Hour - time.Minute), SeverityNormal},
		{"exactamente 10h", yesterday.Add(10 * time.Hour), SeverityExtended},
		{"pasadas 10h", yesterday.Add(15 * time.Hour), SeverityExtended},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries := []model.TimeEntry{entry(1, model.EntryTypeClockIn, yesterday)}
			_, anomaly := Reconcile(entries, tc.now)
			require.NotNil(t, anomaly)
			assert.Equal(t, tc.want, anomaly.Severity)
		})
	}
}

func TestReconcileNoAnomalyWhenLastEventIsToday(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, madrid)
	yesterday := now.AddDate(0, 0, -1)
	entries := []model.TimeEntry{
		entry(1, model.EntryTypeClockIn, at(yesterday, 9, 0)),
		entry(2, model.EntryTypeClockIn, at(now, 9, 0)),
	}

	_, anomaly := Reconcile(entries, now)

	// el evento más reciente es de hoy: no hay anomalía aunque haya
	// una entrada antigua sin cerrar
	assert.Nil(t, anomaly)
}

func TestReconcileNoAnomalyAfterCorrectiveClose(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 30, 0, 0, madrid)
	yesterday := now.AddDate(0, 0, -1)
	corrective := entry(2, model.EntryTypeClockOut, time.Date(2026, 3, 9, 23, 59, 59, 999000000, madrid))
	corrective.Source = model.EntrySourceAutoClose

	entries := []model.TimeEntry{
		entry(1, model.EntryTypeClockIn, at(yesterday, 9, 0)),
		corrective,
	}

	_, anomaly := Reconcile(entries, now)

	assert.Nil(t, anomaly)
}

func TestReconcileInputNotMutated(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, madrid)
	entries := []model.TimeEntry{
		entry(2, model.EntryTypeClockOut, at(now, 17, 0)),
		entry(1, model.EntryTypeClockIn, at(now, 9, 0)),
	}

	Reconcile(entries, now)

	assert.Equal(t, int64(2), entries[0].ID)
	assert.Equal(t, int64(1), entries[1].ID)
}

func TestReconcileUTCEntriesLocalDayBoundary(t *testing.T) {
	// 23:30 UTC del día 9 son las 00:30 locales del día 10 en Madrid
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, madrid)
	entries := []model.TimeEntry{
		entry(1, model.EntryTypeClockIn, time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)),
	}

	view, anomaly := Reconcile(entries, now)

	require.Len(t, view.Shifts, 1)
	assert.True(t, view.CurrentlyClockedIn)
	assert.Nil(t, anomaly)
}
