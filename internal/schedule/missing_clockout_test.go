package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fichaje/internal/model"
)

var madrid = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		panic(err)
	}
	return loc
}()

func entry(userID int64, entryType model.EntryType, ts time.Time) model.TimeEntry {
	return model.TimeEntry{UserID: userID, EntryType: entryType, Timestamp: ts.UTC()}
}

func TestFindOpenShifts(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, madrid)
	day := func(h, m int) time.Time {
		return time.Date(2026, 3, 10, h, m, 0, 0, madrid)
	}

	entries := []model.TimeEntry{
		// usuario 1: entrada sin salida
		entry(1, model.EntryTypeClockIn, day(9, 0)),
		// usuario 2: jornada cerrada
		entry(2, model.EntryTypeClockIn, day(8, 30)),
		entry(2, model.EntryTypeClockOut, day(17, 0)),
		// usuario 3: dos turnos, el segundo abierto
		entry(3, model.EntryTypeClockIn, day(8, 0)),
		entry(3, model.EntryTypeClockOut, day(14, 0)),
		entry(3, model.EntryTypeClockIn, day(15, 30)),
	}

	candidates := findOpenShifts(entries, now)

	require.Len(t, candidates, 2)
	assert.Equal(t, int64(1), candidates[0].UserID)
	assert.True(t, candidates[0].ClockInAt.Equal(day(9, 0)))
	assert.Equal(t, int64(3), candidates[1].UserID)
	assert.True(t, candidates[1].ClockInAt.Equal(day(15, 30)))
}

func TestFindOpenShiftsEmpty(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, madrid)

	assert.Empty(t, findOpenShifts(nil, now))
}

func TestFindOpenShiftsOrphanClockOut(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, madrid)
	entries := []model.TimeEntry{
		entry(1, model.EntryTypeClockOut, time.Date(2026, 3, 10, 9, 0, 0, 0, madrid)),
	}

	assert.Empty(t, findOpenShifts(entries, now))
}
