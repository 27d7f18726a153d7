package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fichaje/internal/model"
	"fichaje/internal/model/dto"
	"fichaje/internal/store"
	"fichaje/pkg/errors"
)

type fakeReportEvents struct {
	entries []model.TimeEntry
}

func (f *fakeReportEvents) filter(from, to time.Time, userID *int64) []model.TimeEntry {
	var out []model.TimeEntry
	for _, e := range f.entries {
		if e.Timestamp.Before(from) || !e.Timestamp.Before(to) {
			continue
		}
		if userID != nil && e.UserID != *userID {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (f *fakeReportEvents) QueryRangeAll(ctx context.Context, from, to time.Time, userID *int64, limit int) ([]model.TimeEntry, error) {
	out := f.filter(from, to, userID)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReportEvents) QueryRangeAllAsc(ctx context.Context, from, to time.Time, userID *int64) ([]model.TimeEntry, error) {
	return f.filter(from, to, userID), nil
}

type fakeProfiles struct {
	byID map[int64]model.Profile
}

func (f *fakeProfiles) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Profile, error) {
	out := make(map[int64]model.Profile)
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeProfiles) GetByPublicID(ctx context.Context, publicID int64) (*model.Profile, error) {
	for _, p := range f.byID {
		if p.PublicID == publicID {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeChangeFeed struct {
	mu           sync.Mutex
	fn           func(store.ChangeEvent)
	unsubscribed bool
}

func (f *fakeChangeFeed) Subscribe(ctx context.Context, table string, fn func(store.ChangeEvent)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubscribed = true
	}, nil
}

func (f *fakeChangeFeed) publish(ev store.ChangeEvent) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	fn(ev)
}

func (f *fakeChangeFeed) subscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fn != nil
}

func (f *fakeChangeFeed) isUnsubscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribed
}

func newReportFixture(now time.Time) (*ReportService, *fakeReportEvents) {
	events := &fakeReportEvents{}
	profiles := &fakeProfiles{byID: map[int64]model.Profile{
		1: {BaseModel: model.BaseModel{ID: 1}, PublicID: 101, Email: "ana@empresa.es", FullName: "Ana García", Role: model.RoleEmployee},
		2: {BaseModel: model.BaseModel{ID: 2}, PublicID: 102, Email: "luis@empresa.es", FullName: "Luis Pérez", Role: model.RoleEmployee},
	}}
	svc := NewReportService(events, profiles, &fakeChangeFeed{}, madrid)
	svc.now = func() time.Time { return now }
	return svc, events
}

func reportEntry(id, userID int64, entryType model.EntryType, source model.EntrySource, ts time.Time) model.TimeEntry {
	return model.TimeEntry{
		ID: id, PublicID: id, UserID: userID,
		EntryType: entryType, Source: source, Timestamp: ts.UTC(),
	}
}

func TestExportCSVFormat(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, madrid)
	svc, events := newReportFixture(now)

	events.entries = []model.TimeEntry{
		reportEntry(1, 1, model.EntryTypeClockIn, model.EntrySourceUser, time.Date(2026, 3, 10, 9, 0, 0, 0, madrid)),
		reportEntry(2, 1, model.EntryTypeClockOut, model.EntrySourceAutoClose, time.Date(2026, 3, 10, 23, 59, 59, 999000000, madrid)),
	}

	fileName, data, err := svc.ExportCSV(context.Background(), &dto.ExportQuery{Month: "3", Year: "2026"})
	require.NoError(t, err)

	assert.Equal(t, "fichajes_2026-03.csv", fileName)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF"), "el informe debe empezar por BOM UTF-8")

	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(content, "\xEF\xBB\xBF"), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"Empleado";"Tipo";"Fecha";"Hora"`, lines[0])
	assert.Equal(t, `"Ana García";"Entrada";"10/03/2026";"09:00"`, lines[1])
	assert.Equal(t, `"Ana García";"Salida (automática)";"10/03/2026";"23:59"`, lines[2])
}

func TestExportCSVEmpty(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, madrid)
	svc, _ := newReportFixture(now)

	_, _, err := svc.ExportCSV(context.Background(), &dto.ExportQuery{Month: "3", Year: "2026"})

	assert.ErrorIs(t, err, errors.ReportEmpty)
}

func TestExportCSVMonthWithoutYear(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, madrid)
	svc, _ := newReportFixture(now)

	_, _, err := svc.ExportCSV(context.Background(), &dto.ExportQuery{Month: "3", Year: "all"})

	assert.ErrorIs(t, err, errors.ReportMonthNoYear)
}

func TestExportCSVWholeHistory(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, madrid)
	svc, events := newReportFixture(now)
	events.entries = []model.TimeEntry{
		reportEntry(1, 1, model.EntryTypeClockIn, model.EntrySourceUser, time.Date(2024, 7, 1, 8, 0, 0, 0, madrid)),
		reportEntry(2, 2, model.EntryTypeClockIn, model.EntrySourceUser, time.Date(2026, 3, 2, 8, 0, 0, 0, madrid)),
	}

	fileName, _, err := svc.ExportCSV(context.Background(), &dto.ExportQuery{Month: "all", Year: "all"})
	require.NoError(t, err)

	assert.Equal(t, "fichajes_todo.csv", fileName)
}

func TestExportCSVUserFilter(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, madrid)
	svc, events := newReportFixture(now)
	events.entries = []model.TimeEntry{
		reportEntry(1, 1, model.EntryTypeClockIn, model.EntrySourceUser, time.Date(2026, 3, 2, 8, 0, 0, 0, madrid)),
		reportEntry(2, 2, model.EntryTypeClockIn, model.EntrySourceUser, time.Date(2026, 3, 2, 9, 0, 0, 0, madrid)),
	}

	_, data, err := svc.ExportCSV(context.Background(), &dto.ExportQuery{Month: "3", Year: "2026", UserID: "102"})
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "Luis Pérez")
	assert.NotContains(t, content, "Ana García")
}

func TestExportCSVUnknownUser(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, madrid)
	svc, _ := newReportFixture(now)

	_, _, err := svc.ExportCSV(context.Background(), &dto.ExportQuery{Month: "3", Year: "2026", UserID: "999"})

	assert.ErrorIs(t, err, errors.UserNotFound)
}

func TestListEntriesJoinsProfiles(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, madrid)
	svc, events := newReportFixture(now)
	events.entries = []model.TimeEntry{
		reportEntry(1, 1, model.EntryTypeClockIn, model.EntrySourceUser, time.Date(2026, 3, 2, 8, 0, 0, 0, madrid)),
	}

	rows, err := svc.ListEntries(context.Background(), &dto.EntriesQuery{})
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "Ana García", rows[0].FullName)
	assert.Equal(t, "ana@empresa.es", rows[0].Email)
	assert.Equal(t, "entrada", rows[0].EntryType)
}

func TestListEntriesInvalidMonth(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, madrid)
	svc, _ := newReportFixture(now)

	_, err := svc.ListEntries(context.Background(), &dto.EntriesQuery{Month: 13})

	assert.ErrorIs(t, err, errors.ReportInvalidRange)
}

func TestStreamEntriesForwardsChangesUntilCancelled(t *testing.T) {
	feed := &fakeChangeFeed{}
	svc := NewReportService(&fakeReportEvents{}, &fakeProfiles{}, feed, madrid)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan dto.EntryChangeData, 4)
	done := make(chan error, 1)
	go func() {
		done <- svc.StreamEntries(ctx, func(change dto.EntryChangeData) error {
			got <- change
			return nil
		})
	}()

	require.Eventually(t, feed.subscribed, time.Second, time.Millisecond)

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	feed.publish(store.ChangeEvent{Table: "time_entries", UserID: 1, At: at})

	select {
	case change := <-got:
		assert.Equal(t, at, change.At)
	case <-time.After(time.Second):
		t.Fatal("change was not forwarded")
	}

	cancel()
	require.NoError(t, <-done)
	assert.True(t, feed.isUnsubscribed())
}

func TestStreamEntriesStopsWhenEmitFails(t *testing.T) {
	feed := &fakeChangeFeed{}
	svc := NewReportService(&fakeReportEvents{}, &fakeProfiles{}, feed, madrid)

	emitErr := errors.Definition{Code: "STREAM_CLOSED", Message: "client went away"}
	done := make(chan error, 1)
	go func() {
		done <- svc.StreamEntries(context.Background(), func(dto.EntryChangeData) error {
			return emitErr
		})
	}()

	require.Eventually(t, feed.subscribed, time.Second, time.Millisecond)
	feed.publish(store.ChangeEvent{Table: "time_entries", UserID: 1, At: time.Now()})

	select {
	case err := <-done:
		assert.ErrorIs(t, err, emitErr)
		assert.True(t, feed.isUnsubscribed())
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after emit failure")
	}
}
