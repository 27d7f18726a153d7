package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fichaje/internal/model"
	"fichaje/pkg/logger"
)

func init() {
	logger.Logger = zap.NewNop()
}

var madrid = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		panic(err)
	}
	return loc
}()

// fakeScheduler planificador en memoria con la misma semántica de
// idempotencia por ReminderID que la implementación real.
type fakeScheduler struct {
	mu        sync.Mutex
	scheduled map[string]model.ClockOutReminderMessage
	calls     int
	cancels   []string
	failNext  error

	entered chan struct{} // si no es nil, señala la entrada y espera release
	release chan struct{}
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[string]model.ClockOutReminderMessage)}
}

func (f *fakeScheduler) ScheduleAt(ctx context.Context, msg model.ClockOutReminderMessage) error {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	if _, ok := f.scheduled[msg.ReminderID]; !ok {
		f.scheduled[msg.ReminderID] = msg
	}
	return nil
}

func (f *fakeScheduler) Cancel(ctx context.Context, userID int64, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, date)
	for id := range f.scheduled {
		delete(f.scheduled, id)
	}
	return nil
}

func newTestAdapter(s Scheduler, now time.Time) *Adapter {
	a := NewAdapter(s, madrid, "18:15:00")
	a.now = func() time.Time { return now }
	return a
}

func TestEnsureReminderSchedulesOnce(t *testing.T) {
	sched := newFakeScheduler()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, madrid)
	a := newTestAdapter(sched, now)

	a.EnsureReminder(context.Background(), 7, true)
	a.EnsureReminder(context.Background(), 7, true)
	a.EnsureReminder(context.Background(), 7, true)

	require.Len(t, sched.scheduled, 1)
	msg := sched.scheduled["clockout:7:2026-03-10"]
	assert.Equal(t, int64(7), msg.UserID)
	assert.Equal(t, "2026-03-10", msg.Date)

	trigger, err := time.Parse(time.RFC3339, msg.TriggerAt)
	require.NoError(t, err)
	assert.Equal(t, 18, trigger.Hour())
	assert.Equal(t, 15, trigger.Minute())
	assert.Equal(t, int(9*time.Hour.Seconds()+15*time.Minute.Seconds()), msg.DelaySeconds)
}

func TestEnsureReminderCancelsOnClose(t *testing.T) {
	sched := newFakeScheduler()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, madrid)
	a := newTestAdapter(sched, now)

	a.EnsureReminder(context.Background(), 7, true)
	require.Len(t, sched.scheduled, 1)

	a.EnsureReminder(context.Background(), 7, false)

	assert.Empty(t, sched.scheduled)
	assert.Equal(t, []string{"2026-03-10"}, sched.cancels)
}

func TestEnsureReminderNoopAfterTriggerTime(t *testing.T) {
	sched := newFakeScheduler()
	now := time.Date(2026, 3, 10, 18, 30, 0, 0, madrid)
	a := newTestAdapter(sched, now)

	a.EnsureReminder(context.Background(), 7, true)

	// pasada la hora de disparo no se programa nada, ni para mañana
	assert.Empty(t, sched.scheduled)
	assert.Zero(t, sched.calls)
}

func TestEnsureReminderExactTriggerTimeIsNoop(t *testing.T) {
	sched := newFakeScheduler()
	now := time.Date(2026, 3, 10, 18, 15, 0, 0, madrid)
	a := newTestAdapter(sched, now)

	a.EnsureReminder(context.Background(), 7, true)

	assert.Zero(t, sched.calls)
}

func TestEnsureReminderCollapsesConcurrentCalls(t *testing.T) {
	sched := newFakeScheduler()
	sched.entered = make(chan struct{}, 1)
	sched.release = make(chan struct{})

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, madrid)
	a := newTestAdapter(sched, now)

	done := make(chan struct{})
	go func() {
		a.EnsureReminder(context.Background(), 7, true)
		close(done)
	}()

	<-sched.entered

	// con la primera llamada aún en curso, la segunda colapsa sin tocar
	// el planificador
	a.EnsureReminder(context.Background(), 7, true)

	close(sched.release)
	<-done
	sched.entered = nil

	assert.Equal(t, 1, sched.calls)

	// terminada la primera, el usuario vuelve a poder programar
	a.EnsureReminder(context.Background(), 7, true)
	assert.Equal(t, 2, sched.calls)
}

func TestEnsureReminderSwallowsSchedulerErrors(t *testing.T) {
	sched := newFakeScheduler()
	sched.failNext = assert.AnError
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, madrid)
	a := newTestAdapter(sched, now)

	// no hay error de vuelta ni pánico: el fichaje nunca depende del
	// planificador
	a.EnsureReminder(context.Background(), 7, true)

	assert.Empty(t, sched.scheduled)
}

func TestEnsureReminderIndependentUsers(t *testing.T) {
	sched := newFakeScheduler()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, madrid)
	a := newTestAdapter(sched, now)

	a.EnsureReminder(context.Background(), 1, true)
	a.EnsureReminder(context.Background(), 2, true)

	assert.Len(t, sched.scheduled, 2)
}
