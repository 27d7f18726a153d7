package reminder

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"fichaje/internal/cache"
	"fichaje/internal/model"
	"fichaje/pkg/logger"
	"fichaje/utils"
)

// Adapter decide tras cada fichaje si el recordatorio de salida del día
// debe existir o no, y concilia al planificador con esa decisión.
type Adapter struct {
	scheduler    Scheduler
	loc          *time.Location
	reminderTime string // "15:04:05" hora local de disparo
	now          clock

	mu       sync.Mutex
	inflight map[int64]bool
}

func NewAdapter(s Scheduler, loc *time.Location, reminderTime string) *Adapter {
	return &Adapter{
		scheduler:    s,
		loc:          loc,
		reminderTime: reminderTime,
		now:          time.Now,
		inflight:     make(map[int64]bool),
	}
}

// EnsureReminder hace converger el recordatorio con el estado del turno:
// turno abierto implica un (solo) recordatorio hoy, turno cerrado implica
// ninguno. No devuelve error: el fichaje ya está persistido y un fallo del
// planificador no debe deshacerlo.
func (a *Adapter) EnsureReminder(ctx context.Context, userID int64, hasOpenShift bool) {
	// colapsar ráfagas: si ya hay una llamada en curso para este usuario,
	// la nueva no aporta nada (la marca SetNX cubre la idempotencia entre
	// procesos)
	a.mu.Lock()
	if a.inflight[userID] {
		a.mu.Unlock()
		return
	}
	a.inflight[userID] = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		delete(a.inflight, userID)
		a.mu.Unlock()
	}()

	now := a.now().In(a.loc)
	date := now.Format("2006-01-02")

	if !hasOpenShift {
		if err := a.scheduler.Cancel(ctx, userID, date); err != nil {
			logger.Logger.Warn("Failed to cancel clock-out reminder",
				zap.Int64("user_id", userID),
				zap.String("date", date),
				zap.Error(err),
			)
		}
		return
	}

	trigger, err := utils.ParseTime(a.reminderTime, now)
	if err != nil {
		logger.Logger.Error("Invalid reminder time",
			zap.String("reminder_time", a.reminderTime),
			zap.Error(err),
		)
		return
	}

	if !now.Before(trigger) {
		// la hora del recordatorio ya pasó hoy: no se programa nada,
		// tampoco para mañana
		return
	}

	delay := trigger.Sub(now)
	msg := model.ClockOutReminderMessage{
		ReminderID:   cache.ReminderKey(userID, date),
		UserID:       userID,
		Date:         date,
		ScheduledAt:  now.Format(time.RFC3339),
		TriggerAt:    trigger.Format(time.RFC3339),
		DelaySeconds: int(delay.Seconds()),
	}

	if err := a.scheduler.ScheduleAt(ctx, msg); err != nil {
		logger.Logger.Warn("Failed to schedule clock-out reminder",
			zap.Int64("user_id", userID),
			zap.String("date", date),
			zap.Error(err),
		)
	}
}
