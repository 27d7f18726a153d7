// Package schedule contiene el barrido diario que avisa por correo a los
// empleados con entrada fichada y sin salida al final del día.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fichaje/config"
	"fichaje/internal/cache"
	"fichaje/internal/model"
	"fichaje/internal/queue"
	"fichaje/internal/shift"
	"fichaje/internal/store"
	"fichaje/pkg/logger"
	"fichaje/utils"
)

var (
	schedulerOnce sync.Once
	schedulerInst *MissingClockOutScheduler
)

type MissingClockOutScheduler struct {
	logger *zap.Logger

	jobRunning  bool
	jobMu       sync.Mutex
	lastJobTime time.Time
}

func GetScheduler() *MissingClockOutScheduler {
	schedulerOnce.Do(func() {
		schedulerInst = &MissingClockOutScheduler{
			logger: logger.Logger,
		}
	})
	return schedulerInst
}

// openShiftCandidate empleado con turno abierto hoy.
type openShiftCandidate struct {
	UserID    int64
	ClockInAt time.Time
}

// findOpenShifts agrupa los eventos de hoy por usuario y devuelve los que
// tienen la jornada abierta. Puro, para poder probarse sin almacén.
func findOpenShifts(entries []model.TimeEntry, now time.Time) []openShiftCandidate {
	byUser := make(map[int64][]model.TimeEntry)
	order := make([]int64, 0)
	for _, e := range entries {
		if _, ok := byUser[e.UserID]; !ok {
			order = append(order, e.UserID)
		}
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}

	var out []openShiftCandidate
	for _, userID := range order {
		view, _ := shift.Reconcile(byUser[userID], now)
		if !view.CurrentlyClockedIn {
			continue
		}
		last := view.Shifts[len(view.Shifts)-1]
		out = append(out, openShiftCandidate{
			UserID:    userID,
			ClockInAt: last.ClockIn.Timestamp,
		})
	}
	return out
}

// ScanToday recorre los fichajes de hoy y publica un aviso por cada
// empleado con entrada sin salida. Reentrante a nivel de proceso: si un
// barrido sigue en marcha, el siguiente se salta.
func (s *MissingClockOutScheduler) ScanToday(ctx context.Context) error {
	s.jobMu.Lock()
	if s.jobRunning {
		s.jobMu.Unlock()
		s.logger.Info("Missing clock-out scan already running, skipping")
		return nil
	}
	s.jobRunning = true
	s.jobMu.Unlock()

	defer func() {
		s.jobMu.Lock()
		s.jobRunning = false
		s.jobMu.Unlock()
	}()

	loc := config.Cfg.Location()
	now := time.Now().In(loc)
	date := now.Format("2006-01-02")
	s.lastJobTime = now

	s.logger.Info("Starting missing clock-out scan", zap.String("date", date))

	entries, err := store.Events().QueryRangeAllAsc(ctx, utils.StartOfDay(now), now, nil)
	if err != nil {
		s.logger.Error("Failed to query today's entries", zap.Error(err))
		return fmt.Errorf("failed to query today's entries: %w", err)
	}

	candidates := findOpenShifts(entries, now)
	if len(candidates) == 0 {
		s.logger.Info("No open shifts found")
		return nil
	}

	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.UserID)
	}
	profiles, err := store.Profiles().GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to load profiles", zap.Error(err))
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	batchID := uuid.NewString()
	published := 0

	for _, c := range candidates {
		profile, ok := profiles[c.UserID]
		if !ok {
			s.logger.Warn("Skipping entry without profile", zap.Int64("user_id", c.UserID))
			continue
		}

		first, err := cache.TryMarkMissingClockOutEmail(ctx, c.UserID, date)
		if err != nil {
			s.logger.Warn("Failed to check email dedup marker",
				zap.Int64("user_id", c.UserID),
				zap.Error(err),
			)
			continue
		}
		if !first {
			// ya avisado hoy
			continue
		}

		msg := model.MissingClockOutEmailMessage{
			BatchID:   batchID,
			UserID:    c.UserID,
			Email:     profile.Email,
			FullName:  profile.FullName,
			EntryTime: c.ClockInAt.In(loc).Format("15:04"),
			Date:      date,
		}

		if err := queue.PublishMissingClockOutEmail(msg); err != nil {
			// liberar la marca para que el siguiente barrido reintente
			if unmarkErr := cache.UnmarkMissingClockOutEmail(ctx, c.UserID, date); unmarkErr != nil {
				s.logger.Warn("Failed to release email dedup marker",
					zap.Int64("user_id", c.UserID),
					zap.Error(unmarkErr),
				)
			}
			continue
		}
		published++
	}

	s.logger.Info("Missing clock-out scan finished",
		zap.String("batch_id", batchID),
		zap.Int("candidates", len(candidates)),
		zap.Int("published", published),
		zap.Duration("elapsed", time.Since(now)),
	)

	return nil
}

// RunDaily bloquea ejecutando el barrido cada día a la hora configurada,
// hasta que el contexto se cancele.
func (s *MissingClockOutScheduler) RunDaily(ctx context.Context) {
	for {
		next := s.nextRun(time.Now())
		s.logger.Info("Next missing clock-out scan scheduled", zap.Time("at", next))

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		if err := s.ScanToday(ctx); err != nil {
			s.logger.Error("Missing clock-out scan failed", zap.Error(err))
		}
	}
}

func (s *MissingClockOutScheduler) nextRun(now time.Time) time.Time {
	loc := config.Cfg.Location()
	local := now.In(loc)

	run := time.Date(local.Year(), local.Month(), local.Day(),
		config.Cfg.MissingClockOutHour, 0, 0, 0, loc)
	if !run.After(local) {
		run = run.AddDate(0, 0, 1)
	}
	return run
}
