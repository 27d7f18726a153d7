package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"fichaje/config"
	"fichaje/internal/cache"
	"fichaje/internal/location"
	"fichaje/internal/model"
	"fichaje/internal/model/dto"
	"fichaje/internal/reminder"
	"fichaje/internal/shift"
	"fichaje/internal/store"
	"fichaje/pkg/errors"
	"fichaje/pkg/logger"
	"fichaje/pkg/metrics"
	"fichaje/pkg/snowflake"
)

// EventRepository subconjunto del almacén de eventos que usa el servicio.
type EventRepository interface {
	Insert(ctx context.Context, entry *model.TimeEntry) error
	QueryRecent(ctx context.Context, userID int64, n int) ([]model.TimeEntry, error)
}

// ReminderNotifier concilia el recordatorio de salida tras cada fichaje.
type ReminderNotifier interface {
	EnsureReminder(ctx context.Context, userID int64, hasOpenShift bool)
}

// ActionLocker cerrojo de fichaje por usuario.
type ActionLocker interface {
	TryLock(ctx context.Context, userID int64) (bool, error)
	Unlock(ctx context.Context, userID int64) error
}

type redisActionLocker struct{}

func (redisActionLocker) TryLock(ctx context.Context, userID int64) (bool, error) {
	return cache.TryActionLock(ctx, userID)
}

func (redisActionLocker) Unlock(ctx context.Context, userID int64) error {
	return cache.ReleaseActionLock(ctx, userID)
}

// TimeclockService orquesta los fichajes. No guarda estado de turnos: cada
// operación re-deriva la jornada desde el almacén de eventos.
type TimeclockService struct {
	events    EventRepository
	reminders ReminderNotifier
	locker    ActionLocker
	resolver  location.Resolver
	loc       *time.Location
	lookback  int
	now       func() time.Time
}

var (
	timeclockService *TimeclockService
	timeclockOnce    sync.Once
)

func Timeclock() *TimeclockService {
	timeclockOnce.Do(func() {
		adapter := reminder.NewAdapter(
			reminder.NewMQScheduler(),
			config.Cfg.Location(),
			config.Cfg.ReminderTime,
		)
		timeclockService = NewTimeclockService(
			store.Events(),
			adapter,
			redisActionLocker{},
			location.NewPayloadResolver(),
			config.Cfg.Location(),
			config.Cfg.TodayLookbackEntries,
		)
	})
	return timeclockService
}

func NewTimeclockService(
	events EventRepository,
	reminders ReminderNotifier,
	locker ActionLocker,
	resolver location.Resolver,
	loc *time.Location,
	lookback int,
) *TimeclockService {
	return &TimeclockService{
		events:    events,
		reminders: reminders,
		locker:    locker,
		resolver:  resolver,
		loc:       loc,
		lookback:  lookback,
		now:       time.Now,
	}
}

// Today deriva la jornada actual. Si hay un turno olvidado de un día
// anterior aplica la salida correctiva en el acto y devuelve la jornada ya
// corregida junto con el bloque de anomalía.
func (s *TimeclockService) Today(ctx context.Context, userID int64) (*dto.TodayResponse, error) {
	view, anomalyData, err := s.deriveToday(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := s.toTodayResponse(view, anomalyData)
	return &resp, nil
}

// ClockIn registra una entrada.
func (s *TimeclockService) ClockIn(ctx context.Context, userID int64, req *dto.ClockRequest) (*dto.ClockResponse, error) {
	release, err := s.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	view, anomalyData, err := s.deriveToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	if view.CurrentlyClockedIn {
		return nil, errors.AlreadyClockedIn
	}

	var payload *dto.LocationPayload
	if req != nil {
		payload = req.Location
	}

	point, err := s.resolver.Resolve(ctx, payload)
	if err != nil {
		// permiso denegado: el fichaje se aborta con las instrucciones
		return nil, err
	}

	entry, err := s.insertEntry(ctx, userID, model.EntryTypeClockIn, point, payload)
	if err != nil {
		return nil, err
	}

	s.reminders.EnsureReminder(ctx, userID, true)

	return s.buildClockResponse(ctx, userID, entry, anomalyData)
}

// ClockOut registra una salida.
func (s *TimeclockService) ClockOut(ctx context.Context, userID int64, req *dto.ClockRequest) (*dto.ClockResponse, error) {
	release, err := s.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	view, anomalyData, err := s.deriveToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !view.CurrentlyClockedIn {
		return nil, errors.NoOpenShift
	}

	var payload *dto.LocationPayload
	if req != nil {
		payload = req.Location
	}

	point, err := s.resolver.Resolve(ctx, payload)
	if err != nil {
		return nil, err
	}

	entry, err := s.insertEntry(ctx, userID, model.EntryTypeClockOut, point, payload)
	if err != nil {
		return nil, err
	}

	s.reminders.EnsureReminder(ctx, userID, false)

	return s.buildClockResponse(ctx, userID, entry, anomalyData)
}

// acquire toma el cerrojo de acción del usuario. Si Redis falla se sigue
// sin cerrojo: perder la protección del doble toque es preferible a no
// poder fichar.
func (s *TimeclockService) acquire(ctx context.Context, userID int64) (func(), error) {
	locked, err := s.locker.TryLock(ctx, userID)
	if err != nil {
		logger.Logger.Warn("Action lock unavailable, proceeding without it",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return func() {}, nil
	}
	if !locked {
		return nil, errors.ActionInProgress
	}

	return func() {
		if err := s.locker.Unlock(ctx, userID); err != nil {
			logger.Logger.Warn("Failed to release action lock",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}, nil
}

// deriveToday consulta la ventana reciente de eventos, reconcilia y, si
// aparece un turno olvidado, inserta la salida correctiva y reconcilia de
// nuevo sobre el estado ya corregido.
func (s *TimeclockService) deriveToday(ctx context.Context, userID int64) (shift.DayView, *dto.AnomalyData, error) {
	now := s.now().In(s.loc)

	entries, err := s.events.QueryRecent(ctx, userID, s.lookback)
	if err != nil {
		return shift.DayView{}, nil, fmt.Errorf("failed to query time entries: %w", err)
	}

	view, anomaly := shift.Reconcile(entries, now)
	if anomaly == nil {
		return view, nil, nil
	}

	corrective, err := s.insertCorrective(ctx, userID, anomaly)
	if err != nil {
		return shift.DayView{}, nil, err
	}

	metrics.RecordAnomalyCorrected(ctx, string(anomaly.Severity))
	logger.Logger.Info("Applied corrective clock-out for forgotten shift",
		zap.Int64("user_id", userID),
		zap.Time("clock_in_at", anomaly.LastOpenEvent.Timestamp),
		zap.Time("corrected_at", corrective.Timestamp),
		zap.String("severity", string(anomaly.Severity)),
	)

	entries, err = s.events.QueryRecent(ctx, userID, s.lookback)
	if err != nil {
		return shift.DayView{}, nil, fmt.Errorf("failed to re-query time entries: %w", err)
	}
	view, _ = shift.Reconcile(entries, now)

	data := &dto.AnomalyData{
		ClockInAt:   anomaly.LastOpenEvent.Timestamp,
		AgeHours:    anomaly.AgeHours,
		Severity:    string(anomaly.Severity),
		CorrectedAt: corrective.Timestamp,
	}
	if anomaly.Severity == shift.SeverityExtended {
		data.Warning = "El turno olvidado superaba las 10 horas. Contacta con un administrador para revisar la corrección."
	}

	return view, data, nil
}

func (s *TimeclockService) insertCorrective(ctx context.Context, userID int64, anomaly *shift.Anomaly) (*model.TimeEntry, error) {
	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate entry ID: %w", err)
	}

	entry := &model.TimeEntry{
		PublicID:  publicID,
		UserID:    userID,
		EntryType: model.EntryTypeClockOut,
		Timestamp: anomaly.CorrectiveTimestamp.UTC(),
		Source:    model.EntrySourceAutoClose,
	}

	if err := s.events.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to insert corrective clock-out: %w", err)
	}

	metrics.RecordClockEvent(ctx, string(entry.EntryType), string(entry.Source))
	return entry, nil
}

func (s *TimeclockService) insertEntry(
	ctx context.Context,
	userID int64,
	entryType model.EntryType,
	point *location.Point,
	payload *dto.LocationPayload,
) (*model.TimeEntry, error) {
	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate entry ID: %w", err)
	}

	entry := &model.TimeEntry{
		PublicID:  publicID,
		UserID:    userID,
		EntryType: entryType,
		Timestamp: s.now().UTC(),
		Source:    model.EntrySourceUser,
	}

	if point != nil {
		entry.Latitude = &point.Latitude
		entry.Longitude = &point.Longitude
		entry.AccuracyMeters = point.AccuracyMeters
	}
	if payload != nil && payload.DeviceKind != "" {
		kind := model.DeviceKind(payload.DeviceKind)
		entry.DeviceKind = &kind
	}

	if err := s.events.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to insert time entry: %w", err)
	}

	metrics.RecordClockEvent(ctx, string(entryType), string(entry.Source))
	return entry, nil
}

func (s *TimeclockService) buildClockResponse(
	ctx context.Context,
	userID int64,
	entry *model.TimeEntry,
	anomalyData *dto.AnomalyData,
) (*dto.ClockResponse, error) {
	view, newAnomaly, err := s.deriveToday(ctx, userID)
	if err != nil {
		return nil, err
	}
	if newAnomaly != nil {
		anomalyData = newAnomaly
	}

	return &dto.ClockResponse{
		Entry: toEntryData(*entry),
		Today: s.toTodayResponse(view, anomalyData),
	}, nil
}

func (s *TimeclockService) toTodayResponse(view shift.DayView, anomaly *dto.AnomalyData) dto.TodayResponse {
	shifts := make([]dto.ShiftData, 0, len(view.Shifts))
	for _, sh := range view.Shifts {
		data := dto.ShiftData{
			ClockIn:    toEntryData(sh.ClockIn),
			Incomplete: sh.Incomplete,
		}
		if sh.ClockOut != nil {
			out := toEntryData(*sh.ClockOut)
			data.ClockOut = &out
		}
		shifts = append(shifts, data)
	}

	return dto.TodayResponse{
		Date:               view.Date.Format("2006-01-02"),
		Shifts:             shifts,
		CurrentlyClockedIn: view.CurrentlyClockedIn,
		Anomaly:            anomaly,
	}
}

func toEntryData(entry model.TimeEntry) dto.EntryData {
	data := dto.EntryData{
		ID:        strconv.FormatInt(entry.PublicID, 10),
		EntryType: string(entry.EntryType),
		Timestamp: entry.Timestamp,
		Source:    string(entry.Source),
		HasCoords: entry.HasLocation(),
	}
	if entry.DeviceKind != nil {
		data.DeviceKind = string(*entry.DeviceKind)
	}
	return data
}
