package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"fichaje/config"
	"fichaje/internal/model"
	"fichaje/internal/model/dto"
	"fichaje/internal/store"
	"fichaje/pkg/errors"
	"fichaje/pkg/metrics"
)

const defaultListLimit = 100

// csvBOM el BOM UTF-8 que Excel necesita para abrir el informe con acentos.
const csvBOM = "\xEF\xBB\xBF"

// ReportEventRepository consultas de rango sobre el almacén de eventos.
type ReportEventRepository interface {
	QueryRangeAll(ctx context.Context, from, to time.Time, userID *int64, limit int) ([]model.TimeEntry, error)
	QueryRangeAllAsc(ctx context.Context, from, to time.Time, userID *int64) ([]model.TimeEntry, error)
}

// ProfileDirectory resolución de perfiles para unir nombre y email.
type ProfileDirectory interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Profile, error)
	GetByPublicID(ctx context.Context, publicID int64) (*model.Profile, error)
}

// ChangeFeed suscripción a los avisos de cambio del almacén.
type ChangeFeed interface {
	Subscribe(ctx context.Context, table string, fn func(store.ChangeEvent)) (func(), error)
}

type storeChangeFeed struct{}

func (storeChangeFeed) Subscribe(ctx context.Context, table string, fn func(store.ChangeEvent)) (func(), error) {
	return store.Subscribe(ctx, table, fn)
}

// ReportService listados y exportación para administración. Es una capa
// fina: consulta rangos y une perfiles, sin lógica de turnos.
type ReportService struct {
	events   ReportEventRepository
	profiles ProfileDirectory
	feed     ChangeFeed
	loc      *time.Location
	now      func() time.Time
}

var (
	reportService *ReportService
	reportOnce    sync.Once
)

func Report() *ReportService {
	reportOnce.Do(func() {
		reportService = NewReportService(store.Events(), store.Profiles(), storeChangeFeed{}, config.Cfg.Location())
	})
	return reportService
}

func NewReportService(events ReportEventRepository, profiles ProfileDirectory, feed ChangeFeed, loc *time.Location) *ReportService {
	return &ReportService{
		events:   events,
		profiles: profiles,
		feed:     feed,
		loc:      loc,
		now:      time.Now,
	}
}

// StreamEntries reenvía a emit cada aviso de cambio de fichajes hasta que
// el contexto termine o emit falle. El aviso no lleva el dato: el cliente
// debe recargar el listado al recibirlo.
func (s *ReportService) StreamEntries(ctx context.Context, emit func(dto.EntryChangeData) error) error {
	changes := make(chan store.ChangeEvent, 16)
	unsubscribe, err := s.feed.Subscribe(ctx, model.TimeEntry{}.TableName(), func(ev store.ChangeEvent) {
		select {
		case changes <- ev:
		default:
			// un consumidor lento pierde avisos; el siguiente le hará recargar igual
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to entry changes: %w", err)
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-changes:
			if err := emit(dto.EntryChangeData{At: ev.At}); err != nil {
				return err
			}
		}
	}
}

// ListEntries últimos fichajes del mes filtrado, con perfil unido.
func (s *ReportService) ListEntries(ctx context.Context, q *dto.EntriesQuery) ([]dto.AdminEntryData, error) {
	now := s.now().In(s.loc)

	year := q.Year
	if year == 0 {
		year = now.Year()
	}
	month := q.Month
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return nil, errors.ReportInvalidRange
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 1, 0)

	userID, err := s.resolveUserFilter(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	entries, err := s.events.QueryRangeAll(ctx, from, to, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}

	return s.joinProfiles(ctx, entries)
}

// ExportCSV genera el informe en el formato del cliente original: BOM
// UTF-8, separador ';' y todas las celdas entrecomilladas.
func (s *ReportService) ExportCSV(ctx context.Context, q *dto.ExportQuery) (string, []byte, error) {
	from, to, scope, err := s.resolveExportRange(q)
	if err != nil {
		return "", nil, err
	}

	userID, err := s.resolveUserFilter(ctx, q.UserID)
	if err != nil {
		return "", nil, err
	}

	entries, err := s.events.QueryRangeAllAsc(ctx, from, to, userID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	if len(entries) == 0 {
		return "", nil, errors.ReportEmpty
	}

	rows, err := s.joinProfiles(ctx, entries)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString(csvBOM)
	sb.WriteString(`"Empleado";"Tipo";"Fecha";"Hora"` + "\n")

	for _, row := range rows {
		local := row.Timestamp.In(s.loc)
		writeCSVRow(&sb,
			row.FullName,
			entryTypeLabel(row.EntryType, row.Source),
			local.Format("02/01/2006"),
			local.Format("15:04"),
		)
	}

	fileName := "fichajes_" + scope + ".csv"
	metrics.RecordReportExported(ctx)

	return fileName, []byte(sb.String()), nil
}

// resolveExportRange aplica la semántica de "all": mes concreto exige año
// concreto; año sin mes exporta el año entero; todo "all" exporta el
// histórico completo.
func (s *ReportService) resolveExportRange(q *dto.ExportQuery) (from, to time.Time, scope string, err error) {
	now := s.now().In(s.loc)

	yearAll := q.Year == "" || q.Year == "all"
	monthAll := q.Month == "" || q.Month == "all"

	if yearAll && !monthAll {
		return time.Time{}, time.Time{}, "", errors.ReportMonthNoYear
	}

	if yearAll {
		// histórico completo
		from = time.Date(2000, 1, 1, 0, 0, 0, 0, s.loc)
		to = now.AddDate(0, 0, 1)
		return from, to, "todo", nil
	}

	year, convErr := strconv.Atoi(q.Year)
	if convErr != nil || year < 2000 || year > 2200 {
		return time.Time{}, time.Time{}, "", errors.ReportInvalidRange
	}

	if monthAll {
		from = time.Date(year, 1, 1, 0, 0, 0, 0, s.loc)
		to = from.AddDate(1, 0, 0)
		return from, to, strconv.Itoa(year), nil
	}

	month, convErr := strconv.Atoi(q.Month)
	if convErr != nil || month < 1 || month > 12 {
		return time.Time{}, time.Time{}, "", errors.ReportInvalidRange
	}

	from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	to = from.AddDate(0, 1, 0)
	return from, to, fmt.Sprintf("%04d-%02d", year, month), nil
}

func (s *ReportService) resolveUserFilter(ctx context.Context, raw string) (*int64, error) {
	if raw == "" || raw == "all" {
		return nil, nil
	}

	publicID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.InvalidUserID
	}

	profile, err := s.profiles.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	if profile == nil {
		return nil, errors.UserNotFound
	}

	return &profile.ID, nil
}

func (s *ReportService) joinProfiles(ctx context.Context, entries []model.TimeEntry) ([]dto.AdminEntryData, error) {
	ids := make([]int64, 0, len(entries))
	seen := make(map[int64]bool, len(entries))
	for _, e := range entries {
		if !seen[e.UserID] {
			seen[e.UserID] = true
			ids = append(ids, e.UserID)
		}
	}

	profiles, err := s.profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}

	rows := make([]dto.AdminEntryData, 0, len(entries))
	for _, e := range entries {
		row := dto.AdminEntryData{
			ID:        strconv.FormatInt(e.PublicID, 10),
			EntryType: string(e.EntryType),
			Timestamp: e.Timestamp,
			Source:    string(e.Source),
		}
		if p, ok := profiles[e.UserID]; ok {
			row.FullName = p.FullName
			row.Email = p.Email
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// writeCSVRow escribe una fila con todas las celdas entrecomilladas, que
// es como el formato original escapa nombres con ';' o comillas.
func writeCSVRow(sb *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(f, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
}

func entryTypeLabel(entryType, source string) string {
	if entryType == string(model.EntryTypeClockIn) {
		return "Entrada"
	}
	if source == string(model.EntrySourceAutoClose) {
		return "Salida (automática)"
	}
	return "Salida"
}
