// Package shift deriva los turnos del día a partir de la secuencia inmutable
// de fichajes de un usuario. Todo es puro: sin I/O, sin efectos, mismo
// resultado para la misma entrada y el mismo "now".
package shift

import (
	"sort"
	"time"

	"fichaje/internal/model"
	"fichaje/utils"
)

// Severity gravedad de un turno olvidado.
type Severity string

const (
	SeverityNormal   Severity = "NORMAL"
	SeverityExtended Severity = "EXTENDED"
)

// ExtendedThreshold a partir de estas horas sin salida el aviso pasa a
// EXTENDED y se pide al usuario que contacte con un administrador.
const ExtendedThreshold = 10 * time.Hour

// Shift un turno: entrada emparejada con su salida, o abierto.
// Incomplete marca los turnos cerrados implícitamente por una entrada
// duplicada: se conservan en la lista, nunca se descartan.
type Shift struct {
	ClockIn    model.TimeEntry
	ClockOut   *model.TimeEntry
	Incomplete bool
}

// Open indica si el turno sigue abierto (sin salida y no anómalo).
func (s Shift) Open() bool {
	return s.ClockOut == nil && !s.Incomplete
}

// Duration duración del turno cerrado; cero si sigue abierto.
func (s Shift) Duration() time.Duration {
	if s.ClockOut == nil {
		return 0
	}
	return s.ClockOut.Timestamp.Sub(s.ClockIn.Timestamp)
}

// DayView jornada de hoy derivada. No se persiste: se recalcula siempre
// desde el almacén de eventos.
type DayView struct {
	Date               time.Time // 00:00 local del día
	Shifts             []Shift   // cronológico
	CurrentlyClockedIn bool
}

// Anomaly turno olvidado: la entrada más reciente es de un día anterior y
// nunca se cerró. CorrectiveTimestamp es siempre las 23:59:59.999 locales
// del día de esa entrada, nunca "now", para que el turno olvidado quede
// acotado a su propio día natural.
type Anomaly struct {
	LastOpenEvent       model.TimeEntry
	AgeHours            float64
	Severity            Severity
	CorrectiveTimestamp time.Time
}

// Reconcile deriva la jornada de hoy y la posible anomalía de turno olvidado.
// El almacén devuelve los eventos ya ordenados, pero aquí se reordena
// igualmente: el resultado no puede depender de esa garantía.
func Reconcile(entries []model.TimeEntry, now time.Time) (DayView, *Anomaly) {
	loc := now.Location()

	view := DayView{
		Date:   utils.StartOfDay(now),
		Shifts: []Shift{},
	}

	if len(entries) == 0 {
		return view, nil
	}

	sorted := make([]model.TimeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	// una pasada: emparejar entradas con salidas
	var all []Shift
	var open *Shift

	for _, e := range sorted {
		switch e.EntryType {
		case model.EntryTypeClockIn:
			if open != nil {
				// entrada duplicada: el turno anterior se cierra como
				// incompleto y arranca uno nuevo
				open.Incomplete = true
				all = append(all, *open)
			}
			open = &Shift{ClockIn: e}

		case model.EntryTypeClockOut:
			if open == nil {
				// salida huérfana sin entrada: invisible para la vista
				continue
			}
			closed := e
			open.ClockOut = &closed
			all = append(all, *open)
			open = nil
		}
	}

	if open != nil {
		all = append(all, *open)
	}

	// partición por día natural local: solo los turnos de hoy
	for _, s := range all {
		if utils.SameDay(view.Date, s.ClockIn.Timestamp.In(loc)) {
			view.Shifts = append(view.Shifts, s)
		}
	}

	if n := len(view.Shifts); n > 0 {
		view.CurrentlyClockedIn = view.Shifts[n-1].Open()
	}

	return view, detectForgotten(sorted, now)
}

// detectForgotten mira únicamente el evento más reciente de toda la
// secuencia: si es una entrada de un día estrictamente anterior a hoy,
// hay un turno olvidado.
func detectForgotten(sorted []model.TimeEntry, now time.Time) *Anomaly {
	last := sorted[len(sorted)-1]
	if last.EntryType != model.EntryTypeClockIn {
		return nil
	}

	lastLocal := last.Timestamp.In(now.Location())
	if !utils.StartOfDay(lastLocal).Before(utils.StartOfDay(now)) {
		return nil
	}

	ageHours := now.Sub(last.Timestamp).Hours()
	severity := SeverityNormal
	if ageHours >= ExtendedThreshold.Hours() {
		severity = SeverityExtended
	}

	return &Anomaly{
		LastOpenEvent:       last,
		AgeHours:            ageHours,
		Severity:            severity,
		CorrectiveTimestamp: utils.EndOfDay(lastLocal),
	}
}
