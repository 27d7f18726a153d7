package dto

import "time"

// ========== Fichajes ==========

// LocationStatus resultado de la captura de ubicación en el dispositivo.
type LocationStatus string

const (
	LocationStatusGranted     LocationStatus = "granted"
	LocationStatusDenied      LocationStatus = "denied"
	LocationStatusGPSDisabled LocationStatus = "gps_disabled"
	LocationStatusUnavailable LocationStatus = "unavailable"
)

// LocationPayload ubicación resuelta por el cliente.
type LocationPayload struct {
	Status         LocationStatus `json:"status"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	AccuracyMeters *float64       `json:"accuracy_meters,omitempty"`
	DeviceKind     string         `json:"device_kind,omitempty"` // web, mobile
}

type ClockRequest struct {
	Location *LocationPayload `json:"location,omitempty"`
}

// EntryData un fichaje individual.
type EntryData struct {
	ID         string    `json:"id"`
	EntryType  string    `json:"entry_type"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	HasCoords  bool      `json:"has_coords"`
	DeviceKind string    `json:"device_kind,omitempty"`
}

// ShiftData un turno del día, abierto o cerrado.
type ShiftData struct {
	ClockIn    EntryData  `json:"clock_in"`
	ClockOut   *EntryData `json:"clock_out,omitempty"`
	Incomplete bool       `json:"incomplete,omitempty"`
}

// AnomalyData turno olvidado detectado y corregido.
type AnomalyData struct {
	ClockInAt   time.Time `json:"clock_in_at"`
	AgeHours    float64   `json:"age_hours"`
	Severity    string    `json:"severity"` // NORMAL, EXTENDED
	CorrectedAt time.Time `json:"corrected_at"`
	Warning     string    `json:"warning,omitempty"`
}

// TodayResponse estado de la jornada de hoy.
type TodayResponse struct {
	Date               string       `json:"date"`
	Shifts             []ShiftData  `json:"shifts"`
	CurrentlyClockedIn bool         `json:"currently_clocked_in"`
	Anomaly            *AnomalyData `json:"anomaly,omitempty"`
}

// ClockResponse resultado de fichar entrada o salida.
type ClockResponse struct {
	Entry EntryData     `json:"entry"`
	Today TodayResponse `json:"today"`
}
