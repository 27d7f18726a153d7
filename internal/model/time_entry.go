package model

import "time"

// EntryType tipo de fichaje.
type EntryType string

const (
	EntryTypeClockIn  EntryType = "entrada"
	EntryTypeClockOut EntryType = "salida"
)

// EntrySource origen del evento. auto_close marca las salidas correctivas
// sintéticas que cierran un turno olvidado.
type EntrySource string

const (
	EntrySourceUser      EntrySource = "user"
	EntrySourceAutoClose EntrySource = "auto_close"
)

// DeviceKind plataforma desde la que se fichó.
type DeviceKind string

const (
	DeviceKindMobile DeviceKind = "mobile"
	DeviceKindWeb    DeviceKind = "web"
)

// TimeEntry un fichaje. La tabla es de solo inserción: los eventos no se
// modifican ni se borran nunca una vez almacenados.
type TimeEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID  int64     `gorm:"uniqueIndex;not null" json:"public_id"`
	UserID    int64     `gorm:"not null;index:idx_time_entries_user_ts,priority:1" json:"user_id"`
	EntryType EntryType `gorm:"type:varchar(8);not null" json:"entry_type"`

	// Timestamp en UTC. Por defecto el momento de inserción; las salidas
	// correctivas lo fijan explícitamente hacia atrás.
	Timestamp time.Time `gorm:"type:timestamptz;not null;index:idx_time_entries_user_ts,priority:2" json:"timestamp"`

	Latitude       *float64    `gorm:"type:double precision" json:"latitude,omitempty"`
	Longitude      *float64    `gorm:"type:double precision" json:"longitude,omitempty"`
	AccuracyMeters *float64    `gorm:"type:double precision" json:"accuracy_meters,omitempty"`
	DeviceKind     *DeviceKind `gorm:"type:varchar(8)" json:"device_kind,omitempty"`

	Source    EntrySource `gorm:"type:varchar(16);not null;default:'user'" json:"source"`
	CreatedAt time.Time   `gorm:"not null;default:now()" json:"created_at"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

// HasLocation indica si el fichaje lleva coordenadas.
func (e *TimeEntry) HasLocation() bool {
	return e.Latitude != nil && e.Longitude != nil
}
