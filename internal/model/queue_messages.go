package model

// ClockOutReminderMessage mensaje retardado con el recordatorio de salida
// de un usuario. El worker revisa el marcador y el estado real del turno
// antes de entregar: un mensaje en vuelo de un recordatorio ya cancelado
// se descarta ahí.
type ClockOutReminderMessage struct {
	MessageID    string `json:"message_id"` // idempotencia en consumo
	ReminderID   string `json:"reminder_id"`
	UserID       int64  `json:"user_id"`
	Date         string `json:"date"` // día natural local "2006-01-02"
	ScheduledAt  string `json:"scheduled_at"`
	TriggerAt    string `json:"trigger_at"`
	DelaySeconds int    `json:"delay_seconds"`
}

// MissingClockOutEmailMessage correo a un empleado con entrada sin salida hoy.
type MissingClockOutEmailMessage struct {
	MessageID string `json:"message_id"`
	BatchID   string `json:"batch_id"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	EntryTime string `json:"entry_time"` // hora local de la entrada "15:04"
	Date      string `json:"date"`
}
