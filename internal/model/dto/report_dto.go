package dto

import "time"

// ========== Administración ==========

// EntriesQuery filtros del listado de fichajes (mes natural + empleado).
type EntriesQuery struct {
	Month  int    `query:"month"` // 1-12, 0 = mes actual
	Year   int    `query:"year"`  // 0 = año actual
	UserID string `query:"user_id"`
	Limit  int    `query:"limit"`
}

// AdminEntryData fichaje con los datos del perfil ya unidos.
type AdminEntryData struct {
	ID        string    `json:"id"`
	EntryType string    `json:"entry_type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
}

// ExportQuery filtros del informe CSV. "all" admite todos los valores.
type ExportQuery struct {
	Month  string `query:"month"` // "all" o 1-12
	Year   string `query:"year"`  // "all" o año
	UserID string `query:"user_id"`
}

// EntryChangeData aviso del flujo en vivo: hay fichajes nuevos, el cliente
// debe recargar el listado.
type EntryChangeData struct {
	At time.Time `json:"at"`
}

// ExportResponse informe generado.
type ExportResponse struct {
	FileName string `json:"file_name"`
	Rows     int    `json:"rows"`
}
