package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition representa un código de error de negocio con su mensaje por defecto.
type Definition struct {
	Code    string
	Message string
}

// Errores de autenticación.
var (
	Unauthorized       = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidCredentials = Definition{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}
	InvalidUserID      = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	UserNotFound       = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
	EmailTaken         = Definition{Code: "EMAIL_TAKEN", Message: "Email already registered"}
	InvalidEmail       = Definition{Code: "INVALID_EMAIL", Message: "Email format is not valid"}
	WeakPassword       = Definition{Code: "WEAK_PASSWORD", Message: "Password must be at least 6 characters"}
	AdminRequired      = Definition{Code: "ADMIN_REQUIRED", Message: "Administrator role required"}
)

// Errores de fichaje. Son avisos de validación: el estado no cambia.
var (
	AlreadyClockedIn      = Definition{Code: "ALREADY_CLOCKED_IN", Message: "Ya has fichado entrada, tienes un turno abierto"}
	NoOpenShift           = Definition{Code: "NO_OPEN_SHIFT", Message: "Debes fichar entrada antes de fichar salida"}
	ForgottenShiftPending = Definition{Code: "FORGOTTEN_SHIFT_PENDING", Message: "Tienes un turno de un día anterior sin cerrar, pendiente de corrección"}
	ActionInProgress      = Definition{Code: "ACTION_IN_PROGRESS", Message: "Ya hay un fichaje en curso, espera un momento"}
)

// RateLimited límite de peticiones superado.
var RateLimited = Definition{Code: "RATE_LIMITED", Message: "Demasiadas peticiones, inténtalo de nuevo en unos minutos"}

// Errores de ubicación.
var (
	LocationPermissionDenied = Definition{Code: "LOCATION_PERMISSION_DENIED", Message: "La app no tiene permiso para acceder a tu ubicación"}
	GPSDisabled              = Definition{Code: "GPS_DISABLED", Message: "La ubicación del dispositivo está desactivada"}
	LocationUnavailable      = Definition{Code: "LOCATION_UNAVAILABLE", Message: "No se pudo obtener tu ubicación"}
)

// Errores de informes.
var (
	ReportEmpty        = Definition{Code: "REPORT_EMPTY", Message: "No hay registros con los filtros seleccionados"}
	ReportMonthNoYear  = Definition{Code: "REPORT_MONTH_WITHOUT_YEAR", Message: "Selecciona un año para filtrar por mes"}
	ReportInvalidRange = Definition{Code: "REPORT_INVALID_RANGE", Message: "Rango de fechas no válido"}
)

// Lookup permite resolver un código a su Definition.
var Lookup = map[string]Definition{
	Unauthorized.Code:             Unauthorized,
	InvalidCredentials.Code:       InvalidCredentials,
	InvalidUserID.Code:            InvalidUserID,
	UserNotFound.Code:             UserNotFound,
	EmailTaken.Code:               EmailTaken,
	InvalidEmail.Code:             InvalidEmail,
	WeakPassword.Code:             WeakPassword,
	AdminRequired.Code:            AdminRequired,
	AlreadyClockedIn.Code:         AlreadyClockedIn,
	NoOpenShift.Code:              NoOpenShift,
	ForgottenShiftPending.Code:    ForgottenShiftPending,
	ActionInProgress.Code:         ActionInProgress,
	RateLimited.Code:              RateLimited,
	LocationPermissionDenied.Code: LocationPermissionDenied,
	GPSDisabled.Code:              GPSDisabled,
	LocationUnavailable.Code:      LocationUnavailable,
	ReportEmpty.Code:              ReportEmpty,
	ReportMonthNoYear.Code:        ReportMonthNoYear,
	ReportInvalidRange.Code:       ReportInvalidRange,
}

// Get devuelve la Definition de un código, o una genérica si no existe.
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
