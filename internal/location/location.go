// Package location resuelve la posición del fichaje a partir de lo que
// reporta el dispositivo. El permiso denegado bloquea el fichaje; un GPS
// apagado o sin señal solo degrada el evento a "sin coordenadas".
package location

import (
	"context"

	"fichaje/internal/model"
	"fichaje/internal/model/dto"
	"fichaje/pkg/errors"
)

// Point coordenadas resueltas.
type Point struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters *float64
}

// Resolver obtiene la posición para un fichaje. Resolve devuelve:
//   - (point, nil)        posición obtenida
//   - (nil, nil)          sin posición pero el fichaje continúa
//   - (nil, Definition)   el fichaje se aborta (permiso denegado)
type Resolver interface {
	Resolve(ctx context.Context, payload *dto.LocationPayload) (*Point, error)
}

// PayloadResolver valida el payload que envía el cliente, que es quien
// habla con el GPS y aplica su propia espera acotada antes de enviar el
// fichaje. Aquí no hay nada que esperar.
type PayloadResolver struct{}

func NewPayloadResolver() *PayloadResolver {
	return &PayloadResolver{}
}

func (r *PayloadResolver) Resolve(ctx context.Context, payload *dto.LocationPayload) (*Point, error) {
	if payload == nil {
		return nil, nil
	}

	switch payload.Status {
	case dto.LocationStatusGranted:
		if payload.Latitude == nil || payload.Longitude == nil {
			return nil, nil
		}
		return &Point{
			Latitude:       *payload.Latitude,
			Longitude:      *payload.Longitude,
			AccuracyMeters: payload.AccuracyMeters,
		}, nil

	case dto.LocationStatusDenied:
		// único caso que aborta el fichaje
		return nil, errors.LocationPermissionDenied

	case dto.LocationStatusGPSDisabled:
		return nil, nil

	case dto.LocationStatusUnavailable:
		return nil, nil

	default:
		return nil, nil
	}
}

// Instructions mensaje en castellano con los pasos para cada situación
// de localización, por plataforma.
func Instructions(status dto.LocationStatus, device model.DeviceKind) string {
	switch status {
	case dto.LocationStatusDenied:
		if device == model.DeviceKindWeb {
			return "Permiso de ubicación denegado. Pulsa el icono del candado junto a la dirección web y permite el acceso a tu ubicación."
		}
		return "Permiso de ubicación denegado. Ve a Ajustes > Aplicaciones > Fichaje > Permisos y activa la ubicación."

	case dto.LocationStatusGPSDisabled:
		if device == model.DeviceKindWeb {
			return "La ubicación del sistema está desactivada. Actívala en los ajustes de tu ordenador y recarga la página."
		}
		return "El GPS está desactivado. Desliza el panel de ajustes rápidos y activa la ubicación."

	case dto.LocationStatusUnavailable:
		return "No se ha podido obtener tu ubicación. El fichaje se ha registrado sin coordenadas."

	default:
		return ""
	}
}
