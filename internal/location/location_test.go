package location

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fichaje/internal/model"
	"fichaje/internal/model/dto"
	"fichaje/pkg/errors"
)

func float64p(v float64) *float64 { return &v }

func TestResolveGrantedReturnsPoint(t *testing.T) {
	resolver := NewPayloadResolver()

	point, err := resolver.Resolve(context.Background(), &dto.LocationPayload{
		Status:         dto.LocationStatusGranted,
		Latitude:       float64p(40.4168),
		Longitude:      float64p(-3.7038),
		AccuracyMeters: float64p(12),
	})

	require.NoError(t, err)
	require.NotNil(t, point)
	assert.Equal(t, 40.4168, point.Latitude)
	assert.Equal(t, -3.7038, point.Longitude)
	require.NotNil(t, point.AccuracyMeters)
	assert.Equal(t, 12.0, *point.AccuracyMeters)
}

func TestResolveGrantedWithoutCoordsDegrades(t *testing.T) {
	resolver := NewPayloadResolver()

	point, err := resolver.Resolve(context.Background(), &dto.LocationPayload{
		Status: dto.LocationStatusGranted,
	})

	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestResolveDeniedAborts(t *testing.T) {
	resolver := NewPayloadResolver()

	point, err := resolver.Resolve(context.Background(), &dto.LocationPayload{
		Status: dto.LocationStatusDenied,
	})

	assert.ErrorIs(t, err, errors.LocationPermissionDenied)
	assert.Nil(t, point)
}

func TestResolveDegradedStatuses(t *testing.T) {
	resolver := NewPayloadResolver()

	cases := []struct {
		name   string
		status dto.LocationStatus
	}{
		{"gps apagado", dto.LocationStatusGPSDisabled},
		{"sin señal", dto.LocationStatusUnavailable},
		{"estado desconocido", dto.LocationStatus("algo_raro")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			point, err := resolver.Resolve(context.Background(), &dto.LocationPayload{Status: tc.status})

			require.NoError(t, err)
			assert.Nil(t, point)
		})
	}
}

func TestResolveNilPayloadDegrades(t *testing.T) {
	resolver := NewPayloadResolver()

	point, err := resolver.Resolve(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestInstructionsPerPlatform(t *testing.T) {
	assert.Contains(t, Instructions(dto.LocationStatusDenied, model.DeviceKindWeb), "candado")
	assert.Contains(t, Instructions(dto.LocationStatusDenied, model.DeviceKindMobile), "Ajustes")
	assert.Contains(t, Instructions(dto.LocationStatusGPSDisabled, model.DeviceKindMobile), "GPS")
	assert.Equal(t, "", Instructions(dto.LocationStatusGranted, model.DeviceKindWeb))
}
