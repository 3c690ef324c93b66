package thermal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsValid(t *testing.T) {
	t.Parallel()
	s := DefaultSettings()
	require.NoError(t, s.Validate())

	assert.InDelta(t, 1.0, s.Emissivity, 1e-12)
	assert.InDelta(t, 293.15, s.ReflectedTemperature, 1e-12)
	assert.InDelta(t, 0.5, s.RelativeHumidity, 1e-12)
	assert.InDelta(t, 21106.77, s.PlanckR1, 1e-12)
	assert.InDelta(t, -7340.0, s.PlanckO, 1e-12)
	assert.InDelta(t, 1.9, s.AtmosphericX, 1e-12)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*Settings)
		wantField string
	}{
		{"zero emissivity", func(s *Settings) { s.Emissivity = 0 }, "Emissivity"},
		{"emissivity above one", func(s *Settings) { s.Emissivity = 1.2 }, "Emissivity"},
		{"negative distance", func(s *Settings) { s.ObjectDistance = -1 }, "ObjectDistance"},
		{"humidity above one", func(s *Settings) { s.RelativeHumidity = 50 }, "RelativeHumidity"},
		{"negative humidity", func(s *Settings) { s.RelativeHumidity = -0.1 }, "RelativeHumidity"},
		{"zero window transmission", func(s *Settings) { s.IRWindowTransmission = 0 }, "IRWindowTransmission"},
		{"window transmission above one", func(s *Settings) { s.IRWindowTransmission = 1.5 }, "IRWindowTransmission"},
		{"reflected below absolute zero", func(s *Settings) { s.ReflectedTemperature = -5 }, "ReflectedTemperature"},
		{"zero atmospheric temperature", func(s *Settings) { s.AtmosphericTemperature = 0 }, "AtmosphericTemperature"},
		{"zero window temperature", func(s *Settings) { s.IRWindowTemperature = 0 }, "IRWindowTemperature"},
		{"zero planck r1", func(s *Settings) { s.PlanckR1 = 0 }, "PlanckR1"},
		{"negative planck r2", func(s *Settings) { s.PlanckR2 = -0.01 }, "PlanckR2"},
		{"zero planck b", func(s *Settings) { s.PlanckB = 0 }, "PlanckB"},
		{"zero planck f", func(s *Settings) { s.PlanckF = 0 }, "PlanckF"},
		{"mixing constant out of range", func(s *Settings) { s.AtmosphericX = 2.5 }, "AtmosphericX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)

			var perr *InvalidParameterError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.wantField, perr.Field)
		})
	}
}

func TestValidateBoundaryValuesAccepted(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.Emissivity = 1.0
	s.IRWindowTransmission = 1.0
	s.ObjectDistance = 0
	s.RelativeHumidity = 0
	assert.NoError(t, s.Validate())

	s.RelativeHumidity = 1
	assert.NoError(t, s.Validate())
}

func TestValidateWindowPair(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateWindowPair(false, false))
	assert.NoError(t, ValidateWindowPair(true, true))

	var perr *InvalidParameterError
	err := ValidateWindowPair(true, false)
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "IRWindowTransmission", perr.Field)

	err = ValidateWindowPair(false, true)
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "IRWindowTemperature", perr.Field)
}
