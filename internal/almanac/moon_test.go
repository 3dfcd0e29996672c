package almanac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoonFromLunation(t *testing.T) {
	tests := []struct {
		name  string
		phase float64 // position on the 0..28 lunation scale
		want  string
	}{
		{"new moon", 0.0, PhaseNewMoon},
		{"just after new", 0.5, PhaseNewMoon},
		{"waxing crescent", 4.0, PhaseWaxingCrescent},
		{"first quarter", 7.05, PhaseFirstQuarter},
		{"waxing gibbous", 10.0, PhaseWaxingGibbous},
		{"day before full", 13.0, PhaseWaxingGibbous},
		{"full moon", 14.0, PhaseFullMoon},
		{"just after full", 14.5, PhaseFullMoon},
		{"day after full", 15.0, PhaseWaningGibbous},
		{"waning gibbous", 17.0, PhaseWaningGibbous},
		{"last quarter", 20.95, PhaseLastQuarter},
		{"waning crescent", 24.0, PhaseWaningCrescent},
		{"approaching new", 27.5, PhaseNewMoon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := moonFromLunation(tt.phase)
			assert.Equal(t, tt.want, got.MoonPhase)
		})
	}
}

func TestMoonIllumination(t *testing.T) {
	assert.InDelta(t, 0.0, moonFromLunation(0).MoonIllumination, 0.001)
	assert.InDelta(t, 0.5, moonFromLunation(7).MoonIllumination, 0.01)
	assert.InDelta(t, 1.0, moonFromLunation(14).MoonIllumination, 0.001)
	assert.InDelta(t, 0.5, moonFromLunation(21).MoonIllumination, 0.01)

	// Full moon must report near-total illumination.
	full := moonFromLunation(14.0)
	assert.GreaterOrEqual(t, full.MoonIllumination, 0.98)

	// Illumination is always within [0,1] and rounded to two decimals.
	for p := 0.0; p < 28.0; p += 0.25 {
		m := moonFromLunation(p)
		assert.GreaterOrEqual(t, m.MoonIllumination, 0.0)
		assert.LessOrEqual(t, m.MoonIllumination, 1.0)
	}
}

func TestPhaseNameDecisionTable(t *testing.T) {
	// Direct boundary checks on the decision table. Within one day of full or
	// new (exclusive) the named phase wins over illumination splits.
	assert.Equal(t, PhaseFullMoon, phaseName(0.99, 20, 15, 14, 0.99))
	assert.Equal(t, PhaseWaxingGibbous, phaseName(1.0, 28, 16, 13, 0.98))
	assert.Equal(t, PhaseWaningGibbous, phaseName(28, 1.0, 14, 15, 0.98))
	assert.Equal(t, PhaseNewMoon, phaseName(14, 15, 0.5, 29, 0.01))

	// Waxing half splits on illumination.
	assert.Equal(t, PhaseWaxingCrescent, phaseName(10, 18, 19, 4, 0.20))
	assert.Equal(t, PhaseFirstQuarter, phaseName(7, 21, 22, 7, 0.52))
	assert.Equal(t, PhaseWaxingGibbous, phaseName(4, 25, 25, 10, 0.80))

	// Waning half splits on illumination.
	assert.Equal(t, PhaseWaningGibbous, phaseName(25, 4, 10, 18, 0.80))
	assert.Equal(t, PhaseLastQuarter, phaseName(22, 7, 7, 21, 0.50))
	assert.Equal(t, PhaseWaningCrescent, phaseName(18, 10, 4, 25, 0.20))
}
