package almanac

import (
	"math"
	"time"

	"github.com/sj14/astral/pkg/astral"

	"github.com/squaremeter/squarelog/internal/model"
)

// Moon phase names.
const (
	PhaseNewMoon        = "New Moon"
	PhaseWaxingCrescent = "Waxing Crescent"
	PhaseFirstQuarter   = "First Quarter"
	PhaseWaxingGibbous  = "Waxing Gibbous"
	PhaseFullMoon       = "Full Moon"
	PhaseWaningGibbous  = "Waning Gibbous"
	PhaseLastQuarter    = "Last Quarter"
	PhaseWaningCrescent = "Waning Crescent"
)

const (
	// synodicMonth is the mean length of a lunation in days.
	synodicMonth = 29.53058867
	// lunationScale is the span of the astral phase value: 0 is new moon,
	// 14 full moon, approaching 28 at the next new moon.
	lunationScale = 28.0
)

// MoonPhase computes the moon phase name and fractional illumination for a
// calendar date.
func MoonPhase(date time.Time) model.Celestial {
	return moonFromLunation(astral.MoonPhase(date))
}

// moonFromLunation derives phase name and illumination from a position on
// the 0..28 lunation scale. Split out so the decision table is testable
// without the ephemeris.
func moonFromLunation(p float64) model.Celestial {
	day := synodicMonth / lunationScale

	daysSinceNew := p * day
	daysToNew := (lunationScale - p) * day

	var daysSinceFull, daysToFull float64
	if p >= lunationScale/2 {
		daysSinceFull = (p - lunationScale/2) * day
		daysToFull = (lunationScale + lunationScale/2 - p) * day
	} else {
		daysSinceFull = (p + lunationScale/2) * day
		daysToFull = (lunationScale/2 - p) * day
	}

	illumination := (1 - math.Cos(math.Pi*p/(lunationScale/2))) / 2

	return model.Celestial{
		MoonPhase:        phaseName(daysToFull, daysSinceFull, daysToNew, daysSinceNew, illumination),
		MoonIllumination: math.Round(illumination*100) / 100,
	}
}

// phaseName selects the phase name from the distances to the nearest full and
// new moons plus the illumination fraction. Within one day of a full or new
// moon those names win; otherwise the waxing half (less time since new than
// since full) splits on illumination thresholds, as does the waning half.
func phaseName(daysToFull, daysSinceFull, daysToNew, daysSinceNew, illumination float64) string {
	switch {
	case daysToFull < 1.0 || daysSinceFull < 1.0:
		return PhaseFullMoon
	case daysToNew < 1.0 || daysSinceNew < 1.0:
		return PhaseNewMoon
	case daysSinceNew < daysSinceFull:
		// Waxing: between new and full.
		switch {
		case illumination < 0.50:
			return PhaseWaxingCrescent
		case illumination < 0.55:
			return PhaseFirstQuarter
		default:
			return PhaseWaxingGibbous
		}
	default:
		// Waning: between full and new.
		switch {
		case illumination > 0.55:
			return PhaseWaningGibbous
		case illumination > 0.45:
			return PhaseLastQuarter
		default:
			return PhaseWaningCrescent
		}
	}
}
