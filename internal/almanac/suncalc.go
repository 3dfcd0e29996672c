package almanac

import (
	"sync"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// TimeUnknown is the sentinel returned when a sun time cannot be computed,
// e.g. polar edge cases. Callers must never fail on it.
const TimeUnknown = "Unknown"

// SunTimes holds sunrise and sunset as local HH:MM strings.
type SunTimes struct {
	Sunrise string
	Sunset  string
}

// SunCalc computes and caches sunrise/sunset times for a fixed observer.
type SunCalc struct {
	cache    map[string]SunTimes // keyed by local date
	lock     sync.RWMutex
	observer astral.Observer
	timezone *time.Location
}

// NewSunCalc creates a SunCalc for the given coordinates and local timezone.
func NewSunCalc(latitude, longitude float64, timezone *time.Location) *SunCalc {
	return &SunCalc{
		cache:    make(map[string]SunTimes),
		observer: astral.Observer{Latitude: latitude, Longitude: longitude},
		timezone: timezone,
	}
}

// Times returns the sunrise and sunset for a date, using the cache if
// available. A failed astronomical computation yields "Unknown" for both
// values rather than an error.
func (sc *SunCalc) Times(date time.Time) SunTimes {
	dateKey := date.Format("2006-01-02")

	sc.lock.RLock()
	entry, exists := sc.cache[dateKey]
	sc.lock.RUnlock()
	if exists {
		return entry
	}

	times := sc.calculate(date)

	sc.lock.Lock()
	sc.cache[dateKey] = times
	sc.lock.Unlock()

	return times
}

func (sc *SunCalc) calculate(date time.Time) SunTimes {
	sunrise, err := astral.Sunrise(sc.observer, date)
	if err != nil {
		return SunTimes{Sunrise: TimeUnknown, Sunset: TimeUnknown}
	}

	sunset, err := astral.Sunset(sc.observer, date)
	if err != nil {
		return SunTimes{Sunrise: TimeUnknown, Sunset: TimeUnknown}
	}

	return SunTimes{
		Sunrise: sunrise.In(sc.timezone).Format("15:04"),
		Sunset:  sunset.In(sc.timezone).Format("15:04"),
	}
}
