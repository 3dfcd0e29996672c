// Package almanac derives calendar and astronomical context for a record:
// time-of-day bucket, season, moon phase and sunrise/sunset times.
package almanac

import (
	"strings"
	"time"

	"github.com/squaremeter/squarelog/internal/conf"
)

// Times of day, bucketed by fixed local-hour boundaries.
const (
	Morning   = "morning"
	Afternoon = "afternoon"
	Evening   = "evening"
	Night     = "night"
)

// TimesOfDay lists the valid time-of-day values in display order.
var TimesOfDay = []string{Morning, Afternoon, Evening, Night}

// TimeOfDay infers the time-of-day bucket from the local hour:
// [5,12) morning, [12,16) afternoon, [16,19) evening, else night.
func TimeOfDay(t time.Time) string {
	hour := t.Hour()
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 16:
		return Afternoon
	case hour >= 16 && hour < 19:
		return Evening
	default:
		return Night
	}
}

// IsTimeOfDay reports whether s is a valid time-of-day value.
func IsTimeOfDay(s string) bool {
	for _, tod := range TimesOfDay {
		if s == tod {
			return true
		}
	}
	return false
}

// SeasonUnknown is returned when no configured season covers the month.
const SeasonUnknown = "unknown"

// Season determines the season for a month from the ordered season
// definitions. The month is matched by its lowercase English name; the first
// definition listing it wins.
func Season(month time.Month, defs []conf.SeasonDefinition) string {
	monthName := strings.ToLower(month.String())
	for _, def := range defs {
		for _, m := range def.Months {
			if m == monthName {
				return def.Name
			}
		}
	}
	return SeasonUnknown
}
