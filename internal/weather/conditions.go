package weather

import "github.com/squaremeter/squarelog/internal/model"

// weatherConditions maps WMO weather interpretation codes to display strings.
var weatherConditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Conditions returns the display string for a WMO weather code, or "Unknown"
// for codes without a mapping.
func Conditions(code int) string {
	if conditions, ok := weatherConditions[code]; ok {
		return conditions
	}
	return model.UnknownConditions
}
