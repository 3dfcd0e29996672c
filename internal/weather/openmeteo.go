// openmeteo.go: Open-Meteo daily weather provider.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/errors"
	"github.com/squaremeter/squarelog/internal/model"
)

// recentWindowDays is how far back the forecast API still serves data.
// Older dates go to the archive API.
const recentWindowDays = 7

// dailyParams are the daily aggregates requested from either endpoint.
var dailyParams = []string{
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"weather_code",
	"relative_humidity_2m_mean",
	"pressure_msl_mean",
	"wind_speed_10m_max",
	"wind_direction_10m_dominant",
	"soil_temperature_0_to_7cm_mean",
	"uv_index_max",
}

// OpenMeteo fetches daily weather from the Open-Meteo forecast and archive
// APIs. Both serve the same daily aggregates; which one is queried depends on
// how far in the past the target date lies.
type OpenMeteo struct {
	client      *http.Client
	forecastURL string
	archiveURL  string
	latitude    float64
	longitude   float64
	timezone    string
	clock       clockwork.Clock
}

// NewOpenMeteo creates an Open-Meteo provider from the settings.
func NewOpenMeteo(settings *conf.Settings, clock clockwork.Clock) *OpenMeteo {
	timeout := settings.Weather.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenMeteo{
		client:      &http.Client{Timeout: timeout},
		forecastURL: settings.Weather.ForecastEndpoint,
		archiveURL:  settings.Weather.ArchiveEndpoint,
		latitude:    settings.Location.Latitude,
		longitude:   settings.Location.Longitude,
		timezone:    settings.Location.Timezone,
		clock:       clock,
	}
}

// openMeteoResponse mirrors the daily block of an Open-Meteo response. Each
// field is an array with one element per requested day; we always request a
// single day. Pointer elements keep "no value reported" distinct from zero.
type openMeteoResponse struct {
	Daily struct {
		TemperatureMax []*float64 `json:"temperature_2m_max"`
		TemperatureMin []*float64 `json:"temperature_2m_min"`
		Precipitation  []*float64 `json:"precipitation_sum"`
		WeatherCode    []*int     `json:"weather_code"`
		Humidity       []*float64 `json:"relative_humidity_2m_mean"`
		Pressure       []*float64 `json:"pressure_msl_mean"`
		WindSpeed      []*float64 `json:"wind_speed_10m_max"`
		WindDirection  []*float64 `json:"wind_direction_10m_dominant"`
		SoilTemp       []*float64 `json:"soil_temperature_0_to_7cm_mean"`
		UVIndex        []*float64 `json:"uv_index_max"`
	} `json:"daily"`
}

// endpointFor selects the forecast API for dates within the recent window and
// the archive API for anything older.
func (p *OpenMeteo) endpointFor(date time.Time) string {
	today := p.clock.Now()
	todayDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	targetDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	if int(todayDay.Sub(targetDay).Hours()/24) <= recentWindowDays {
		return p.forecastURL
	}
	return p.archiveURL
}

// FetchDaily fetches the daily weather block for a single date.
func (p *OpenMeteo) FetchDaily(ctx context.Context, date time.Time) (*model.Weather, error) {
	dateStr := date.Format("2006-01-02")
	endpoint := p.endpointFor(date)

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", p.latitude))
	params.Set("longitude", fmt.Sprintf("%f", p.longitude))
	params.Set("start_date", dateStr)
	params.Set("end_date", dateStr)
	params.Set("daily", strings.Join(dailyParams, ","))
	params.Set("timezone", p.timezone)

	requestURL := endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.New(err).
			Component("weather").
			Category(errors.CategoryNetwork).
			Context("endpoint", endpoint).
			Build()
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.New(err).
			Component("weather").
			Category(errors.CategoryNetwork).
			Context("endpoint", endpoint).
			Context("date", dateStr).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("weather API returned status %d", resp.StatusCode).
			Component("weather").
			Category(errors.CategoryNetwork).
			Context("endpoint", endpoint).
			Context("status_code", resp.StatusCode).
			Build()
	}

	var decoded openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.New(err).
			Component("weather").
			Category(errors.CategoryFileParsing).
			Context("endpoint", endpoint).
			Build()
	}

	return weatherFromDaily(&decoded), nil
}

// weatherFromDaily maps the single-day response arrays onto the weather block.
// A missing or null weather code reads as code 0 ("Clear sky"); a missing
// precipitation value reads as 0 mm.
func weatherFromDaily(resp *openMeteoResponse) *model.Weather {
	daily := &resp.Daily

	code := 0
	if c := first(daily.WeatherCode); c != nil {
		code = *c
	}

	precipitation := 0.0
	if p := first(daily.Precipitation); p != nil {
		precipitation = *p
	}

	return &model.Weather{
		TempMaxC:         first(daily.TemperatureMax),
		TempMinC:         first(daily.TemperatureMin),
		PrecipitationMM:  &precipitation,
		Conditions:       Conditions(code),
		HumidityPercent:  first(daily.Humidity),
		PressureHPa:      first(daily.Pressure),
		WindSpeedKmh:     first(daily.WindSpeed),
		WindDirectionDeg: first(daily.WindDirection),
		SoilTempC:        first(daily.SoilTemp),
		UVIndex:          first(daily.UVIndex),
	}
}

func first[T any](values []*T) *T {
	if len(values) == 0 {
		return nil
	}
	return values[0]
}
