package weather

import (
	"context"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/errors"
	"github.com/squaremeter/squarelog/internal/model"
)

const (
	testForecastURL = "https://api.open-meteo.com/v1/forecast"
	testArchiveURL  = "https://archive-api.open-meteo.com/v1/archive"
)

func testSettings() *conf.Settings {
	return &conf.Settings{
		Location: conf.LocationSettings{
			Latitude:  12.97,
			Longitude: 77.59,
			Timezone:  "Asia/Kolkata",
		},
		Weather: conf.WeatherSettings{
			ForecastEndpoint: testForecastURL,
			ArchiveEndpoint:  testArchiveURL,
			Timeout:          5 * time.Second,
		},
	}
}

func newTestProvider(t *testing.T, now time.Time) *OpenMeteo {
	t.Helper()
	provider := NewOpenMeteo(testSettings(), clockwork.NewFakeClockAt(now))
	httpmock.ActivateNonDefault(provider.client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return provider
}

const fullDailyResponse = `{
	"daily": {
		"temperature_2m_max": [31.4],
		"temperature_2m_min": [21.2],
		"precipitation_sum": [4.6],
		"weather_code": [63],
		"relative_humidity_2m_mean": [78.0],
		"pressure_msl_mean": [1009.3],
		"wind_speed_10m_max": [14.8],
		"wind_direction_10m_dominant": [245.0],
		"soil_temperature_0_to_7cm_mean": [26.1],
		"uv_index_max": [8.2]
	}
}`

func TestFetchDailyParsesResponse(t *testing.T) {
	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	provider := newTestProvider(t, now)

	httpmock.RegisterResponder("GET", testForecastURL,
		httpmock.NewStringResponder(200, fullDailyResponse))

	weather, err := provider.FetchDaily(context.Background(), now.AddDate(0, 0, -2))
	require.NoError(t, err)

	require.NotNil(t, weather.TempMaxC)
	assert.InDelta(t, 31.4, *weather.TempMaxC, 0.001)
	require.NotNil(t, weather.TempMinC)
	assert.InDelta(t, 21.2, *weather.TempMinC, 0.001)
	require.NotNil(t, weather.PrecipitationMM)
	assert.InDelta(t, 4.6, *weather.PrecipitationMM, 0.001)
	assert.Equal(t, "Moderate rain", weather.Conditions)
	require.NotNil(t, weather.HumidityPercent)
	assert.InDelta(t, 78.0, *weather.HumidityPercent, 0.001)
	require.NotNil(t, weather.UVIndex)
	assert.InDelta(t, 8.2, *weather.UVIndex, 0.001)
}

func TestFetchDailyEndpointSelection(t *testing.T) {
	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		daysAgo  int
		endpoint string
	}{
		{"today", 0, testForecastURL},
		{"three days ago", 3, testForecastURL},
		{"exactly seven days ago", 7, testForecastURL},
		{"eight days ago", 8, testArchiveURL},
		{"a month ago", 30, testArchiveURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestProvider(t, now)
			httpmock.RegisterResponder("GET", tt.endpoint,
				httpmock.NewStringResponder(200, fullDailyResponse))

			_, err := provider.FetchDaily(context.Background(), now.AddDate(0, 0, -tt.daysAgo))
			require.NoError(t, err)

			info := httpmock.GetCallCountInfo()
			assert.Equal(t, 1, info["GET "+tt.endpoint])
		})
	}
}

func TestFetchDailyMissingArrays(t *testing.T) {
	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	provider := newTestProvider(t, now)

	// No weather code and no precipitation reported: code defaults to 0
	// ("Clear sky"), precipitation to 0 mm, the rest stays absent.
	httpmock.RegisterResponder("GET", testForecastURL,
		httpmock.NewStringResponder(200, `{"daily": {"temperature_2m_max": [29.0]}}`))

	weather, err := provider.FetchDaily(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, "Clear sky", weather.Conditions)
	require.NotNil(t, weather.PrecipitationMM)
	assert.Zero(t, *weather.PrecipitationMM)
	require.NotNil(t, weather.TempMaxC)
	assert.InDelta(t, 29.0, *weather.TempMaxC, 0.001)
	assert.Nil(t, weather.TempMinC)
	assert.Nil(t, weather.HumidityPercent)
}

func TestFetchDailyNullWeatherCode(t *testing.T) {
	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	provider := newTestProvider(t, now)

	httpmock.RegisterResponder("GET", testForecastURL,
		httpmock.NewStringResponder(200, `{"daily": {"weather_code": [null]}}`))

	weather, err := provider.FetchDaily(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "Clear sky", weather.Conditions)
}

func TestFetchDailyServerError(t *testing.T) {
	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	provider := newTestProvider(t, now)

	httpmock.RegisterResponder("GET", testForecastURL,
		httpmock.NewStringResponder(500, "internal error"))

	_, err := provider.FetchDaily(context.Background(), now)
	require.Error(t, err)

	var enhanced *errors.EnhancedError
	require.ErrorAs(t, err, &enhanced)
	assert.Equal(t, string(errors.CategoryNetwork), enhanced.GetCategory())
}

func TestConditions(t *testing.T) {
	assert.Equal(t, "Clear sky", Conditions(0))
	assert.Equal(t, "Thunderstorm with heavy hail", Conditions(99))
	assert.Equal(t, model.UnknownConditions, Conditions(42))
}

func TestServiceFetchOrFallback(t *testing.T) {
	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	provider := newTestProvider(t, now)

	httpmock.RegisterResponder("GET", testForecastURL,
		httpmock.NewErrorResponder(assert.AnError))

	service := NewService(provider, testSettings())
	weather := service.FetchOrFallback(context.Background(), now)

	require.NotNil(t, weather)
	assert.Equal(t, model.UnknownConditions, weather.Conditions)
	assert.Nil(t, weather.TempMaxC)
	assert.Nil(t, weather.PrecipitationMM)
}
