package record

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/errors"
	"github.com/squaremeter/squarelog/internal/model"
)

func backfillSightings() []model.Sighting {
	humidity := 64.0
	temp := 29.0
	return []model.Sighting{
		{
			ID:         "20260301-001",
			CommonName: "Common Jezebel",
			CapturedAt: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC),
			Weather:    &model.Weather{TempMaxC: &temp, HumidityPercent: &humidity, Conditions: "Clear sky"},
		},
		{
			ID:         "20260302-001",
			CommonName: "Garden Skink",
			CapturedAt: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC),
			Weather:    nil,
		},
		{
			ID:         "20260303-001",
			CommonName: "Weaver Ant",
			CapturedAt: time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC),
			Weather:    &model.Weather{TempMaxC: &temp, Conditions: "Overcast"},
		},
	}
}

func TestBackfillWeather(t *testing.T) {
	store := datastore.NewAt(t.TempDir())
	require.NoError(t, store.SaveSightings(backfillSightings()))

	humidity := 71.0
	temp := 33.0
	fresh := &model.Weather{TempMaxC: &temp, HumidityPercent: &humidity, Conditions: "Partly cloudy"}
	now := time.Date(2026, time.March, 20, 10, 0, 0, 0, time.UTC)
	builder := newTestBuilder(t, store, now, stubProvider{weather: fresh})

	report, err := builder.BackfillWeather(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Candidates)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 0, report.Failed)

	persisted, err := store.LoadSightings()
	require.NoError(t, err)
	require.Len(t, persisted, 3)

	// The complete block is untouched.
	assert.Equal(t, "Clear sky", persisted[0].Weather.Conditions)
	assert.Equal(t, 64.0, *persisted[0].Weather.HumidityPercent)

	// The incomplete ones carry the refreshed block.
	for _, s := range persisted[1:] {
		require.NotNil(t, s.Weather, s.ID)
		require.NotNil(t, s.Weather.HumidityPercent, s.ID)
		assert.Equal(t, 71.0, *s.Weather.HumidityPercent, s.ID)
		assert.Equal(t, "Partly cloudy", s.Weather.Conditions, s.ID)
	}
}

func TestBackfillWeatherFetchFailure(t *testing.T) {
	store := datastore.NewAt(t.TempDir())
	require.NoError(t, store.SaveSightings(backfillSightings()))

	now := time.Date(2026, time.March, 20, 10, 0, 0, 0, time.UTC)
	failing := stubProvider{err: errors.Newf("service unavailable").Build()}
	builder := newTestBuilder(t, store, now, failing)

	report, err := builder.BackfillWeather(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Candidates)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 2, report.Failed)

	// Nothing changed, so the existing blocks survive as they were.
	persisted, err := store.LoadSightings()
	require.NoError(t, err)
	assert.Nil(t, persisted[1].Weather)
	assert.Equal(t, "Overcast", persisted[2].Weather.Conditions)
}

func TestBackfillWeatherNothingToDo(t *testing.T) {
	humidity := 64.0
	store := datastore.NewAt(t.TempDir())
	require.NoError(t, store.SaveSightings([]model.Sighting{
		{ID: "20260301-001", Weather: &model.Weather{HumidityPercent: &humidity}},
	}))

	now := time.Date(2026, time.March, 20, 10, 0, 0, 0, time.UTC)
	builder := newTestBuilder(t, store, now, nil)

	report, err := builder.BackfillWeather(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Candidates)
	assert.Equal(t, 0, report.Updated)
}
