package record

import (
	"context"
	"time"

	"github.com/squaremeter/squarelog/internal/model"
)

// BackfillReport summarizes a weather backfill run.
type BackfillReport struct {
	Candidates int // sightings with an incomplete weather block
	Updated    int
	Failed     int
}

// needsWeatherBackfill reports whether a sighting's weather block predates the
// extended parameter set. Humidity arrived with that set, so its absence marks
// the old blocks.
func needsWeatherBackfill(s *model.Sighting) bool {
	return s.Weather == nil || s.Weather.HumidityPercent == nil
}

// BackfillWeather re-fetches the weather block for every sighting that is
// missing the extended fields. Fetches are paced by delay; a failed fetch is
// skipped and the existing block kept. The collection is saved once at the
// end when anything changed.
func (b *Builder) BackfillWeather(ctx context.Context, delay time.Duration) (*BackfillReport, error) {
	sightings, err := b.store.LoadSightings()
	if err != nil {
		return nil, err
	}

	report := &BackfillReport{}
	fetched := false
	for i := range sightings {
		if !needsWeatherBackfill(&sightings[i]) {
			continue
		}
		report.Candidates++

		if fetched && delay > 0 {
			b.clock.Sleep(delay)
		}
		fetched = true

		block, err := b.weather.Fetch(ctx, sightings[i].CapturedAt.In(b.timezone))
		if err != nil {
			report.Failed++
			continue
		}
		sightings[i].Weather = block
		report.Updated++
	}

	if report.Updated > 0 {
		if err := b.store.SaveSightings(sightings); err != nil {
			return nil, err
		}
	}
	return report, nil
}
