// Package record creates and mutates sighting and observation records:
// ID assignment, name normalization, metadata enrichment, quick logging and
// delete-as-convert.
package record

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/squaremeter/squarelog/internal/almanac"
	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/errors"
	"github.com/squaremeter/squarelog/internal/model"
	"github.com/squaremeter/squarelog/internal/normalize"
	"github.com/squaremeter/squarelog/internal/weather"
)

// Builder assembles enriched records. All derived context (time of day,
// season, weather, celestial) comes from here so every entry point produces
// the same record shape.
type Builder struct {
	store    *datastore.Store
	weather  *weather.Service
	sun      *almanac.SunCalc
	clock    clockwork.Clock
	settings *conf.Settings
	timezone *time.Location
}

// NewBuilder creates a builder wired to the store and enrichment services.
func NewBuilder(store *datastore.Store, weatherService *weather.Service, settings *conf.Settings, clock clockwork.Clock) (*Builder, error) {
	timezone, err := settings.TimeZone()
	if err != nil {
		return nil, err
	}
	return &Builder{
		store:    store,
		weather:  weatherService,
		sun:      almanac.NewSunCalc(settings.Location.Latitude, settings.Location.Longitude, timezone),
		clock:    clock,
		settings: settings,
		timezone: timezone,
	}, nil
}

// Now returns the current time in the plot's timezone.
func (b *Builder) Now() time.Time {
	return b.clock.Now().In(b.timezone)
}

// NextID generates the next sighting ID for a date, YYYYMMDD-NNN. The
// sequence is one past the number of existing sightings sharing the date
// prefix.
func (b *Builder) NextID(date time.Time, sightings []model.Sighting) string {
	prefix := date.Format("20060102")
	count := 0
	for i := range sightings {
		if strings.HasPrefix(sightings[i].ID, prefix) {
			count++
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, count+1)
}

// Celestial derives the moon phase and sun times for a date.
func (b *Builder) Celestial(date time.Time) *model.Celestial {
	celestial := almanac.MoonPhase(date)
	sunTimes := b.sun.Times(date)
	celestial.Sunrise = sunTimes.Sunrise
	celestial.Sunset = sunTimes.Sunset
	return &celestial
}

// Enrich fetches the weather block and derives the celestial block for a
// date. Weather failures degrade to the null block.
func (b *Builder) Enrich(ctx context.Context, date time.Time) (*model.Weather, *model.Celestial) {
	return b.weather.FetchOrFallback(ctx, date), b.Celestial(date)
}

// Season returns the configured season for a date.
func (b *Builder) Season(date time.Time) string {
	return almanac.Season(date.Month(), b.settings.Seasons)
}

// ExistingNames collects the species common names already on record, used to
// normalize new input against established spellings.
func ExistingNames(sightings []model.Sighting, observations []model.Observation) []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for i := range sightings {
		add(sightings[i].CommonName)
	}
	for i := range observations {
		add(observations[i].CommonName)
	}
	return names
}

// ExistingTags collects the distinct tags across all sightings, sorted.
func ExistingTags(sightings []model.Sighting) []string {
	seen := make(map[string]struct{})
	for i := range sightings {
		for _, tag := range sightings[i].Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// FindByID returns the index of the sighting with the given ID, or -1.
func FindByID(sightings []model.Sighting, id string) int {
	for i := range sightings {
		if sightings[i].ID == id {
			return i
		}
	}
	return -1
}

// SightingInput is the user-supplied portion of a new sighting.
type SightingInput struct {
	CommonName     string
	ScientificName string // optional
	Category       string
	CapturedAt     time.Time
	TimeOfDay      string // optional override; inferred from CapturedAt when empty or invalid
	Tags           []string
	Notes          string
	SizeMM         *float64
	IDCertainty    string // high, medium, low or empty
}

// NewSighting validates and normalizes the input and assembles a fully
// enriched sighting with its ID assigned. The caller attaches images and
// persists it.
func (b *Builder) NewSighting(ctx context.Context, sightings []model.Sighting, observations []model.Observation, input SightingInput) (*model.Sighting, error) {
	commonName, err := normalize.CommonName(input.CommonName)
	if err != nil {
		return nil, err
	}
	commonName = normalize.NormalizeName(commonName, ExistingNames(sightings, observations))

	scientificName := strings.TrimSpace(input.ScientificName)
	if scientificName != "" {
		scientificName, err = normalize.ScientificName(scientificName)
		if err != nil {
			return nil, err
		}
	}

	category, err := normalize.Category(input.Category, b.settings.Categories)
	if err != nil {
		return nil, err
	}

	capturedAt := input.CapturedAt.In(b.timezone)

	timeOfDay := input.TimeOfDay
	if !almanac.IsTimeOfDay(timeOfDay) {
		timeOfDay = almanac.TimeOfDay(capturedAt)
	}

	existingTags := ExistingTags(sightings)
	tags := make([]string, 0, len(input.Tags))
	for _, tag := range input.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, normalize.NormalizeName(tag, existingTags))
	}

	weatherBlock, celestial := b.Enrich(ctx, capturedAt)

	return &model.Sighting{
		ID:             b.NextID(capturedAt, sightings),
		Images:         []model.Image{},
		CommonName:     commonName,
		ScientificName: scientificName,
		Category:       category,
		CapturedAt:     capturedAt,
		TimeOfDay:      timeOfDay,
		Tags:           tags,
		Weather:        weatherBlock,
		Celestial:      celestial,
		Season:         b.Season(capturedAt),
		Notes:          strings.TrimSpace(input.Notes),
		SizeMM:         input.SizeMM,
		IDCertainty:    input.IDCertainty,
		CreatedAt:      b.Now(),
	}, nil
}

// Delete removes a sighting and preserves it as an observation with a
// conversion note, carrying over its weather and celestial blocks. It saves
// observations before removing the sighting so an interruption cannot lose
// the record. The removed sighting is returned so the caller can clean up its
// image renditions.
func (b *Builder) Delete(id string) (*model.Sighting, error) {
	sightings, err := b.store.LoadSightings()
	if err != nil {
		return nil, err
	}

	idx := FindByID(sightings, id)
	if idx < 0 {
		return nil, errors.Newf("sighting %s not found", id).
			Component("record").
			Category(errors.CategoryNotFound).
			Context("sighting_id", id).
			Build()
	}
	sighting := sightings[idx]

	capturedAt := sighting.CapturedAt.In(b.timezone)
	observation := model.Observation{
		Date:           capturedAt.Format("2006-01-02"),
		Time:           capturedAt.Format("15:04"),
		CommonName:     sighting.CommonName,
		ScientificName: sighting.ScientificName,
		TimeOfDay:      sighting.TimeOfDay,
		Note:           fmt.Sprintf("Converted from deleted sighting %s", sighting.ID),
		CreatedAt:      b.Now(),
		Weather:        sighting.Weather,
		Celestial:      sighting.Celestial,
	}

	observations, err := b.store.LoadObservations()
	if err != nil {
		return nil, err
	}
	observations = append(observations, observation)
	if err := b.store.SaveObservations(observations); err != nil {
		return nil, err
	}

	sightings = append(sightings[:idx], sightings[idx+1:]...)
	if err := b.store.SaveSightings(sightings); err != nil {
		return nil, err
	}

	return &sighting, nil
}
