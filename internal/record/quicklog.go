package record

import (
	"context"
	"sort"
	"strings"

	"github.com/squaremeter/squarelog/internal/model"
	"github.com/squaremeter/squarelog/internal/normalize"
)

// SpeciesOption is one known (common name, scientific name) pairing. A common
// name can map to several scientific names when identifications were refined
// over time.
type SpeciesOption struct {
	CommonName     string
	ScientificName string
}

// Chooser resolves an ambiguous common name to one of its options. It
// receives the name and its candidates and returns the chosen index. The CLI
// prompts; tests supply a deterministic function.
type Chooser func(commonName string, options []SpeciesOption) int

// LoggedObservation reports one successfully logged species with its running
// record total across sightings and observations.
type LoggedObservation struct {
	CommonName     string
	ScientificName string
	Total          int
}

// QuickLogResult reports what a quick-log run did.
type QuickLogResult struct {
	Logged  []LoggedObservation
	Skipped []string // species skipped because a sighting exists today
}

// SpeciesLookup maps lower-cased common names to their known scientific name
// pairings, built from the sightings collection.
func SpeciesLookup(sightings []model.Sighting) map[string][]SpeciesOption {
	lookup := make(map[string][]SpeciesOption)
	for i := range sightings {
		key := strings.ToLower(sightings[i].CommonName)
		option := SpeciesOption{
			CommonName:     sightings[i].CommonName,
			ScientificName: sightings[i].ScientificName,
		}
		known := false
		for _, existing := range lookup[key] {
			if existing == option {
				known = true
				break
			}
		}
		if !known {
			lookup[key] = append(lookup[key], option)
		}
	}
	return lookup
}

// KnownSpecies lists every known species pairing sorted by common name, for
// the quick-log prompt.
func KnownSpecies(sightings []model.Sighting) []SpeciesOption {
	lookup := SpeciesLookup(sightings)
	keys := make([]string, 0, len(lookup))
	for key := range lookup {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var options []SpeciesOption
	for _, key := range keys {
		options = append(options, lookup[key]...)
	}
	return options
}

// QuickLog records observations for the given species names at the current
// time, sharing one weather and celestial fetch across all of them. A species
// that already has a photographed sighting today is skipped, not an error:
// the sighting is the richer record. Ambiguous common names are resolved via
// the chooser.
func (b *Builder) QuickLog(ctx context.Context, rawSpecies []string, timeOfDay string, choose Chooser) (*QuickLogResult, error) {
	sightings, err := b.store.LoadSightings()
	if err != nil {
		return nil, err
	}
	observations, err := b.store.LoadObservations()
	if err != nil {
		return nil, err
	}

	existingNames := ExistingNames(sightings, observations)
	lookup := SpeciesLookup(sightings)

	now := b.Now()
	weatherBlock, celestial := b.Enrich(ctx, now)

	today := now.Format("2006-01-02")
	sightedToday := make(map[string]struct{})
	for i := range sightings {
		if sightings[i].CapturedAt.In(b.timezone).Format("2006-01-02") == today {
			sightedToday[strings.ToLower(sightings[i].CommonName)] = struct{}{}
		}
	}

	result := &QuickLogResult{}
	for _, raw := range rawSpecies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		commonName := normalize.NormalizeName(raw, existingNames)

		if _, ok := sightedToday[strings.ToLower(commonName)]; ok {
			result.Skipped = append(result.Skipped, commonName)
			continue
		}

		scientificName := ""
		if options := lookup[strings.ToLower(commonName)]; len(options) > 0 {
			chosen := options[0]
			if len(options) > 1 && choose != nil {
				if idx := choose(commonName, options); idx >= 0 && idx < len(options) {
					chosen = options[idx]
				}
			}
			commonName = chosen.CommonName
			scientificName = chosen.ScientificName
		}

		observations = append(observations, model.Observation{
			Date:           today,
			Time:           now.Format("15:04"),
			CommonName:     commonName,
			ScientificName: scientificName,
			TimeOfDay:      timeOfDay,
			Note:           "",
			CreatedAt:      now,
			Weather:        weatherBlock,
			Celestial:      celestial,
		})

		result.Logged = append(result.Logged, LoggedObservation{
			CommonName:     commonName,
			ScientificName: scientificName,
			Total:          countRecords(sightings, observations, commonName, scientificName),
		})
	}

	if err := b.store.SaveObservations(observations); err != nil {
		return nil, err
	}
	return result, nil
}

// countRecords totals sightings and observations for a species, matching by
// scientific name when one is known and by common name otherwise.
func countRecords(sightings []model.Sighting, observations []model.Observation, commonName, scientificName string) int {
	count := 0
	if scientificName != "" {
		target := strings.ToLower(scientificName)
		for i := range sightings {
			if strings.ToLower(sightings[i].ScientificName) == target {
				count++
			}
		}
		for i := range observations {
			if strings.ToLower(observations[i].ScientificName) == target {
				count++
			}
		}
		return count
	}

	target := strings.ToLower(commonName)
	for i := range sightings {
		if strings.ToLower(sightings[i].CommonName) == target {
			count++
		}
	}
	for i := range observations {
		if strings.ToLower(observations[i].CommonName) == target {
			count++
		}
	}
	return count
}
