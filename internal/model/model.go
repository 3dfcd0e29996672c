// Package model defines the record types persisted in the flat JSON
// collections: photographed sightings, logged-only observations, and the
// taxonomy classification cache.
package model

import (
	"strings"
	"time"
)

// Image is a processed photograph attached to a sighting. Filenames follow
// the {sighting-id}-{letter}.jpg convention, letters assigned in attachment
// order starting at "a".
type Image struct {
	Filename string `json:"filename"`
	Caption  string `json:"caption"`
}

// Weather is the daily weather block attached to a record. All numeric
// fields are pointers: a nil field means the provider did not report a value,
// which is distinct from a reported zero.
type Weather struct {
	TempMaxC         *float64 `json:"temp_max_c"`
	TempMinC         *float64 `json:"temp_min_c"`
	PrecipitationMM  *float64 `json:"precipitation_mm"`
	Conditions       string   `json:"conditions"`
	HumidityPercent  *float64 `json:"humidity_percent"`
	PressureHPa      *float64 `json:"pressure_hpa"`
	WindSpeedKmh     *float64 `json:"wind_speed_kmh"`
	WindDirectionDeg *float64 `json:"wind_direction_deg"`
	SoilTempC        *float64 `json:"soil_temp_c"`
	UVIndex          *float64 `json:"uv_index"`
}

// UnknownConditions is the sentinel used when weather could not be fetched
// or the reported code has no mapping.
const UnknownConditions = "Unknown"

// NullWeather returns the fallback block used when a weather fetch fails:
// every numeric field absent and conditions "Unknown".
func NullWeather() *Weather {
	return &Weather{Conditions: UnknownConditions}
}

// Celestial holds derived astronomical context for a record's date.
// Sunrise and sunset are local HH:MM strings, or "Unknown" when the
// computation failed.
type Celestial struct {
	MoonPhase        string  `json:"moon_phase"`
	MoonIllumination float64 `json:"moon_illumination"`
	Sunrise          string  `json:"sunrise"`
	Sunset           string  `json:"sunset"`
}

// Sighting is a photographed observation.
type Sighting struct {
	ID             string     `json:"id"` // YYYYMMDD-NNN
	Images         []Image    `json:"images"`
	CommonName     string     `json:"common_name"`
	ScientificName string     `json:"scientific_name"`
	Category       string     `json:"category"`
	CapturedAt     time.Time  `json:"captured_at"`
	TimeOfDay      string     `json:"time_of_day"`
	Tags           []string   `json:"tags"`
	Weather        *Weather   `json:"weather"`
	Celestial      *Celestial `json:"celestial"`
	Season         string     `json:"season"`
	Notes          string     `json:"notes"`
	SizeMM         *float64   `json:"size_mm"`
	IDCertainty    string     `json:"id_certainty,omitempty"` // high, medium, low or unset
	CreatedAt      time.Time  `json:"created_at"`
}

// Date returns the local calendar date of capture as YYYY-MM-DD.
func (s Sighting) Date() string {
	return s.CapturedAt.Format("2006-01-02")
}

// FirstImage returns the filename of the first attached image, or "".
// Value receivers keep both usable on range variables in templates.
func (s Sighting) FirstImage() string {
	if len(s.Images) == 0 {
		return ""
	}
	return s.Images[0].Filename
}

// Observation is a logged-only sighting without photographs. Observations are
// created by quick-logging and by sighting deletion (delete-as-convert).
type Observation struct {
	Date           string     `json:"date"` // YYYY-MM-DD
	Time           string     `json:"time"` // HH:MM
	CommonName     string     `json:"common_name"`
	ScientificName string     `json:"scientific_name,omitempty"`
	TimeOfDay      string     `json:"time_of_day"`
	Note           string     `json:"note"`
	CreatedAt      time.Time  `json:"created_at"`
	Weather        *Weather   `json:"weather,omitempty"`
	Celestial      *Celestial `json:"celestial,omitempty"`
}

// Classification is the taxonomic placement of a scientific name as returned
// by the species match service. Any field may be empty: partial taxonomy is
// valid and propagates as absent values, not as an error.
type Classification struct {
	Kingdom       string `json:"kingdom,omitempty"`
	Phylum        string `json:"phylum,omitempty"`
	Class         string `json:"class,omitempty"`
	Order         string `json:"order,omitempty"`
	Family        string `json:"family,omitempty"`
	Genus         string `json:"genus,omitempty"`
	Species       string `json:"species,omitempty"`
	GBIFKey       *int64 `json:"gbif_key,omitempty"`
	CanonicalName string `json:"canonical_name,omitempty"`
	MatchType     string `json:"match_type,omitempty"`
}

// TaxonomyCache maps lower-cased, trimmed scientific names to classifications.
// A key present with a nil value is a permanent negative entry: the service
// confidently reported no match, do not retry. Entries are only ever added,
// never evicted.
type TaxonomyCache map[string]*Classification

// CacheKey normalizes a scientific name to its cache key form.
func CacheKey(scientificName string) string {
	return strings.ToLower(strings.TrimSpace(scientificName))
}

// Lookup returns the cached classification for a scientific name and whether
// any entry (including a negative one) exists.
func (c TaxonomyCache) Lookup(scientificName string) (*Classification, bool) {
	entry, ok := c[CacheKey(scientificName)]
	return entry, ok
}
