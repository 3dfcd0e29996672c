// config.go: settings struct and viper-based loading for the squarelog CLI.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/squaremeter/squarelog/internal/errors"
)

// LocationSettings describes the fixed observation plot.
type LocationSettings struct {
	Latitude  float64 // latitude of the plot
	Longitude float64 // longitude of the plot
	Timezone  string  // IANA timezone name, e.g. "Asia/Kolkata"
}

// SeasonDefinition maps a season name to the lowercase English month names it
// covers. Definitions are an ordered list: the first season whose month list
// contains the target month wins, which makes overlapping definitions a
// configuration contract rather than a bug.
type SeasonDefinition struct {
	Name   string
	Months []string
}

// SiteSettings holds metadata for the generated static site.
type SiteSettings struct {
	Title             string
	Description       string
	URL               string
	FeaturedSightings []string `mapstructure:"featured_sightings"`
}

// WeatherSettings holds Open-Meteo endpoints and the request timeout.
type WeatherSettings struct {
	ForecastEndpoint string `mapstructure:"forecast_endpoint"`
	ArchiveEndpoint  string `mapstructure:"archive_endpoint"`
	Timeout          time.Duration
}

// TaxonomySettings holds the GBIF species match endpoint and batch pacing.
type TaxonomySettings struct {
	Endpoint     string
	Timeout      time.Duration
	RequestDelay time.Duration `mapstructure:"request_delay"`
}

// MirrorSettings holds the optional SFTP catalog mirror configuration.
type MirrorSettings struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	KeyFile  string `mapstructure:"key_file"`
	Path     string
	Timeout  time.Duration
}

// Settings contains all application configuration.
type Settings struct {
	Debug bool // true to enable debug output

	DataDir    string `mapstructure:"data_dir"`    // sightings.json, observations.json, taxonomy_cache.json
	CatalogDir string `mapstructure:"catalog_dir"` // processed image renditions
	InboxDir   string `mapstructure:"inbox_dir"`   // incoming images for the add command
	PostsDir   string `mapstructure:"posts_dir"`   // markdown posts for the site
	StaticDir  string `mapstructure:"static_dir"`  // static site assets
	OutputDir  string `mapstructure:"output_dir"`  // site build output

	Location   LocationSettings
	Categories []string
	Seasons    []SeasonDefinition
	Site       SiteSettings
	Weather    WeatherSettings
	Taxonomy   TaxonomySettings
	Mirror     MirrorSettings

	timezone     *time.Location
	timezoneOnce sync.Once
	timezoneErr  error
}

// TimeZone returns the configured timezone as a *time.Location, loading it on
// first use.
func (s *Settings) TimeZone() (*time.Location, error) {
	s.timezoneOnce.Do(func() {
		s.timezone, s.timezoneErr = time.LoadLocation(s.Location.Timezone)
	})
	if s.timezoneErr != nil {
		return nil, errors.New(s.timezoneErr).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("timezone", s.Location.Timezone).
			Build()
	}
	return s.timezone, nil
}

func setDefaults() {
	viper.SetDefault("debug", false)

	viper.SetDefault("data_dir", "data")
	viper.SetDefault("catalog_dir", "catalog")
	viper.SetDefault("inbox_dir", "inbox")
	viper.SetDefault("posts_dir", "posts")
	viper.SetDefault("static_dir", "static")
	viper.SetDefault("output_dir", "site")

	viper.SetDefault("location.latitude", 0.0)
	viper.SetDefault("location.longitude", 0.0)
	viper.SetDefault("location.timezone", "UTC")

	viper.SetDefault("categories", []string{
		"insect", "arachnid", "mollusc", "reptile", "amphibian",
		"bird", "mammal", "plant", "fungus", "other",
	})

	viper.SetDefault("seasons", []map[string]any{
		{"name": "winter", "months": []string{"december", "january", "february"}},
		{"name": "summer", "months": []string{"march", "april", "may", "june"}},
		{"name": "monsoon", "months": []string{"july", "august", "september"}},
		{"name": "post-monsoon", "months": []string{"october", "november"}},
	})

	viper.SetDefault("site.title", "One Square Meter")
	viper.SetDefault("site.description", "A biodiversity journal of a single square meter")
	viper.SetDefault("site.url", "")

	viper.SetDefault("weather.forecast_endpoint", "https://api.open-meteo.com/v1/forecast")
	viper.SetDefault("weather.archive_endpoint", "https://archive-api.open-meteo.com/v1/archive")
	viper.SetDefault("weather.timeout", "10s")

	viper.SetDefault("taxonomy.endpoint", "https://api.gbif.org/v1/species/match")
	viper.SetDefault("taxonomy.timeout", "10s")
	viper.SetDefault("taxonomy.request_delay", "300ms")

	viper.SetDefault("mirror.enabled", false)
	viper.SetDefault("mirror.port", 22)
	viper.SetDefault("mirror.path", "catalog")
	viper.SetDefault("mirror.timeout", "30s")
}

// Load reads settings from the config file (config.yaml or config.json in the
// working directory or the user config directory) on top of the defaults.
// A missing config file is not an error; everything can run on defaults.
func Load() (*Settings, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	if configDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(configDir, "squarelog"))
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.New(err).
				Component("conf").
				Category(errors.CategoryFileParsing).
				Context("config_file", viper.ConfigFileUsed()).
				Build()
		}
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Validate checks settings for values the rest of the application relies on.
func (s *Settings) Validate() error {
	if s.Location.Latitude < -90 || s.Location.Latitude > 90 {
		return errors.Newf("latitude out of range: %f", s.Location.Latitude).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if s.Location.Longitude < -180 || s.Location.Longitude > 180 {
		return errors.Newf("longitude out of range: %f", s.Location.Longitude).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if len(s.Categories) == 0 {
		return errors.Newf("at least one category must be configured").
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if _, err := s.TimeZone(); err != nil {
		return err
	}
	for _, season := range s.Seasons {
		if season.Name == "" {
			return errors.Newf("season definition with empty name").
				Component("conf").
				Category(errors.CategoryValidation).
				Build()
		}
	}
	return nil
}

// DataFile returns the path of a JSON collection file under the data directory.
func (s *Settings) DataFile(name string) string {
	return filepath.Join(s.DataDir, name)
}

// CatalogFile returns the path of an image rendition in the catalog.
func (s *Settings) CatalogFile(size, filename string) string {
	return filepath.Join(s.CatalogDir, size, filename)
}

func (s *Settings) String() string {
	return fmt.Sprintf("squarelog settings (plot %.4f,%.4f %s)",
		s.Location.Latitude, s.Location.Longitude, s.Location.Timezone)
}
