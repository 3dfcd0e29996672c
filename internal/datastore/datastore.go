// Package datastore persists the record collections as flat JSON files. Every
// save rewrites the whole file via a temp file and rename, so a crash cannot
// leave a half-written collection behind.
package datastore

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/errors"
	"github.com/squaremeter/squarelog/internal/model"
)

// Collection file names under the data directory.
const (
	SightingsFile     = "sightings.json"
	ObservationsFile  = "observations.json"
	TaxonomyCacheFile = "taxonomy_cache.json"
)

// Store reads and writes the JSON collections under a data directory.
type Store struct {
	dataDir string
}

// New creates a store for the configured data directory.
func New(settings *conf.Settings) *Store {
	return &Store{dataDir: settings.DataDir}
}

// NewAt creates a store rooted at an explicit directory. Used by tests.
func NewAt(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// LoadSightings loads the sightings collection. A missing file is an empty
// collection, not an error.
func (s *Store) LoadSightings() ([]model.Sighting, error) {
	var sightings []model.Sighting
	if err := s.load(SightingsFile, &sightings); err != nil {
		return nil, err
	}
	return sightings, nil
}

// SaveSightings writes the full sightings collection.
func (s *Store) SaveSightings(sightings []model.Sighting) error {
	if sightings == nil {
		sightings = []model.Sighting{}
	}
	return s.save(SightingsFile, sightings)
}

// LoadObservations loads the quick observations collection.
func (s *Store) LoadObservations() ([]model.Observation, error) {
	var observations []model.Observation
	if err := s.load(ObservationsFile, &observations); err != nil {
		return nil, err
	}
	return observations, nil
}

// SaveObservations writes the full observations collection.
func (s *Store) SaveObservations(observations []model.Observation) error {
	if observations == nil {
		observations = []model.Observation{}
	}
	return s.save(ObservationsFile, observations)
}

// LoadTaxonomyCache loads the taxonomy cache. A missing file is an empty
// cache.
func (s *Store) LoadTaxonomyCache() (model.TaxonomyCache, error) {
	cache := model.TaxonomyCache{}
	if err := s.load(TaxonomyCacheFile, &cache); err != nil {
		return nil, err
	}
	return cache, nil
}

// SaveTaxonomyCache writes the full taxonomy cache.
func (s *Store) SaveTaxonomyCache(cache model.TaxonomyCache) error {
	if cache == nil {
		cache = model.TaxonomyCache{}
	}
	return s.save(TaxonomyCacheFile, cache)
}

func (s *Store) load(name string, target any) error {
	path := filepath.Join(s.dataDir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("file", path).
			Build()
	}

	if err := json.Unmarshal(data, target); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileParsing).
			Context("file", path).
			Build()
	}
	return nil
}

// save encodes the collection with two-space indentation and HTML escaping
// disabled, so names like "Heliocypha <sp>" and non-ASCII text survive
// verbatim, then atomically replaces the target file.
func (s *Store) save(name string, value any) error {
	path := filepath.Join(s.dataDir, name)

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("dir", s.dataDir).
			Build()
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("file", path).
			Build()
	}

	tmp, err := os.CreateTemp(s.dataDir, name+".tmp-*")
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("dir", s.dataDir).
			Build()
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("file", tmpPath).
			Build()
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("file", tmpPath).
			Build()
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("file", path).
			Build()
	}
	return nil
}
