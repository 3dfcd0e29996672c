package datastore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squaremeter/squarelog/internal/model"
)

func TestLoadMissingFilesAreEmpty(t *testing.T) {
	store := NewAt(t.TempDir())

	sightings, err := store.LoadSightings()
	require.NoError(t, err)
	assert.Empty(t, sightings)

	observations, err := store.LoadObservations()
	require.NoError(t, err)
	assert.Empty(t, observations)

	cache, err := store.LoadTaxonomyCache()
	require.NoError(t, err)
	assert.Empty(t, cache)
}

func TestSightingsRoundTrip(t *testing.T) {
	store := NewAt(t.TempDir())

	size := 12.5
	captured := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	sightings := []model.Sighting{
		{
			ID:             "20260314-001",
			Images:         []model.Image{{Filename: "20260314-001-a.jpg", Caption: "on a leaf"}},
			CommonName:     "Common Jezebel",
			ScientificName: "Delias eucharis",
			Category:       "insect",
			CapturedAt:     captured,
			TimeOfDay:      "morning",
			Tags:           []string{"butterfly"},
			Weather:        model.NullWeather(),
			Season:         "summer",
			SizeMM:         &size,
			CreatedAt:      captured,
		},
	}

	require.NoError(t, store.SaveSightings(sightings))

	loaded, err := store.LoadSightings()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, sightings[0].ID, loaded[0].ID)
	assert.Equal(t, sightings[0].CommonName, loaded[0].CommonName)
	require.NotNil(t, loaded[0].SizeMM)
	assert.InDelta(t, 12.5, *loaded[0].SizeMM, 0.001)
	require.NotNil(t, loaded[0].Weather)
	assert.Equal(t, model.UnknownConditions, loaded[0].Weather.Conditions)
	assert.Nil(t, loaded[0].Weather.TempMaxC)
}

func TestSaveDoesNotEscapeText(t *testing.T) {
	dir := t.TempDir()
	store := NewAt(dir)

	observations := []model.Observation{
		{
			Date:       "2026-03-14",
			Time:       "09:30",
			CommonName: "Señorita Damselfly",
			Note:       "seen near the wall <fence side> & gone quickly",
			CreatedAt:  time.Now(),
		},
	}
	require.NoError(t, store.SaveObservations(observations))

	raw, err := os.ReadFile(filepath.Join(dir, ObservationsFile))
	require.NoError(t, err)

	content := string(raw)
	assert.Contains(t, content, "Señorita Damselfly")
	assert.Contains(t, content, "<fence side> &")
	assert.NotContains(t, content, "\\u003c")
	assert.NotContains(t, content, "\\u0026")

	// Two-space indentation.
	assert.True(t, strings.Contains(content, "\n  {"), "expected two-space indent")
}

func TestTaxonomyCacheNegativeEntries(t *testing.T) {
	store := NewAt(t.TempDir())

	key := int64(5141342)
	cache := model.TaxonomyCache{
		"delias eucharis": {
			Kingdom:       "Animalia",
			Class:         "Insecta",
			Order:         "Lepidoptera",
			Family:        "Pieridae",
			GBIFKey:       &key,
			CanonicalName: "Delias eucharis",
			MatchType:     "EXACT",
		},
		"unknownia speciesa": nil, // permanent negative entry
	}
	require.NoError(t, store.SaveTaxonomyCache(cache))

	loaded, err := store.LoadTaxonomyCache()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	entry, ok := loaded.Lookup("Delias eucharis")
	require.True(t, ok)
	require.NotNil(t, entry)
	assert.Equal(t, "Pieridae", entry.Family)

	negative, ok := loaded.Lookup("Unknownia speciesa")
	assert.True(t, ok)
	assert.Nil(t, negative)
}

func TestSaveNilCollectionsWriteEmptyArrays(t *testing.T) {
	dir := t.TempDir()
	store := NewAt(dir)

	require.NoError(t, store.SaveSightings(nil))

	raw, err := os.ReadFile(filepath.Join(dir, SightingsFile))
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(raw)))
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewAt(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, SightingsFile), []byte("{not json"), 0o644))

	_, err := store.LoadSightings()
	require.Error(t, err)
}
