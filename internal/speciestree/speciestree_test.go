package speciestree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squaremeter/squarelog/internal/model"
)

func sighting(id, common, scientific string) model.Sighting {
	return model.Sighting{
		ID:             id,
		CommonName:     common,
		ScientificName: scientific,
		Images:         []model.Image{{Filename: id + "-a.jpg"}},
	}
}

func TestBuildGroupsAndCounts(t *testing.T) {
	sightings := []model.Sighting{
		sighting("20260301-001", "Common Jezebel", "Delias eucharis"),
		sighting("20260302-001", "Common Jezebel", "delias eucharis"), // same species, different case
		sighting("20260302-002", "Asian Ant Mantis", "Odontomantis planiceps"),
	}
	cache := model.TaxonomyCache{
		"delias eucharis":        {Class: "Insecta", Order: "Lepidoptera", Family: "Pieridae"},
		"odontomantis planiceps": {Class: "Insecta", Order: "Mantodea", Family: "Hymenopodidae"},
	}

	tree := Build(sightings, cache)

	pieridae := tree.Classes["Insecta"]["Lepidoptera"]["Pieridae"]
	require.Len(t, pieridae, 1)
	assert.Equal(t, 2, pieridae[0].SightingCount)
	// The first sighting represents the species.
	assert.Equal(t, "20260301-001", pieridae[0].SightingID)
	assert.Equal(t, "20260301-001-a.jpg", pieridae[0].Image)

	mantids := tree.Classes["Insecta"]["Mantodea"]["Hymenopodidae"]
	require.Len(t, mantids, 1)
	assert.Equal(t, 1, mantids[0].SightingCount)
}

func TestBuildUnclassified(t *testing.T) {
	sightings := []model.Sighting{
		sighting("20260301-001", "Mystery Bug", "Mysteria incognita"),
		sighting("20260301-002", "Classless Thing", "Vaguea formosa"),
		sighting("20260301-003", "No Name", ""),
	}
	cache := model.TaxonomyCache{
		// No entry at all for Mysteria incognita.
		"vaguea formosa": {Kingdom: "Animalia"}, // entry present but class empty
	}

	tree := Build(sightings, cache)

	require.Len(t, tree.Unclassified, 2)
	assert.Equal(t, "Mystery Bug", tree.Unclassified[0].CommonName)
	assert.Equal(t, "Classless Thing", tree.Unclassified[1].CommonName)
	// A sighting without a scientific name never enters the tree.
	assert.Empty(t, tree.Classes)
}

func TestBuildUnknownOrderAndFamilyLabels(t *testing.T) {
	sightings := []model.Sighting{
		sighting("20260301-001", "Half Known", "Partialis taxa"),
	}
	cache := model.TaxonomyCache{
		"partialis taxa": {Class: "Insecta"},
	}

	tree := Build(sightings, cache)

	entries := tree.Classes["Insecta"][UnknownOrder][UnknownFamily]
	require.Len(t, entries, 1)
	assert.Equal(t, "Half Known", entries[0].CommonName)
}

func TestBuildSortsFamilyEntriesByCommonName(t *testing.T) {
	sightings := []model.Sighting{
		sighting("20260301-001", "zigzag White", "Delias zeta"),
		sighting("20260301-002", "Common Jezebel", "Delias eucharis"),
		sighting("20260301-003", "apricot White", "Delias alpha"),
	}
	cache := model.TaxonomyCache{
		"delias zeta":     {Class: "Insecta", Order: "Lepidoptera", Family: "Pieridae"},
		"delias eucharis": {Class: "Insecta", Order: "Lepidoptera", Family: "Pieridae"},
		"delias alpha":    {Class: "Insecta", Order: "Lepidoptera", Family: "Pieridae"},
	}

	tree := Build(sightings, cache)

	entries := tree.Classes["Insecta"]["Lepidoptera"]["Pieridae"]
	require.Len(t, entries, 3)
	assert.Equal(t, "apricot White", entries[0].CommonName)
	assert.Equal(t, "Common Jezebel", entries[1].CommonName)
	assert.Equal(t, "zigzag White", entries[2].CommonName)
}

func TestStats(t *testing.T) {
	sightings := []model.Sighting{
		sighting("20260301-001", "Common Jezebel", "Delias eucharis"),
		sighting("20260301-002", "Asian Ant Mantis", "Odontomantis planiceps"),
		sighting("20260301-003", "Mystery Bug", "Mysteria incognita"),
	}
	cache := model.TaxonomyCache{
		"delias eucharis":        {Class: "Insecta", Order: "Lepidoptera", Family: "Pieridae"},
		"odontomantis planiceps": {Class: "Insecta", Order: "Mantodea", Family: "Hymenopodidae"},
	}

	tree := Build(sightings, cache)
	stats := tree.Stats()

	assert.Equal(t, 1, stats.Classes)
	assert.Equal(t, 2, stats.Orders)
	assert.Equal(t, 2, stats.Families)
	assert.Equal(t, 3, stats.Species) // two classified plus one unclassified
}

func TestWalkOrdering(t *testing.T) {
	sightings := []model.Sighting{
		sighting("1", "b", "Beta species"),
		sighting("2", "a", "Alpha species"),
	}
	cache := model.TaxonomyCache{
		"beta species":  {Class: "Insecta", Order: "Odonata", Family: "Libellulidae"},
		"alpha species": {Class: "Arachnida", Order: "Araneae", Family: "Salticidae"},
	}

	tree := Build(sightings, cache)

	assert.Equal(t, []string{"Arachnida", "Insecta"}, tree.ClassNames())
	assert.Equal(t, []string{"Araneae"}, tree.OrderNames("Arachnida"))
	assert.Equal(t, []string{"Salticidae"}, tree.FamilyNames("Arachnida", "Araneae"))
}
