// Package speciestree arranges sighted species into a class/order/family tree
// using the taxonomy cache. Species without usable taxonomy fall into an
// unclassified bucket rather than disappearing.
package speciestree

import (
	"sort"
	"strings"

	"github.com/squaremeter/squarelog/internal/model"
)

// Labels for taxonomy levels that are present in the cache entry but empty.
// A missing or class-less entry sends the species to Unclassified instead.
const (
	UnknownOrder  = "Unknown Order"
	UnknownFamily = "Unknown Family"
)

// SpeciesEntry is one species leaf in the tree, built from the first sighting
// of that species.
type SpeciesEntry struct {
	CommonName     string                `json:"common_name"`
	ScientificName string                `json:"scientific_name"`
	SightingID     string                `json:"sighting_id"`
	Image          string                `json:"image"`
	Notes          string                `json:"notes"`
	SightingCount  int                   `json:"sighting_count"`
	GBIFKey        *int64                `json:"gbif_key,omitempty"`
	Genus          string                `json:"genus,omitempty"`
	Classification *model.Classification `json:"taxonomy,omitempty"`
}

// Tree is the nested class -> order -> family -> species structure plus the
// unclassified bucket.
type Tree struct {
	Classes      map[string]map[string]map[string][]SpeciesEntry `json:"tree"`
	Unclassified []SpeciesEntry                                  `json:"unclassified"`
}

// Stats summarizes the tree for the site header.
type Stats struct {
	Classes  int `json:"classes"`
	Orders   int `json:"orders"`
	Families int `json:"families"`
	Species  int `json:"species"`
}

// Build groups sightings by species and places each under its taxonomic
// classification. Grouping is by lower-cased trimmed scientific name; the
// first sighting of a species represents it and the count is the number of
// sighting records. Sightings without a scientific name are excluded.
func Build(sightings []model.Sighting, cache model.TaxonomyCache) *Tree {
	type group struct {
		sighting *model.Sighting
		count    int
	}

	groups := make(map[string]*group)
	var order []string // first-seen order of species keys
	for i := range sightings {
		key := model.CacheKey(sightings[i].ScientificName)
		if key == "" {
			continue
		}
		if g, ok := groups[key]; ok {
			g.count++
			continue
		}
		groups[key] = &group{sighting: &sightings[i], count: 1}
		order = append(order, key)
	}

	tree := &Tree{Classes: make(map[string]map[string]map[string][]SpeciesEntry)}

	for _, key := range order {
		g := groups[key]
		classification := cache[key]

		entry := SpeciesEntry{
			CommonName:     g.sighting.CommonName,
			ScientificName: g.sighting.ScientificName,
			SightingID:     g.sighting.ID,
			Image:          g.sighting.FirstImage(),
			Notes:          g.sighting.Notes,
			SightingCount:  g.count,
		}

		if classification == nil || classification.Class == "" {
			tree.Unclassified = append(tree.Unclassified, entry)
			continue
		}

		entry.GBIFKey = classification.GBIFKey
		entry.Genus = classification.Genus
		entry.Classification = classification

		orderName := classification.Order
		if orderName == "" {
			orderName = UnknownOrder
		}
		familyName := classification.Family
		if familyName == "" {
			familyName = UnknownFamily
		}

		className := classification.Class
		if tree.Classes[className] == nil {
			tree.Classes[className] = make(map[string]map[string][]SpeciesEntry)
		}
		if tree.Classes[className][orderName] == nil {
			tree.Classes[className][orderName] = make(map[string][]SpeciesEntry)
		}
		tree.Classes[className][orderName][familyName] = append(
			tree.Classes[className][orderName][familyName], entry)
	}

	// Species within a family sort by common name, case-insensitively.
	for _, orders := range tree.Classes {
		for _, families := range orders {
			for _, entries := range families {
				sort.SliceStable(entries, func(i, j int) bool {
					return strings.ToLower(entries[i].CommonName) < strings.ToLower(entries[j].CommonName)
				})
			}
		}
	}

	return tree
}

// ClassNames returns the class names in sorted order for rendering.
func (t *Tree) ClassNames() []string {
	return sortedKeys(t.Classes)
}

// OrderNames returns the order names under a class in sorted order.
func (t *Tree) OrderNames(class string) []string {
	return sortedKeys(t.Classes[class])
}

// FamilyNames returns the family names under an order in sorted order.
func (t *Tree) FamilyNames(class, order string) []string {
	return sortedKeys(t.Classes[class][order])
}

// Stats counts the distinct classes, orders, families and total species
// (classified plus unclassified).
func (t *Tree) Stats() Stats {
	stats := Stats{
		Classes: len(t.Classes),
		Species: len(t.Unclassified),
	}
	for _, orders := range t.Classes {
		stats.Orders += len(orders)
		for _, families := range orders {
			stats.Families += len(families)
			for _, entries := range families {
				stats.Species += len(entries)
			}
		}
	}
	return stats
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
