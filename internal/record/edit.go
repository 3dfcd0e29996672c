package record

import (
	"strings"

	"github.com/squaremeter/squarelog/internal/almanac"
	"github.com/squaremeter/squarelog/internal/errors"
	"github.com/squaremeter/squarelog/internal/model"
	"github.com/squaremeter/squarelog/internal/normalize"
)

// FieldEdits carries the scalar fields of a sighting to change. A nil field is
// left as it is, so callers only set what the user actually touched.
type FieldEdits struct {
	CommonName     *string
	ScientificName *string // set to "" to clear
	Category       *string
	TimeOfDay      *string
	Notes          *string
	IDCertainty    *string // high, medium, low, or "" to clear
	Tags           *[]string
	SizeMM         *float64
	ClearSizeMM    bool
}

func validCertainty(value string) bool {
	switch value {
	case "", "high", "medium", "low":
		return true
	}
	return false
}

// Edit applies field edits to a sighting and saves the collection. Name and
// category edits go through the same validation as new sightings; derived
// enrichment (weather, celestial, season) is never touched since the capture
// date does not change.
func (b *Builder) Edit(id string, edits FieldEdits) (*model.Sighting, error) {
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
	s := &sightings[idx]

	if edits.CommonName != nil {
		name, err := normalize.CommonName(*edits.CommonName)
		if err != nil {
			return nil, err
		}
		s.CommonName = name
	}
	if edits.ScientificName != nil {
		name := strings.TrimSpace(*edits.ScientificName)
		if name != "" {
			if name, err = normalize.ScientificName(name); err != nil {
				return nil, err
			}
		}
		s.ScientificName = name
	}
	if edits.Category != nil {
		category, err := normalize.Category(*edits.Category, b.settings.Categories)
		if err != nil {
			return nil, err
		}
		s.Category = category
	}
	if edits.TimeOfDay != nil {
		tod := strings.ToLower(strings.TrimSpace(*edits.TimeOfDay))
		if !almanac.IsTimeOfDay(tod) {
			return nil, errors.Newf("invalid time of day: %s", *edits.TimeOfDay).
				Component("record").
				Category(errors.CategoryValidation).
				Build()
		}
		s.TimeOfDay = tod
	}
	if edits.Notes != nil {
		s.Notes = strings.TrimSpace(*edits.Notes)
	}
	if edits.IDCertainty != nil {
		certainty := strings.ToLower(strings.TrimSpace(*edits.IDCertainty))
		if !validCertainty(certainty) {
			return nil, errors.Newf("invalid id certainty: %s", *edits.IDCertainty).
				Component("record").
				Category(errors.CategoryValidation).
				Build()
		}
		s.IDCertainty = certainty
	}
	if edits.Tags != nil {
		existingTags := ExistingTags(sightings)
		tags := make([]string, 0, len(*edits.Tags))
		for _, tag := range *edits.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			tags = append(tags, normalize.NormalizeName(tag, existingTags))
		}
		s.Tags = tags
	}
	if edits.ClearSizeMM {
		s.SizeMM = nil
	} else if edits.SizeMM != nil {
		s.SizeMM = edits.SizeMM
	}

	if err := b.store.SaveSightings(sightings); err != nil {
		return nil, err
	}
	result := sightings[idx]
	return &result, nil
}
