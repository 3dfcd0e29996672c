package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/model"
)

func stringPtr(s string) *string { return &s }

func TestEdit(t *testing.T) {
	store := datastore.NewAt(t.TempDir())
	size := 12.0
	require.NoError(t, store.SaveSightings([]model.Sighting{
		{
			ID:             "20260314-001",
			CommonName:     "garden lizard",
			ScientificName: "Calotes versicolor",
			Category:       "reptile",
			CapturedAt:     time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC),
			TimeOfDay:      "morning",
			Season:         "summer",
			Notes:          "on the compost bin",
			SizeMM:         &size,
			Tags:           []string{"Basking"},
		},
	}))

	now := time.Date(2026, time.March, 20, 10, 0, 0, 0, time.UTC)
	builder := newTestBuilder(t, store, now, nil)

	newSize := 140.0
	updated, err := builder.Edit("20260314-001", FieldEdits{
		CommonName:  stringPtr("oriental garden lizard"),
		Notes:       stringPtr("  moved to the fence  "),
		IDCertainty: stringPtr("High"),
		SizeMM:      &newSize,
		Tags:        &[]string{"basking", "fence"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Oriental Garden Lizard", updated.CommonName)
	assert.Equal(t, "Calotes versicolor", updated.ScientificName) // untouched
	assert.Equal(t, "moved to the fence", updated.Notes)
	assert.Equal(t, "high", updated.IDCertainty)
	assert.Equal(t, 140.0, *updated.SizeMM)
	assert.Equal(t, []string{"Basking", "Fence"}, updated.Tags)

	persisted, err := store.LoadSightings()
	require.NoError(t, err)
	assert.Equal(t, "Oriental Garden Lizard", persisted[0].CommonName)
}

func TestEditClearFields(t *testing.T) {
	store := datastore.NewAt(t.TempDir())
	size := 12.0
	require.NoError(t, store.SaveSightings([]model.Sighting{
		{
			ID:             "20260314-001",
			CommonName:     "Garden Lizard",
			ScientificName: "Calotes versicolor",
			Category:       "reptile",
			SizeMM:         &size,
			IDCertainty:    "medium",
		},
	}))

	now := time.Date(2026, time.March, 20, 10, 0, 0, 0, time.UTC)
	builder := newTestBuilder(t, store, now, nil)

	updated, err := builder.Edit("20260314-001", FieldEdits{
		ScientificName: stringPtr(""),
		IDCertainty:    stringPtr(""),
		ClearSizeMM:    true,
	})
	require.NoError(t, err)
	assert.Empty(t, updated.ScientificName)
	assert.Empty(t, updated.IDCertainty)
	assert.Nil(t, updated.SizeMM)
}

func TestEditValidation(t *testing.T) {
	store := datastore.NewAt(t.TempDir())
	require.NoError(t, store.SaveSightings([]model.Sighting{
		{ID: "20260314-001", CommonName: "Garden Lizard", Category: "reptile"},
	}))

	now := time.Date(2026, time.March, 20, 10, 0, 0, 0, time.UTC)
	builder := newTestBuilder(t, store, now, nil)

	_, err := builder.Edit("20260314-001", FieldEdits{Category: stringPtr("dragon")})
	assert.Error(t, err)

	_, err = builder.Edit("20260314-001", FieldEdits{TimeOfDay: stringPtr("latenight")})
	assert.Error(t, err)

	_, err = builder.Edit("20260314-001", FieldEdits{IDCertainty: stringPtr("certain")})
	assert.Error(t, err)

	_, err = builder.Edit("20269999-404", FieldEdits{})
	assert.Error(t, err)

	// Failed edits never persist.
	persisted, err := store.LoadSightings()
	require.NoError(t, err)
	assert.Equal(t, "reptile", persisted[0].Category)
}
