package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	base := fmt.Errorf("lookup failed")
	err := New(base).
		Component("taxonomy").
		Category(CategoryNetwork).
		Context("name", "Camponotus sp.").
		Build()

	assert.Equal(t, "lookup failed", err.Error())
	assert.Equal(t, "taxonomy", err.GetComponent())
	assert.Equal(t, string(CategoryNetwork), err.GetCategory())
	assert.Equal(t, "Camponotus sp.", err.GetContext()["name"])
	assert.True(t, Is(err, base))
}

func TestBuildDefaults(t *testing.T) {
	err := Newf("boom").Build()

	assert.Equal(t, ComponentUnknown, err.GetComponent())
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Nil(t, err.GetContext())
}

func TestIsMatchesCategory(t *testing.T) {
	a := Newf("first").Category(CategoryValidation).Build()
	b := Newf("second").Category(CategoryValidation).Build()
	c := Newf("third").Category(CategoryNetwork).Build()

	assert.True(t, Is(a, b))
	assert.False(t, Is(a, c))
}

func TestAs(t *testing.T) {
	err := Newf("wrapped").Category(CategoryFileIO).Build()
	wrapped := fmt.Errorf("outer: %w", err)

	var ee *EnhancedError
	require.True(t, As(wrapped, &ee))
	assert.Equal(t, CategoryFileIO, ee.Category)
}
