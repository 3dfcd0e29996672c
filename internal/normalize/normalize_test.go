package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTitleCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"ant", "Ant"},
		{"ANT", "Ant"},
		{"weaver ant", "Weaver Ant"},
		{"  jumping   spider  ", "Jumping Spider"},
		{"seven-spotted ladybird", "Seven-Spotted Ladybird"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToTitleCase(tt.input), "input %q", tt.input)
	}
}

func TestToTitleCaseIdempotent(t *testing.T) {
	inputs := []string{"", "ant", "Weaver Ant", "GARDEN snail", "x", "a b c"}
	for _, s := range inputs {
		once := ToTitleCase(s)
		assert.Equal(t, once, ToTitleCase(once), "input %q", s)
	}
}

func TestNormalizeNameReturnsExistingVerbatim(t *testing.T) {
	existing := []string{"Weaver Ant", "Garden Snail"}

	// Case-insensitive match must return the stored member, not a re-derived
	// title case.
	assert.Equal(t, "Weaver Ant", NormalizeName("weaver ant", existing))
	assert.Equal(t, "Weaver Ant", NormalizeName("WEAVER ANT", existing))
	assert.Equal(t, "Garden Snail", NormalizeName("  garden snail ", existing))

	// Unknown names get freshly title-cased.
	assert.Equal(t, "Paper Wasp", NormalizeName("paper wasp", existing))
}

func TestCommonName(t *testing.T) {
	got, err := CommonName("weaver ant")
	require.NoError(t, err)
	assert.Equal(t, "Weaver Ant", got)

	_, err = CommonName("")
	assert.ErrorContains(t, err, "required")

	_, err = CommonName("x")
	assert.ErrorContains(t, err, "too short")

	_, err = CommonName("Weaver Ant (Oecophylla smaragdina)")
	assert.ErrorContains(t, err, "parentheses")
}

func TestScientificName(t *testing.T) {
	got, err := ScientificName("")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ScientificName("oecophylla SMARAGDINA")
	require.NoError(t, err)
	assert.Equal(t, "Oecophylla smaragdina", got)

	got, err = ScientificName("Camponotus sp.")
	require.NoError(t, err)
	assert.Equal(t, "Camponotus sp.", got)

	_, err = ScientificName("Oecophylla")
	assert.ErrorContains(t, err, "at least two parts")

	_, err = ScientificName("Camponotus sp")
	assert.ErrorContains(t, err, "sp.")
}

func TestCategory(t *testing.T) {
	valid := []string{"insect", "arachnid", "other"}

	got, err := Category("  Insect ", valid)
	require.NoError(t, err)
	assert.Equal(t, "insect", got)

	_, err = Category("fish", valid)
	assert.ErrorContains(t, err, "invalid category")
}
