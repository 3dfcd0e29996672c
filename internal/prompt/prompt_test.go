package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(input), &out), &out
}

func TestAsk(t *testing.T) {
	p, out := newTestPrompter("  Common Jezebel  \n")
	assert.Equal(t, "Common Jezebel", p.Ask("Species"))
	assert.Contains(t, out.String(), "Species: ")
}

func TestAskEOF(t *testing.T) {
	p, _ := newTestPrompter("")
	assert.Equal(t, "", p.Ask("Species"))
}

func TestAskDefault(t *testing.T) {
	p, out := newTestPrompter("\ninsect\n")
	assert.Equal(t, "other", p.AskDefault("Category", "other"))
	assert.Equal(t, "insect", p.AskDefault("Category", "other"))
	assert.Contains(t, out.String(), "[other]")
}

func TestAskRequired(t *testing.T) {
	p, out := newTestPrompter("\n\nWeaver Ant\n")
	assert.Equal(t, "Weaver Ant", p.AskRequired("Species"))
	assert.Contains(t, out.String(), "A value is required.")
}

func TestAskRequiredEOF(t *testing.T) {
	p, _ := newTestPrompter("\n")
	assert.Equal(t, "", p.AskRequired("Species"))
}

func TestAskYesNo(t *testing.T) {
	p, _ := newTestPrompter("y\nno\n\nmaybe\n")
	assert.True(t, p.AskYesNo("Delete", false))
	assert.False(t, p.AskYesNo("Delete", true))
	assert.True(t, p.AskYesNo("Delete", true))   // empty -> default
	assert.False(t, p.AskYesNo("Delete", false)) // unparseable -> default
}

func TestAskChoice(t *testing.T) {
	p, _ := newTestPrompter("2\n0\nfive\n")
	assert.Equal(t, 1, p.AskChoice("Which", 3))
	assert.Equal(t, -1, p.AskChoice("Which", 3))
	assert.Equal(t, -1, p.AskChoice("Which", 3))
}

func TestAskFloat(t *testing.T) {
	p, _ := newTestPrompter("12.5\n\nbig\n")

	value, err := p.AskFloat("Size mm")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, 12.5, *value)

	value, err = p.AskFloat("Size mm")
	require.NoError(t, err)
	assert.Nil(t, value)

	_, err = p.AskFloat("Size mm")
	assert.Error(t, err)
}

func TestAskList(t *testing.T) {
	p, _ := newTestPrompter("basking, fence , ,\n\n")
	assert.Equal(t, []string{"basking", "fence"}, p.AskList("Tags"))
	assert.Nil(t, p.AskList("Tags"))
}
