package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferredPackageWriteOnce(t *testing.T) {
	var p PreferredPackage
	_, ok := p.Get()
	assert.False(t, ok)

	assert.False(t, p.Set(""), "empty values are ignored")
	assert.True(t, p.Set("access: option3"))
	assert.False(t, p.Set("access: option1"), "second write is ignored")

	v, ok := p.Get()
	assert.True(t, ok)
	assert.Equal(t, "access: option3", v)
}

func TestStoreNeutralDefault(t *testing.T) {
	s := NewStore(0.4)
	for _, id := range All {
		assert.Equal(t, 0.4, s.Happiness(id))
	}
}

func TestStorePreferredWriteOnce(t *testing.T) {
	s := NewStore(0.4)
	assert.True(t, s.SetPreferred(PersonaState, "pkg-a"))
	assert.False(t, s.SetPreferred(PersonaState, "pkg-b"))
	v, ok := s.Preferred(PersonaState)
	assert.True(t, ok)
	assert.Equal(t, "pkg-a", v)

	_, ok = s.Preferred(PersonaCitizen)
	assert.False(t, ok)
}

func TestStoreHappiness(t *testing.T) {
	s := NewStore(0.4)
	s.SetHappiness(PersonaHumanRights, 0.9)
	assert.Equal(t, 0.9, s.Happiness(PersonaHumanRights))

	scores := s.Scores()
	assert.Len(t, scores, 3)
	assert.Equal(t, 0.9, scores[PersonaHumanRights])
	assert.Equal(t, 0.4, scores[PersonaState])
}

func TestBuildPromptIncludesContext(t *testing.T) {
	p := BuildPrompt(PersonaCitizen, "- Access: option1\n", "my fixed package", "Language Instruction", "@citizens why?")
	assert.Contains(t, p, "citizen")
	assert.Contains(t, p, "my fixed package")
	assert.Contains(t, p, "Language Instruction")
	assert.Contains(t, p, "@citizens why?")
}

func TestBuildPromptWithoutMessage(t *testing.T) {
	p := BuildPrompt(PersonaState, "- Access: option1\n", "", "", "")
	assert.NotContains(t, p, "User's message")
	assert.Contains(t, p, "User's current policies")
}
