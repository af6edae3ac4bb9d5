package roster

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/pomodex/internal/model"
)

func TestNameTable(t *testing.T) {
	require.Len(t, names, model.RosterSize)
	assert.Equal(t, "Bulbasaur", Name(1))
	assert.Equal(t, "Pikachu", Name(25))
	assert.Equal(t, "Mew", Name(151))
	assert.Equal(t, "Turtwig", Name(387))
	assert.Equal(t, "Arceus", Name(493))
	assert.Equal(t, unknownName, Name(0))
	assert.Equal(t, unknownName, Name(494))
}

func TestFilterPrefixCaseInsensitive(t *testing.T) {
	got := Filter("PIKA")
	assert.Equal(t, []model.CreatureID{25}, got)

	got = Filter("char")
	assert.Equal(t, []model.CreatureID{4, 5, 6}, got)

	assert.Empty(t, Filter("zzz"))
	assert.Len(t, Filter(""), model.RosterSize)
	assert.Len(t, Filter("   "), model.RosterSize)
}

func TestFilterIsPrefixNotSubstring(t *testing.T) {
	for _, id := range Filter("mew") {
		assert.Contains(t, []model.CreatureID{150, 151}, id)
	}
}

func TestSpriteURL(t *testing.T) {
	assert.Equal(t, SpriteBaseURL+"/25.png", SpriteURL(25))
	assert.Equal(t, "25.png", SpriteFile(25))
}

func TestLabelAndPad(t *testing.T) {
	assert.Equal(t, "#025 Pikachu", Label(25))
	padded := PadName("Pikachu", 10)
	assert.Equal(t, 10, runewidth.StringWidth(padded))
	truncated := PadName("Crawdaunt", 5)
	assert.Equal(t, 5, runewidth.StringWidth(truncated))
	assert.Equal(t, "", PadName("Mew", 0))
}
