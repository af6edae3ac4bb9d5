// Package roster holds the static creature name table and search helpers.
package roster

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/pomodex/internal/model"
)

// SpriteBaseURL hosts the Generation IV Diamond/Pearl sprite set.
const SpriteBaseURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/versions/generation-iv/diamond-pearl"

const unknownName = "Wild Pokemon"

// Name returns the creature's name, or a generic placeholder for unknown ids.
func Name(id model.CreatureID) string {
	if !model.ValidCreature(id) {
		return unknownName
	}
	return names[id-1]
}

// All returns every creature id in ascending order.
func All() []model.CreatureID {
	ids := make([]model.CreatureID, model.RosterSize)
	for i := range ids {
		ids[i] = model.CreatureID(i + 1)
	}
	return ids
}

// Filter returns ids whose names start with term, case-insensitively.
// An empty term matches the whole roster.
func Filter(term string) []model.CreatureID {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return All()
	}
	var out []model.CreatureID
	for i, name := range names {
		if strings.HasPrefix(strings.ToLower(name), term) {
			out = append(out, model.CreatureID(i+1))
		}
	}
	return out
}

// SpriteURL returns the remote sprite location for id.
func SpriteURL(id model.CreatureID) string {
	return fmt.Sprintf("%s/%d.png", SpriteBaseURL, id)
}

// SpriteFile returns the local sprite file name for id.
func SpriteFile(id model.CreatureID) string {
	return fmt.Sprintf("%d.png", id)
}

// Label formats an id and name as "#025 Pikachu".
func Label(id model.CreatureID) string {
	return fmt.Sprintf("#%03d %s", id, Name(id))
}

// PadName pads or truncates a name to an exact display width.
func PadName(name string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(name) > width {
		return runewidth.Truncate(name, width, "…")
	}
	return runewidth.FillRight(name, width)
}
