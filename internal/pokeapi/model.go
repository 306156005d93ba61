package pokeapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Payload is an undecoded upstream response body.
type Payload []byte

// PokemonResponse is the subset of GET /pokemon/{id} the store keeps.
// Pointer fields distinguish a missing value from a zero value.
type PokemonResponse struct {
	ID             *int                       `json:"id"`
	Name           *string                    `json:"name"`
	Height         *int                       `json:"height"`
	Weight         *int                       `json:"weight"`
	BaseExperience *int                       `json:"base_experience"`
	Types          []TypeSlot                 `json:"types"`
	Abilities      []AbilitySlot              `json:"abilities"`
	Stats          []StatEntry                `json:"stats"`
	Sprites        map[string]json.RawMessage `json:"sprites"`
}

type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

type AbilitySlot struct {
	Slot     int           `json:"slot"`
	IsHidden bool          `json:"is_hidden"`
	Ability  NamedResource `json:"ability"`
}

type StatEntry struct {
	BaseStat int           `json:"base_stat"`
	Effort   int           `json:"effort"`
	Stat     NamedResource `json:"stat"`
}

// GenerationResponse is the subset of GET /generation/{name}.
type GenerationResponse struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	PokemonSpecies []NamedResource `json:"pokemon_species"`
}

// ResourceID extracts the numeric id from a resource URL such as
// https://pokeapi.co/api/v2/pokemon-species/25/.
func ResourceID(url string) (int, error) {
	trimmed := strings.TrimRight(url, "/")
	idx := strings.LastIndex(trimmed, "/")
	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || id < 1 {
		return 0, fmt.Errorf("no resource id in %q", url)
	}
	return id, nil
}
