package species

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/at-ishikawa/pokedex/internal/pokeapi"
)

// SpriteVariants lists the sprite keys kept from the upstream payload.
var SpriteVariants = []string{
	"front_default",
	"back_default",
	"front_shiny",
	"back_shiny",
	"front_female",
	"back_female",
	"front_shiny_female",
	"back_shiny_female",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError reports a payload that cannot become a Record.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid species payload: %s: %v", e.Reason, e.Err)
	}
	return "invalid species payload: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Transform maps an upstream pokemon payload to a Record. It performs no I/O
// and either returns a complete Record or a ValidationError.
func Transform(payload pokeapi.Payload) (Record, error) {
	var res pokeapi.PokemonResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return Record{}, &ValidationError{Reason: "malformed payload", Err: err}
	}

	if res.ID == nil {
		return Record{}, &ValidationError{Reason: "missing id"}
	}
	if res.Name == nil || strings.TrimSpace(*res.Name) == "" {
		return Record{}, &ValidationError{Reason: "missing name"}
	}

	record := Record{
		ExternalID:     *res.ID,
		Name:           *res.Name,
		Height:         deref(res.Height),
		Weight:         deref(res.Weight),
		BaseExperience: deref(res.BaseExperience),
		Types:          make(Types, 0, len(res.Types)),
		Abilities:      make(Abilities, 0, len(res.Abilities)),
		Stats:          make(Stats, len(res.Stats)),
		Sprites:        make(Sprites),
	}

	for _, slot := range res.Types {
		record.Types = append(record.Types, strings.ToLower(slot.Type.Name))
	}
	for _, slot := range res.Abilities {
		record.Abilities = append(record.Abilities, slot.Ability.Name)
	}
	for _, stat := range res.Stats {
		if stat.Stat.Name == "" {
			return Record{}, &ValidationError{Reason: "stat without name"}
		}
		record.Stats[stat.Stat.Name] = stat.BaseStat
	}

	sprites, err := flattenSprites(res.Sprites)
	if err != nil {
		return Record{}, err
	}
	record.Sprites = sprites

	if err := validate.Struct(record); err != nil {
		return Record{}, &ValidationError{Reason: describe(err)}
	}
	return record, nil
}

func flattenSprites(raw map[string]json.RawMessage) (Sprites, error) {
	sprites := make(Sprites)
	for _, variant := range SpriteVariants {
		value, ok := raw[variant]
		if !ok || string(value) == "null" {
			continue
		}
		var url string
		if err := json.Unmarshal(value, &url); err != nil {
			return nil, &ValidationError{Reason: "sprite " + variant + " is not a string", Err: err}
		}
		if url != "" {
			sprites[variant] = url
		}
	}
	return sprites, nil
}

func describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	reasons := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		reasons = append(reasons, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(reasons, ", ")
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
