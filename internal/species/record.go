// Package species holds the species record, its transformation from the
// upstream payload and its persistence.
package species

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Record is one stored species. ExternalID is the upstream id and never
// changes once stored.
type Record struct {
	ExternalID     int       `db:"external_id" json:"external_id" msgpack:"external_id" validate:"gt=0"`
	Name           string    `db:"name" json:"name" msgpack:"name" validate:"required"`
	Height         int       `db:"height" json:"height" msgpack:"height" validate:"gte=0"`
	Weight         int       `db:"weight" json:"weight" msgpack:"weight" validate:"gte=0"`
	BaseExperience int       `db:"base_experience" json:"base_experience" msgpack:"base_experience" validate:"gte=0"`
	Types          Types     `db:"types" json:"types" msgpack:"types" validate:"min=1,max=2,dive,required"`
	Abilities      Abilities `db:"abilities" json:"abilities" msgpack:"abilities" validate:"dive,required"`
	Stats          Stats     `db:"stats" json:"stats" msgpack:"stats"`
	Sprites        Sprites   `db:"sprites" json:"sprites" msgpack:"sprites" validate:"dive,url"`
	CreatedAt      time.Time `db:"created_at" json:"created_at" msgpack:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at" msgpack:"updated_at"`
}

// NormalizeTimes converts the timestamps of every record to UTC. Drivers and
// decoders may hand back the local zone for the same instant.
func NormalizeTimes(records []Record) {
	for i := range records {
		records[i].normalizeTimes()
	}
}

func (r *Record) normalizeTimes() {
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
}

// HasType reports whether the record carries the type t.
func (r Record) HasType(t string) bool {
	for _, typ := range r.Types {
		if typ == t {
			return true
		}
	}
	return false
}

// Types is the ordered list of type names, stored as a JSON array.
type Types []string

func (t Types) Value() (driver.Value, error) {
	return marshalText([]string(t), "[]")
}

func (t *Types) Scan(src any) error {
	return scanJSON(src, (*[]string)(t))
}

// Abilities is the list of ability names, stored as a JSON array.
type Abilities []string

func (a Abilities) Value() (driver.Value, error) {
	return marshalText([]string(a), "[]")
}

func (a *Abilities) Scan(src any) error {
	return scanJSON(src, (*[]string)(a))
}

// Stats maps a stat name to its base value, stored as a JSON object.
type Stats map[string]int

func (s Stats) Value() (driver.Value, error) {
	return marshalText(map[string]int(s), "{}")
}

func (s *Stats) Scan(src any) error {
	return scanJSON(src, (*map[string]int)(s))
}

// Sprites maps a sprite variant to its URL, stored as a JSON object.
type Sprites map[string]string

func (s Sprites) Value() (driver.Value, error) {
	return marshalText(map[string]string(s), "{}")
}

func (s *Sprites) Scan(src any) error {
	return scanJSON(src, (*map[string]string)(s))
}

func marshalText[T any](v T, empty string) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}

func scanJSON(src any, dst any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}
