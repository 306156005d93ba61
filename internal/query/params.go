// Package query serves paginated species listings with search, type filter
// and per-user favorites-first ordering.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/at-ishikawa/pokedex/internal/species"
)

var ErrInvalidSort = errors.New("invalid sort mode")

// Sort is a listing order. It implements pflag.Value.
type Sort string

const (
	SortID             Sort = "id"
	SortName           Sort = "name"
	SortFavoritesFirst Sort = "favorites_first"
)

// Sorts lists the supported sort modes.
var Sorts = []Sort{SortID, SortName, SortFavoritesFirst}

// ParseSort returns the sort mode named s. An empty name is SortID.
func ParseSort(s string) (Sort, error) {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortID:
		return SortID, nil
	case SortName:
		return SortName, nil
	case SortFavoritesFirst:
		return SortFavoritesFirst, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
}

func (s Sort) String() string {
	return string(s)
}

func (s *Sort) Set(value string) error {
	parsed, err := ParseSort(value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Sort) Type() string {
	return "sort"
}

// Params describes one listing request.
type Params struct {
	Search  string
	Type    string
	Sort    Sort
	Page    int
	PerPage int
	// UserID is the requesting user. Only favorites-first uses it.
	UserID string
}

func (p Params) filter() species.Filter {
	return species.Filter{Search: p.Search, Type: p.Type}
}

// Pagination describes where a page sits in the filtered result.
type Pagination struct {
	Page    int  `json:"page" msgpack:"page"`
	PerPage int  `json:"per_page" msgpack:"per_page"`
	Total   int  `json:"total" msgpack:"total"`
	Pages   int  `json:"pages" msgpack:"pages"`
	HasNext bool `json:"has_next" msgpack:"has_next"`
	HasPrev bool `json:"has_prev" msgpack:"has_prev"`
}

func newPagination(page, perPage, total int) Pagination {
	pages := (total + perPage - 1) / perPage
	return Pagination{
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

type Result struct {
	Records    []species.Record `json:"records" msgpack:"records"`
	Pagination Pagination       `json:"pagination" msgpack:"pagination"`
}
