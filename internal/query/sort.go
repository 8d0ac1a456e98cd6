package query

import (
	"fmt"
	"sort"
	"strings"

	"pressroom/internal/apperr"
)

// Sort is a validated ORDER BY column and direction.
type Sort struct {
	Column string
	Desc   bool
}

// Sorter whitelists the sort keys a list accepts. Keys map to qualified
// SQL columns. Secondary (ascending) and Tiebreak follow the primary
// column so that pages stay stable when the primary has duplicates.
type Sorter struct {
	Columns   map[string]string
	Default   Sort
	Secondary string
	Tiebreak  string
}

// Parse reads "-field" (descending) or "field" (ascending). An empty
// string returns the default. Unknown keys are a validation failure.
func (s Sorter) Parse(raw string) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.Default, nil
	}
	desc := strings.HasPrefix(raw, "-")
	key := strings.TrimLeft(raw, "-+")
	column, ok := s.Columns[key]
	if !ok {
		return Sort{}, apperr.Invalid("sort", fmt.Sprintf("unknown sort key %q (allowed: %s)", key, s.keys()))
	}
	return Sort{Column: column, Desc: desc}, nil
}

// OrderBy renders the ORDER BY clause body for sort.
func (s Sorter) OrderBy(sort Sort) string {
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	parts := []string{sort.Column + " " + dir}
	if s.Secondary != "" && s.Secondary != sort.Column {
		parts = append(parts, s.Secondary+" ASC")
	}
	if s.Tiebreak != "" && s.Tiebreak != sort.Column {
		parts = append(parts, s.Tiebreak+" "+dir)
	}
	return strings.Join(parts, ", ")
}

func (s Sorter) keys() string {
	keys := make([]string, 0, len(s.Columns))
	for k := range s.Columns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

// PostSorter accepts both camelCase and snake_case keys.
var PostSorter = Sorter{
	Columns: map[string]string{
		"createdAt":    "p.created_at",
		"created_at":   "p.created_at",
		"updatedAt":    "p.updated_at",
		"updated_at":   "p.updated_at",
		"publishedAt":  "p.published_at",
		"published_at": "p.published_at",
		"title":        "p.title",
		"views":        "p.views",
		"likes":        "p.likes",
	},
	Default:  Sort{Column: "p.created_at", Desc: true},
	Tiebreak: "p.id",
}

var MediaSorter = Sorter{
	Columns: map[string]string{
		"createdAt":     "m.created_at",
		"created_at":    "m.created_at",
		"originalName":  "m.original_name",
		"original_name": "m.original_name",
		"size":          "m.size",
		"mimetype":      "m.mimetype",
	},
	Default:  Sort{Column: "m.created_at", Desc: true},
	Tiebreak: "m.id",
}

// CategorySorter orders by (sort_order, name) unless told otherwise.
var CategorySorter = Sorter{
	Columns: map[string]string{
		"order":      "c.sort_order",
		"name":       "c.name",
		"createdAt":  "c.created_at",
		"created_at": "c.created_at",
	},
	Default:   Sort{Column: "c.sort_order"},
	Secondary: "c.name",
	Tiebreak:  "c.id",
}

var UserSorter = Sorter{
	Columns: map[string]string{
		"createdAt":  "u.created_at",
		"created_at": "u.created_at",
		"username":   "u.username",
		"email":      "u.email",
	},
	Default:  Sort{Column: "u.created_at", Desc: true},
	Tiebreak: "u.id",
}
