package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"pressroom/internal/apperr"
	"pressroom/internal/models"
)

// PostFilter narrows a post listing. Nil fields are not filtered on.
type PostFilter struct {
	Status     *models.PostStatus
	CategoryID *uuid.UUID
	AuthorID   *uuid.UUID
	Featured   *bool
	Tag        string
	Search     string
}

// Where renders the filter against the "p" alias.
func (f PostFilter) Where() *Where {
	w := &Where{}
	if f.Status != nil {
		w.Add("p.status = ?", string(*f.Status))
	}
	if f.CategoryID != nil {
		w.Add("p.category_id = ?", *f.CategoryID)
	}
	if f.AuthorID != nil {
		w.Add("p.author_id = ?", *f.AuthorID)
	}
	if f.Featured != nil {
		w.Add("p.is_featured = ?", *f.Featured)
	}
	if f.Tag != "" {
		w.Add("p.tags @> jsonb_build_array(?::text)", f.Tag)
	}
	if f.Search != "" {
		w.Add("p.search_vector @@ plainto_tsquery('english', ?)", f.Search)
	}
	return w
}

// RankOrder returns a relevance ordering for a search, registering the
// search term on w. It returns "" when there is no search.
func (f PostFilter) RankOrder(w *Where) string {
	if f.Search == "" {
		return ""
	}
	return "ts_rank(p.search_vector, plainto_tsquery('english', " + w.Arg(f.Search) + ")) DESC, p.created_at DESC, p.id DESC"
}

// ParsePostFilter reads status, category, author, featured, tag and search
// from query parameters.
func ParsePostFilter(values url.Values) (PostFilter, error) {
	var f PostFilter
	fields := map[string]string{}

	if raw := values.Get("status"); raw != "" {
		s := models.PostStatus(raw)
		if !s.Valid() {
			fields["status"] = "must be one of draft, published, archived"
		} else {
			f.Status = &s
		}
	}
	f.CategoryID = parseUUIDParam(values, "category", fields)
	f.AuthorID = parseUUIDParam(values, "author", fields)
	f.Featured = parseBoolParam(values, "featured", fields)
	f.Tag = strings.TrimSpace(values.Get("tag"))
	f.Search = strings.TrimSpace(values.Get("search"))

	if len(fields) > 0 {
		return PostFilter{}, apperr.Validation(fields)
	}
	return f, nil
}

// MediaFilter narrows a media listing. Inactive (soft-deleted) media is
// excluded unless IncludeInactive is set.
type MediaFilter struct {
	Kind            models.MediaKind
	UploadedBy      *uuid.UUID
	Search          string
	IncludeInactive bool
}

// Where renders the filter against the "m" alias.
func (f MediaFilter) Where() *Where {
	w := &Where{}
	if !f.IncludeInactive {
		w.Add("m.is_active = TRUE")
	}
	if f.Kind != "" {
		MimeKind(w, "m.mimetype", f.Kind)
	}
	if f.UploadedBy != nil {
		w.Add("m.uploaded_by = ?", *f.UploadedBy)
	}
	if f.Search != "" {
		pattern := Contains(f.Search)
		w.Add("(m.original_name ILIKE ? OR m.alt ILIKE ? OR m.caption ILIKE ?)", pattern, pattern, pattern)
	}
	return w
}

// ParseMediaFilter reads type, uploadedBy and search from query parameters.
func ParseMediaFilter(values url.Values) (MediaFilter, error) {
	var f MediaFilter
	fields := map[string]string{}

	if raw := values.Get("type"); raw != "" {
		kind := models.MediaKind(raw)
		if len(kind.Prefixes()) == 0 {
			fields["type"] = "must be one of image, video, audio, document"
		} else {
			f.Kind = kind
		}
	}
	f.UploadedBy = parseUUIDParam(values, "uploadedBy", fields)
	f.Search = strings.TrimSpace(values.Get("search"))

	if len(fields) > 0 {
		return MediaFilter{}, apperr.Validation(fields)
	}
	return f, nil
}

// MimeKind adds a predicate matching column against the kind's prefixes.
func MimeKind(w *Where, column string, kind models.MediaKind) {
	prefixes := kind.Prefixes()
	parts := make([]string, len(prefixes))
	args := make([]any, len(prefixes))
	for i, p := range prefixes {
		parts[i] = column + " LIKE ?"
		args[i] = p + "%"
	}
	w.Add("("+strings.Join(parts, " OR ")+")", args...)
}

// MimeCase renders a CASE expression bucketing column into media kinds,
// for GROUP BY in statistics queries.
func MimeCase(column string) string {
	var b strings.Builder
	b.WriteString("CASE")
	for _, kind := range models.MediaKinds {
		for _, p := range kind.Prefixes() {
			b.WriteString(" WHEN " + column + " LIKE '" + p + "%' THEN '" + string(kind) + "'")
		}
	}
	b.WriteString(" ELSE '" + string(models.MediaKindOther) + "' END")
	return b.String()
}

// CategoryFilter narrows a flat category listing. RootOnly selects
// categories without a parent; ParentID selects children of one category.
// NonEmpty keeps only categories referenced by at least one post.
type CategoryFilter struct {
	RootOnly bool
	ParentID *uuid.UUID
	IsActive *bool
	NonEmpty bool
}

// Where renders the filter against the "c" alias.
func (f CategoryFilter) Where() *Where {
	w := &Where{}
	switch {
	case f.RootOnly:
		w.Add("c.parent_id IS NULL")
	case f.ParentID != nil:
		w.Add("c.parent_id = ?", *f.ParentID)
	}
	if f.IsActive != nil {
		w.Add("c.is_active = ?", *f.IsActive)
	}
	if f.NonEmpty {
		w.Add("EXISTS (SELECT 1 FROM posts p WHERE p.category_id = c.id)")
	}
	return w
}

// ParseCategoryFilter reads parent ("null" for roots) and isActive.
func ParseCategoryFilter(values url.Values) (CategoryFilter, error) {
	var f CategoryFilter
	fields := map[string]string{}

	if raw := values.Get("parent"); raw == "null" {
		f.RootOnly = true
	} else {
		f.ParentID = parseUUIDParam(values, "parent", fields)
	}
	f.IsActive = parseBoolParam(values, "isActive", fields)

	if len(fields) > 0 {
		return CategoryFilter{}, apperr.Validation(fields)
	}
	return f, nil
}

func parseUUIDParam(values url.Values, key string, fields map[string]string) *uuid.UUID {
	raw := values.Get(key)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		fields[key] = "must be a valid id"
		return nil
	}
	return &id
}

func parseBoolParam(values url.Values, key string, fields map[string]string) *bool {
	raw := values.Get(key)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		fields[key] = "must be true or false"
		return nil
	}
	return &b
}
