// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

const (
	// excerptLength is how many characters of stripped content make up a
	// derived excerpt.
	excerptLength = 200

	wordsPerMinute = 200
)

// Post is a piece of authored content. AuthorID is the immutable owner.
type Post struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Title          string     `db:"title" json:"title"`
	Slug           string     `db:"slug" json:"slug"`
	Content        string     `db:"content" json:"content"`
	Excerpt        string     `db:"excerpt" json:"excerpt"`
	FeaturedImage  *string    `db:"featured_image" json:"featured_image,omitempty"`
	Status         PostStatus `db:"status" json:"status"`
	CategoryID     *uuid.UUID `db:"category_id" json:"category_id"`
	Tags           Tags       `db:"tags" json:"tags"`
	AuthorID       uuid.UUID  `db:"author_id" json:"author_id"`
	PublishedAt    *time.Time `db:"published_at" json:"published_at,omitempty"`
	Views          int64      `db:"views" json:"views"`
	Likes          int64      `db:"likes" json:"likes"`
	IsFeatured     bool       `db:"is_featured" json:"is_featured"`
	AllowComments  bool       `db:"allow_comments" json:"allow_comments"`
	SEOTitle       string     `db:"seo_title" json:"seo_title"`
	SEODescription string     `db:"seo_description" json:"seo_description"`
	SEOKeywords    Tags       `db:"seo_keywords" json:"seo_keywords"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// IsPublished returns true if the post is published and its publish date
// is not in the future.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished && p.PublishedAt != nil && !p.PublishedAt.After(time.Now())
}

// ReadingTime estimates minutes needed to read the content.
func (p *Post) ReadingTime() int {
	words := len(strings.Fields(p.Content))
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// OwnerOf resolves the owner field used by the authorization policy.
func (p *Post) OwnerOf(field string) (uuid.UUID, bool) {
	if field == "author" {
		return p.AuthorID, true
	}
	return uuid.Nil, false
}

// PostView is the response shape for a post with its related summaries.
type PostView struct {
	Post
	Author      *UserSummary `json:"author,omitempty"`
	Category    *CategoryRef `json:"category,omitempty"`
	ReadingTime int          `json:"reading_time"`
	ContentHTML string       `json:"content_html,omitempty"`
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// DeriveExcerpt builds an excerpt from post content: tags are stripped,
// the first 200 characters kept, and an ellipsis appended when the
// original content was longer.
func DeriveExcerpt(content string) string {
	stripped := htmlTag.ReplaceAllString(content, "")
	if utf8.RuneCountInString(stripped) > excerptLength {
		stripped = string([]rune(stripped)[:excerptLength])
	}
	excerpt := strings.TrimSpace(stripped)
	if utf8.RuneCountInString(content) > excerptLength {
		excerpt += "..."
	}
	return excerpt
}

// Tags is a set of short labels stored as a JSON array.
type Tags []string

// Value implements driver.Valuer. The array is sent as JSON text.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan tags: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan tags: %w", err)
	}
	*t = Tags(out)
	return nil
}

// Normalize trims every tag, drops empty ones and removes duplicates
// while keeping the first occurrence order.
func (t Tags) Normalize() Tags {
	seen := make(map[string]bool, len(t))
	out := make(Tags, 0, len(t))
	for _, tag := range t {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
