// store_test.go provides shared fixtures for the store integration tests.
// Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pressroom/internal/database/databasetest"
	"pressroom/internal/models"
)

// testDB returns a migrated database with every table emptied.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db := databasetest.Open(t)
	databasetest.Reset(t, db)
	return db
}

var fixtureSeq atomic.Int64

// newUser inserts an active user with the given role.
func newUser(t *testing.T, db *sqlx.DB, role models.Role) *models.User {
	t.Helper()
	n := fixtureSeq.Add(1)
	u, err := NewUserStore(db).Create(context.Background(), &models.User{
		Username:    fmt.Sprintf("user%d", n),
		Email:       fmt.Sprintf("user%d@store-test.local", n),
		DisplayName: fmt.Sprintf("User %d", n),
		Role:        role,
	}, "password123")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// newCategory inserts an active category directly through the store.
func newCategory(t *testing.T, db *sqlx.DB, name string, parent *uuid.UUID, order int) *models.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Create(context.Background(), &models.Category{
		Name:      name,
		Slug:      fmt.Sprintf("cat-%d", fixtureSeq.Add(1)),
		ParentID:  parent,
		SortOrder: order,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

// postOpts tweaks the defaults of newPost.
type postOpts struct {
	title    string
	content  string
	status   models.PostStatus
	category *uuid.UUID
	tags     models.Tags
	featured bool
}

// newPost inserts a post authored by author.
func newPost(t *testing.T, db *sqlx.DB, author uuid.UUID, o postOpts) *models.Post {
	t.Helper()
	n := fixtureSeq.Add(1)
	if o.title == "" {
		o.title = fmt.Sprintf("Post %d", n)
	}
	if o.content == "" {
		o.content = "Some body text."
	}
	if o.status == "" {
		o.status = models.PostStatusDraft
	}
	p, err := NewPostStore(db).Create(context.Background(), &models.Post{
		Title:      o.title,
		Slug:       fmt.Sprintf("post-%d", n),
		Content:    o.content,
		Excerpt:    models.DeriveExcerpt(o.content),
		Status:     o.status,
		CategoryID: o.category,
		Tags:       o.tags,
		AuthorID:   author,
		IsFeatured: o.featured,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// newMedia inserts an active media record.
func newMedia(t *testing.T, db *sqlx.DB, uploader uuid.UUID, name, mimetype string, size int64) *models.Media {
	t.Helper()
	filename := fmt.Sprintf("%d-%s", fixtureSeq.Add(1), name)
	m, err := NewMediaStore(db).Create(context.Background(), &models.Media{
		Filename:     filename,
		OriginalName: name,
		MimeType:     mimetype,
		Size:         size,
		Path:         "2026/01/" + filename,
		URL:          "/uploads/2026/01/" + filename,
		UploadedBy:   uploader,
	})
	if err != nil {
		t.Fatalf("create media: %v", err)
	}
	return m
}
