// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pressroom/internal/apperr"
	"pressroom/internal/models"
	"pressroom/internal/query"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sqlx.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sqlx.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `p.id, p.title, p.slug, p.content, p.excerpt, p.featured_image, p.status,
	p.category_id, p.tags, p.author_id, p.published_at, p.views, p.likes, p.is_featured,
	p.allow_comments, p.seo_title, p.seo_description, p.seo_keywords, p.created_at, p.updated_at`

// postViewSelect joins the author and category summaries onto each post.
const postViewSelect = `SELECT ` + postColumns + `,
	u.username AS author_username, u.display_name AS author_display_name,
	cat.name AS category_name, cat.slug AS category_slug
FROM posts p
LEFT JOIN users u ON u.id = p.author_id
LEFT JOIN categories cat ON cat.id = p.category_id`

// postRow is a post with the joined columns of postViewSelect.
type postRow struct {
	models.Post
	AuthorUsername    sql.NullString `db:"author_username"`
	AuthorDisplayName sql.NullString `db:"author_display_name"`
	CategoryName      sql.NullString `db:"category_name"`
	CategorySlug      sql.NullString `db:"category_slug"`
}

func (r *postRow) view() models.PostView {
	v := models.PostView{Post: r.Post, ReadingTime: r.Post.ReadingTime()}
	if r.AuthorUsername.Valid {
		v.Author = &models.UserSummary{
			ID:          r.AuthorID,
			Username:    r.AuthorUsername.String,
			DisplayName: r.AuthorDisplayName.String,
		}
	}
	if r.CategoryID != nil && r.CategoryName.Valid {
		v.Category = &models.CategoryRef{
			ID:   *r.CategoryID,
			Name: r.CategoryName.String,
			Slug: r.CategorySlug.String,
		}
	}
	return v
}

func (s *PostStore) findOne(ctx context.Context, op, where string, arg any) (*models.Post, error) {
	var p models.Post
	err := s.db.GetContext(ctx, &p, `SELECT `+postColumns+` FROM posts p WHERE `+where, arg)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	return &p, nil
}

// FindByID retrieves a post by ID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.findOne(ctx, "find post by id", "p.id = $1", id)
}

// FindBySlug retrieves a post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findOne(ctx, "find post by slug", "p.slug = $1", slug)
}

// View loads a post with its author and category summaries. Returns nil
// if not found.
func (s *PostStore) View(ctx context.Context, id uuid.UUID) (*models.PostView, error) {
	var row postRow
	err := s.db.GetContext(ctx, &row, postViewSelect+` WHERE p.id = $1`, id)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("view post", err)
	}
	v := row.view()
	return &v, nil
}

// SlugTaken reports whether any post already uses slug.
func (s *PostStore) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var taken bool
	if err := s.db.GetContext(ctx, &taken, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug); err != nil {
		return false, storeError("check post slug", err)
	}
	return taken, nil
}

// Create inserts a new post and returns it.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	var created models.Post
	err := s.db.GetContext(ctx, &created, `
		INSERT INTO posts AS p (title, slug, content, excerpt, featured_image, status, category_id,
			tags, author_id, published_at, is_featured, allow_comments,
			seo_title, seo_description, seo_keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Content, p.Excerpt, p.FeaturedImage, p.Status, p.CategoryID,
		p.Tags, p.AuthorID, p.PublishedAt, p.IsFeatured, p.AllowComments,
		p.SEOTitle, p.SEODescription, p.SEOKeywords,
	)
	if err != nil {
		return nil, storeError("create post", err)
	}
	return &created, nil
}

// Update writes the editable columns of p. The slug, author and counters
// are never changed here. Returns nil if the post no longer exists.
func (s *PostStore) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	var updated models.Post
	err := s.db.GetContext(ctx, &updated, `
		UPDATE posts p SET
			title = $1, content = $2, excerpt = $3, featured_image = $4, status = $5,
			category_id = $6, tags = $7, published_at = $8, is_featured = $9,
			allow_comments = $10, seo_title = $11, seo_description = $12,
			seo_keywords = $13, updated_at = NOW()
		WHERE p.id = $14
		RETURNING `+postColumns,
		p.Title, p.Content, p.Excerpt, p.FeaturedImage, p.Status,
		p.CategoryID, p.Tags, p.PublishedAt, p.IsFeatured,
		p.AllowComments, p.SEOTitle, p.SEODescription,
		p.SEOKeywords, p.ID,
	)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("update post", err)
	}
	return &updated, nil
}

// Delete removes a post. It reports false if nothing was deleted.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, storeError("delete post", err)
	}
	return rowsAffected(res) > 0, nil
}

// IncrementViews adds one view in a single statement and returns the new
// total. Concurrent calls never lose an increment.
func (s *PostStore) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.increment(ctx, "increment views", "views", id)
}

// IncrementLikes adds one like and returns the new total.
func (s *PostStore) IncrementLikes(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.increment(ctx, "increment likes", "likes", id)
}

func (s *PostStore) increment(ctx context.Context, op, column string, id uuid.UUID) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n,
		`UPDATE posts SET `+column+` = `+column+` + 1 WHERE id = $1 RETURNING `+column, id)
	if isNoRows(err) {
		return 0, apperr.NotFound("post")
	}
	if err != nil {
		return 0, storeError(op, err)
	}
	return n, nil
}

// List returns a filtered page of posts with author and category
// summaries. A nil sort orders search results by relevance and everything
// else newest first.
func (s *PostStore) List(ctx context.Context, f query.PostFilter, sort *query.Sort, page query.Page) (query.Result[models.PostView], error) {
	w := f.Where()

	var res query.Result[models.PostView]
	if err := s.db.GetContext(ctx, &res.Total, `SELECT COUNT(*) FROM posts p `+w.SQL(), w.Args()...); err != nil {
		return res, storeError("count posts", err)
	}

	pw := w.Clone()
	var orderBy string
	switch {
	case sort != nil:
		orderBy = query.PostSorter.OrderBy(*sort)
	case f.Search != "":
		orderBy = f.RankOrder(pw)
	default:
		orderBy = query.PostSorter.OrderBy(query.PostSorter.Default)
	}
	q := fmt.Sprintf(`%s %s ORDER BY %s LIMIT %s OFFSET %s`,
		postViewSelect, pw.SQL(), orderBy, pw.Arg(page.Limit()), pw.Arg(page.Offset()))

	var rows []postRow
	if err := s.db.SelectContext(ctx, &rows, q, pw.Args()...); err != nil {
		return res, storeError("list posts", err)
	}
	res.Items = make([]models.PostView, len(rows))
	for i := range rows {
		res.Items[i] = rows[i].view()
	}
	return res, nil
}
