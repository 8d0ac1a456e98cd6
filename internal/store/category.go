// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pressroom/internal/apperr"
	"pressroom/internal/category"
	"pressroom/internal/models"
	"pressroom/internal/query"
)

// CategoryStore manages categories in the database. It is the
// category.Repository used by the tree manager.
type CategoryStore struct {
	db *sqlx.DB
}

var _ category.Repository = (*CategoryStore)(nil)

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sqlx.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `c.id, c.name, c.slug, c.description, c.color, c.parent_id,
	c.sort_order, c.is_active, c.created_by, c.created_at, c.updated_at`

// categoryPostCount is the computed post count for the row aliased c.
const categoryPostCount = `(SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id) AS post_count`

func (s *CategoryStore) findOne(ctx context.Context, op, where string, arg any) (*models.Category, error) {
	var c models.Category
	err := s.db.GetContext(ctx, &c, `SELECT `+categoryColumns+` FROM categories c WHERE `+where, arg)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	return &c, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.findOne(ctx, "find category by id", "c.id = $1", id)
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.findOne(ctx, "find category by slug", "c.slug = $1", slug)
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	var created models.Category
	err := s.db.GetContext(ctx, &created, `
		INSERT INTO categories AS c (name, slug, description, color, parent_id, sort_order, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.Color, c.ParentID, c.SortOrder, c.IsActive, c.CreatedBy,
	)
	if err != nil {
		return nil, storeError("create category", err)
	}
	return &created, nil
}

// Update writes every mutable column of c. Returns nil if the category no
// longer exists.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	var updated models.Category
	err := s.db.GetContext(ctx, &updated, `
		UPDATE categories c SET
			name = $1, slug = $2, description = $3, color = $4, parent_id = $5,
			sort_order = $6, is_active = $7, updated_at = NOW()
		WHERE c.id = $8
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.Color, c.ParentID, c.SortOrder, c.IsActive, c.ID,
	)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("update category", err)
	}
	return &updated, nil
}

// CountPosts returns how many posts reference the category.
func (s *CategoryStore) CountPosts(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts WHERE category_id = $1`, id); err != nil {
		return 0, storeError("count category posts", err)
	}
	return n, nil
}

// Children lists the direct children of a category in display order.
func (s *CategoryStore) Children(ctx context.Context, id uuid.UUID) ([]models.CategoryRef, error) {
	refs := []models.CategoryRef{}
	err := s.db.SelectContext(ctx, &refs, `
		SELECT c.id, c.name, c.slug FROM categories c
		WHERE c.parent_id = $1
		ORDER BY c.sort_order, c.name`, id)
	if err != nil {
		return nil, storeError("list category children", err)
	}
	return refs, nil
}

// DeleteCascade detaches posts and children from the category and deletes
// it in one transaction. The category row is locked before posts are
// counted, so a post cannot be assigned between the check and the delete.
func (s *CategoryStore) DeleteCascade(ctx context.Context, id uuid.UUID, check func(posts int) error) (category.DeleteResult, error) {
	var res category.DeleteResult

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, storeError("begin tx", err)
	}
	defer tx.Rollback()

	var locked uuid.UUID
	if err := tx.GetContext(ctx, &locked, `SELECT id FROM categories WHERE id = $1 FOR UPDATE`, id); err != nil {
		if isNoRows(err) {
			return res, apperr.NotFound("category")
		}
		return res, storeError("lock category", err)
	}
	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts WHERE category_id = $1`, id); err != nil {
		return res, storeError("count category posts", err)
	}
	if err := check(count); err != nil {
		return res, err
	}

	posts, err := tx.ExecContext(ctx, `UPDATE posts SET category_id = NULL, updated_at = NOW() WHERE category_id = $1`, id)
	if err != nil {
		return res, storeError("clear post categories", err)
	}
	children, err := tx.ExecContext(ctx, `UPDATE categories SET parent_id = NULL, updated_at = NOW() WHERE parent_id = $1`, id)
	if err != nil {
		return res, storeError("orphan child categories", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return res, storeError("delete category", err)
	}
	if err := tx.Commit(); err != nil {
		return res, storeError("commit category delete", err)
	}

	res.PostsCleared = rowsAffected(posts)
	res.ChildrenOrphaned = rowsAffected(children)
	return res, nil
}

// ListActive returns every active category with its post count, ordered
// for tree building.
func (s *CategoryStore) ListActive(ctx context.Context) ([]models.CategoryCount, error) {
	items := []models.CategoryCount{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT `+categoryColumns+`, `+categoryPostCount+`
		FROM categories c
		WHERE c.is_active = TRUE
		ORDER BY c.sort_order, c.name, c.id`)
	if err != nil {
		return nil, storeError("list active categories", err)
	}
	return items, nil
}

// List returns a filtered, sorted page of categories with post counts.
func (s *CategoryStore) List(ctx context.Context, f query.CategoryFilter, sort query.Sort, page query.Page) (query.Result[models.CategoryCount], error) {
	w := f.Where()

	var res query.Result[models.CategoryCount]
	if err := s.db.GetContext(ctx, &res.Total, `SELECT COUNT(*) FROM categories c `+w.SQL(), w.Args()...); err != nil {
		return res, storeError("count categories", err)
	}

	pw := w.Clone()
	q := fmt.Sprintf(`SELECT %s, %s FROM categories c %s ORDER BY %s LIMIT %s OFFSET %s`,
		categoryColumns, categoryPostCount, pw.SQL(), query.CategorySorter.OrderBy(sort),
		pw.Arg(page.Limit()), pw.Arg(page.Offset()))
	res.Items = []models.CategoryCount{}
	if err := s.db.SelectContext(ctx, &res.Items, q, pw.Args()...); err != nil {
		return res, storeError("list categories", err)
	}
	return res, nil
}

func rowsAffected(r interface{ RowsAffected() (int64, error) }) int {
	n, err := r.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}
