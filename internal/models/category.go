// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a node in the category tree. The tree is stored as
// an adjacency list: each row only knows its parent.
type Category struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Slug        string     `db:"slug" json:"slug"`
	Description string     `db:"description" json:"description"`
	Color       *string    `db:"color" json:"color,omitempty"`
	ParentID    *uuid.UUID `db:"parent_id" json:"parent_id"`
	SortOrder   int        `db:"sort_order" json:"sort_order"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	CreatedBy   *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Ref returns the short reference used when a category is embedded in
// another record.
func (c *Category) Ref() CategoryRef {
	return CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

// CategoryRef is a lightweight projection of a category.
type CategoryRef struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
	Slug string    `db:"slug" json:"slug"`
}

// CategoryCount pairs a category with the number of posts referencing it.
type CategoryCount struct {
	Category
	PostCount int `db:"post_count" json:"post_count"`
}

// CategoryNode is one level of a materialized hierarchy.
type CategoryNode struct {
	Category
	PostCount int            `json:"post_count"`
	Children  []CategoryNode `json:"children"`
}

// CategoryDetail is a single category with its computed relations resolved.
type CategoryDetail struct {
	Category
	Parent    *CategoryRef  `json:"parent,omitempty"`
	Children  []CategoryRef `json:"children"`
	PostCount int           `json:"post_count"`
}
