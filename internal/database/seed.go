package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"pressroom/internal/models"
	"pressroom/internal/slug"
)

// SeedAdminEmail is the login of the account created by Seed.
const SeedAdminEmail = "admin@pressroom.local"

type seedCategory struct {
	name        string
	description string
	color       string
}

var seedCategories = []seedCategory{
	{name: "Technology", description: "Latest tech trends and innovations", color: "#3B82F6"},
	{name: "Lifestyle", description: "Tips for better living", color: "#10B981"},
	{name: "Business", description: "Business insights and strategies", color: "#F59E0B"},
	{name: "Health", description: "Health and wellness topics", color: "#EF4444"},
}

const welcomeContent = `## Getting Started

Welcome to Pressroom. Posts are written in Markdown, organized in nested
categories and published when they are ready.

### Key Features

- Role-based access for admins, editors, authors and readers
- Post and category management
- Media library with file uploads
- Dashboard with analytics
- Search and pagination

Log in with the admin account, create a few categories and start writing.`

// Seed populates an empty database with an admin account, a few sample
// categories and a welcome post. Each step is skipped when its table
// already has rows, so Seed is safe to run repeatedly.
func Seed(ctx context.Context, db *sqlx.DB, adminPassword string) error {
	var adminID string
	err := db.GetContext(ctx, &adminID, `SELECT id FROM users WHERE role = 'admin' ORDER BY created_at LIMIT 1`)
	switch {
	case err == nil:
		zap.L().Info("admin user already exists, skipping")
	case errors.Is(err, sql.ErrNoRows):
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed bcrypt: %w", err)
		}
		err = db.GetContext(ctx, &adminID, `
			INSERT INTO users (username, email, password_hash, display_name, role)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, "admin", SeedAdminEmail, string(hash), "Admin User", models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("seed insert admin: %w", err)
		}
		zap.L().Info("database seeded with default admin user", zap.String("email", SeedAdminEmail))
	default:
		return fmt.Errorf("seed check users: %w", err)
	}

	var categoryCount int
	if err := db.GetContext(ctx, &categoryCount, `SELECT COUNT(*) FROM categories`); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if categoryCount == 0 {
		for i, c := range seedCategories {
			_, err := db.ExecContext(ctx, `
				INSERT INTO categories (name, slug, description, color, sort_order, created_by)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, c.name, slug.Generate(c.name), c.description, c.color, i, adminID)
			if err != nil {
				return fmt.Errorf("seed insert category %s: %w", c.name, err)
			}
		}
		zap.L().Info("sample categories created", zap.Int("count", len(seedCategories)))
	}

	var postCount int
	if err := db.GetContext(ctx, &postCount, `SELECT COUNT(*) FROM posts`); err != nil {
		return fmt.Errorf("seed check posts: %w", err)
	}
	if postCount > 0 {
		return nil
	}

	title := "Welcome to Pressroom"
	tags := models.Tags{"cms", "getting-started", "tutorial"}
	_, err = db.ExecContext(ctx, `
		INSERT INTO posts (title, slug, content, excerpt, status, category_id, tags,
		                   author_id, published_at, is_featured, seo_title)
		VALUES ($1, $2, $3, $4, 'published',
		        (SELECT id FROM categories WHERE slug = 'technology'),
		        $5, $6, NOW(), TRUE, $7)
	`, title, slug.Generate(title), welcomeContent, models.DeriveExcerpt(welcomeContent), tags, adminID, title)
	if err != nil {
		return fmt.Errorf("seed insert post: %w", err)
	}
	zap.L().Info("welcome post created")
	return nil
}
