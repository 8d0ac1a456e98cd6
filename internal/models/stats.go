package models

import (
	"time"

	"github.com/google/uuid"
)

// PostSummary is the short form of a post used in dashboard lists.
type PostSummary struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Status      PostStatus   `json:"status"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
	Views       int64        `json:"views"`
	Likes       int64        `json:"likes"`
	Author      *UserSummary `json:"author,omitempty"`
	Category    *CategoryRef `json:"category,omitempty"`
}

// Summary shortens a post view for listing.
func (v *PostView) Summary() PostSummary {
	return PostSummary{
		ID:          v.ID,
		Title:       v.Title,
		Slug:        v.Slug,
		Status:      v.Status,
		PublishedAt: v.PublishedAt,
		Views:       v.Views,
		Likes:       v.Likes,
		Author:      v.Author,
		Category:    v.Category,
	}
}

// PostCounts breaks posts down by status. Recent counts posts created in
// the last 30 days.
type PostCounts struct {
	Total     int `db:"total" json:"total"`
	Published int `db:"published" json:"published"`
	Draft     int `db:"draft" json:"draft"`
	Archived  int `db:"archived" json:"archived"`
	Recent    int `db:"recent" json:"recent"`
}

// RoleCount is the number of users holding a role.
type RoleCount struct {
	Role  Role `db:"role" json:"role"`
	Count int  `db:"count" json:"count"`
}

// UserCounts summarizes accounts. Recent counts sign-ups in the last 30 days.
type UserCounts struct {
	Total  int         `db:"total" json:"total"`
	Active int         `db:"active" json:"active"`
	Recent int         `db:"recent" json:"recent"`
	ByRole []RoleCount `db:"-" json:"by_role"`
}

// CategoryStat is a category ranked by how many posts use it.
type CategoryStat struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	PostCount int       `db:"post_count" json:"post_count"`
}

// DayCount is one bucket of a daily time series. TotalSize is only set
// for media series.
type DayCount struct {
	Date      time.Time `db:"day" json:"date"`
	Count     int       `db:"count" json:"count"`
	TotalSize *int64    `db:"total_size" json:"total_size,omitempty"`
}

// DashboardStats is the staff dashboard overview.
type DashboardStats struct {
	Posts           PostCounts     `json:"posts"`
	Categories      int            `json:"categories"`
	Users           UserCounts     `json:"users"`
	Media           MediaStats     `json:"media"`
	RecentPosts     []PostSummary  `json:"recent_posts"`
	PopularPosts    []PostSummary  `json:"popular_posts"`
	TopCategories   []CategoryStat `json:"top_categories"`
	PostGrowthTrend []DayCount     `json:"post_growth_trend"`
}

// ContentStats summarizes the posts of one author, or of everyone for
// admins.
type ContentStats struct {
	TotalPosts int           `db:"total_posts" json:"total_posts"`
	Drafts     int           `db:"drafts" json:"drafts"`
	Published  int           `db:"published" json:"published"`
	TotalViews int64         `db:"total_views" json:"total_views"`
	TotalLikes int64         `db:"total_likes" json:"total_likes"`
	TopPosts   []PostSummary `db:"-" json:"top_posts"`
}
