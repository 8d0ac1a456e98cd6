package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"pressroom/internal/cache"
	"pressroom/internal/middleware"
	"pressroom/internal/models"
	"pressroom/internal/query"
	"pressroom/internal/render"
)

// StatsReader runs the dashboard aggregates.
type StatsReader interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
	ContentStats(ctx context.Context, author *uuid.UUID) (*models.ContentStats, error)
	Analytics(ctx context.Context, a query.Analytics) ([]models.DayCount, error)
}

// Dashboard groups the statistics endpoints.
type Dashboard struct {
	stats StatsReader
	cache *cache.JSONCache
}

// NewDashboard creates a new Dashboard handler group. cache may be nil.
func NewDashboard(stats StatsReader, c *cache.JSONCache) *Dashboard {
	return &Dashboard{stats: stats, cache: c}
}

// Stats returns the staff overview. The aggregate is cached until content
// changes or the TTL runs out.
func (h *Dashboard) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := cache.Fetch(r.Context(), h.cache, cache.KeyDashboard, h.stats.Dashboard)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, st)
}

// ContentStats summarizes the caller's own posts. Admins see every post.
func (h *Dashboard) ContentStats(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	var author *uuid.UUID
	if !user.IsAdmin() {
		author = &user.ID
	}
	st, err := h.stats.ContentStats(r.Context(), author)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, st)
}

// Analytics returns a daily series of new posts, users or media.
func (h *Dashboard) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := query.ParseAnalytics(r.URL.Query())
	if err != nil {
		render.Error(w, r, err)
		return
	}
	points, err := h.stats.Analytics(r.Context(), a)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, struct {
		Type   query.AnalyticsType `json:"type"`
		Period int                 `json:"period"`
		Points []models.DayCount   `json:"points"`
	}{Type: a.Type, Period: a.Period, Points: points})
}
