package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"pressroom/internal/models"
	"pressroom/internal/query"
)

// StatsStore runs the aggregate queries behind the dashboard.
type StatsStore struct {
	db    *sqlx.DB
	media *MediaStore
}

// NewStatsStore creates a new StatsStore with the given database connection.
func NewStatsStore(db *sqlx.DB) *StatsStore {
	return &StatsStore{db: db, media: NewMediaStore(db)}
}

const (
	recentWindow   = "30 days"
	dashboardLimit = 5
	topCategories  = 10
)

// Dashboard gathers the staff overview. The independent queries run
// concurrently.
func (s *StatsStore) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var st models.DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.db.GetContext(ctx, &st.Posts, `
			SELECT COUNT(*) AS total,
			       COUNT(*) FILTER (WHERE status = 'published') AS published,
			       COUNT(*) FILTER (WHERE status = 'draft') AS draft,
			       COUNT(*) FILTER (WHERE status = 'archived') AS archived,
			       COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '`+recentWindow+`') AS recent
			FROM posts`)
		return storeError("post counts", err)
	})
	g.Go(func() error {
		err := s.db.GetContext(ctx, &st.Categories, `SELECT COUNT(*) FROM categories WHERE is_active = TRUE`)
		return storeError("category count", err)
	})
	g.Go(func() error {
		err := s.db.GetContext(ctx, &st.Users, `
			SELECT COUNT(*) AS total,
			       COUNT(*) FILTER (WHERE is_active) AS active,
			       COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '`+recentWindow+`') AS recent
			FROM users`)
		return storeError("user counts", err)
	})
	var byRole []models.RoleCount
	g.Go(func() error {
		byRole = []models.RoleCount{}
		err := s.db.SelectContext(ctx, &byRole, `
			SELECT role, COUNT(*) AS count FROM users GROUP BY role ORDER BY role`)
		return storeError("users by role", err)
	})
	g.Go(func() error {
		var err error
		st.Media, err = s.media.Stats(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		st.RecentPosts, err = s.postSummaries(ctx, "recent posts",
			query.PostFilter{Status: statusPtr(models.PostStatusPublished)}, "p.published_at DESC NULLS LAST, p.id DESC")
		return err
	})
	g.Go(func() error {
		var err error
		st.PopularPosts, err = s.postSummaries(ctx, "popular posts",
			query.PostFilter{Status: statusPtr(models.PostStatusPublished)}, "p.views DESC, p.id DESC")
		return err
	})
	g.Go(func() error {
		st.TopCategories = []models.CategoryStat{}
		err := s.db.SelectContext(ctx, &st.TopCategories, `
			SELECT c.id, c.name, c.slug, COUNT(p.id) AS post_count
			FROM categories c
			LEFT JOIN posts p ON p.category_id = c.id
			WHERE c.is_active = TRUE
			GROUP BY c.id
			ORDER BY post_count DESC, c.name
			LIMIT $1`, topCategories)
		return storeError("top categories", err)
	})
	g.Go(func() error {
		var err error
		st.PostGrowthTrend, err = s.series(ctx, query.Analytics{Type: query.AnalyticsPosts, Period: 30})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	st.Users.ByRole = byRole
	return &st, nil
}

// ContentStats summarizes posts authored by author, or all posts when
// author is nil.
func (s *StatsStore) ContentStats(ctx context.Context, author *uuid.UUID) (*models.ContentStats, error) {
	f := query.PostFilter{AuthorID: author}
	w := f.Where()

	var st models.ContentStats
	err := s.db.GetContext(ctx, &st, `
		SELECT COUNT(*) AS total_posts,
		       COUNT(*) FILTER (WHERE p.status = 'draft') AS drafts,
		       COUNT(*) FILTER (WHERE p.status = 'published') AS published,
		       COALESCE(SUM(p.views), 0)::bigint AS total_views,
		       COALESCE(SUM(p.likes), 0)::bigint AS total_likes
		FROM posts p `+w.SQL(), w.Args()...)
	if err != nil {
		return nil, storeError("content stats", err)
	}

	st.TopPosts, err = s.postSummaries(ctx, "top content", f, "p.views DESC, p.id DESC")
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Analytics returns a daily series of newly created records. Days with no
// records are omitted.
func (s *StatsStore) Analytics(ctx context.Context, a query.Analytics) ([]models.DayCount, error) {
	return s.series(ctx, a)
}

func (s *StatsStore) series(ctx context.Context, a query.Analytics) ([]models.DayCount, error) {
	var q string
	switch a.Type {
	case query.AnalyticsUsers:
		q = `SELECT created_at::date AS day, COUNT(*) AS count, NULL::bigint AS total_size
			FROM users WHERE created_at >= NOW() - make_interval(days => $1)
			GROUP BY day ORDER BY day`
	case query.AnalyticsMedia:
		q = `SELECT created_at::date AS day, COUNT(*) AS count, SUM(size)::bigint AS total_size
			FROM media WHERE is_active = TRUE AND created_at >= NOW() - make_interval(days => $1)
			GROUP BY day ORDER BY day`
	default:
		q = `SELECT created_at::date AS day, COUNT(*) AS count, NULL::bigint AS total_size
			FROM posts WHERE created_at >= NOW() - make_interval(days => $1)
			GROUP BY day ORDER BY day`
	}

	points := []models.DayCount{}
	if err := s.db.SelectContext(ctx, &points, q, a.Period); err != nil {
		return nil, storeError(fmt.Sprintf("%s analytics", a.Type), err)
	}
	return points, nil
}

func (s *StatsStore) postSummaries(ctx context.Context, op string, f query.PostFilter, orderBy string) ([]models.PostSummary, error) {
	w := f.Where()
	q := fmt.Sprintf(`%s %s ORDER BY %s LIMIT %s`, postViewSelect, w.SQL(), orderBy, w.Arg(dashboardLimit))

	var rows []postRow
	if err := s.db.SelectContext(ctx, &rows, q, w.Args()...); err != nil {
		return nil, storeError(op, err)
	}
	out := make([]models.PostSummary, len(rows))
	for i := range rows {
		v := rows[i].view()
		out[i] = v.Summary()
	}
	return out, nil
}

func statusPtr(s models.PostStatus) *models.PostStatus {
	return &s
}
