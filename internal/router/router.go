// Package router sets up all HTTP routes and middleware chains for the
// Pressroom API. Routes are grouped by resource; each write route carries
// the role gate of its authorization rule, and handlers apply the
// ownership gate once the resource is loaded.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pressroom/internal/apperr"
	"pressroom/internal/authz"
	"pressroom/internal/handlers"
	"pressroom/internal/metrics"
	"pressroom/internal/middleware"
	"pressroom/internal/render"
)

// Deps carries everything the router wires together. Metrics, RateLimiter
// and UploadDir are optional.
type Deps struct {
	Tokens      middleware.TokenParser
	Users       middleware.UserLoader
	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string
	HSTS        bool
	// UploadDir is served under /uploads when files are stored locally.
	UploadDir string

	Auth       *handlers.Auth
	Posts      *handlers.Posts
	Categories *handlers.Categories
	Media      *handlers.Media
	Dashboard  *handlers.Dashboard
	UserAdmin  *handlers.Users
	Health     *handlers.Health
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middleware.SecureHeaders(d.HSTS))
	r.Use(middleware.CORS(d.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, r, apperr.NotFound("route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusMethodNotAllowed, render.ErrorBody{
			Error:   "MethodNotAllowed",
			Message: r.Method + " is not allowed on " + r.URL.Path,
		})
	})

	r.Get("/health", d.Health.Check)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	if d.UploadDir != "" {
		r.Handle("/uploads/*", uploads(d.UploadDir))
	}

	r.Route("/api", func(r chi.Router) {
		if d.RateLimiter != nil {
			r.Use(d.RateLimiter.Middleware)
		}
		r.Use(middleware.Authenticate(d.Tokens, d.Users))

		r.Get("/health", d.Health.Check)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/logout", d.Auth.Logout)
				r.Get("/me", d.Auth.Me)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Posts.List)
			r.Get("/slug/{slug}", d.Posts.GetBySlug)
			r.Get("/{id}", d.Posts.Get)
			r.Post("/{id}/like", d.Posts.Like)
			r.With(middleware.Require(authz.PostCreate)).Post("/", d.Posts.Create)
			r.With(middleware.Require(authz.PostModify)).Put("/{id}", d.Posts.Update)
			r.With(middleware.Require(authz.PostModify)).Delete("/{id}", d.Posts.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", d.Categories.List)
			r.Get("/hierarchy", d.Categories.Hierarchy)
			r.Get("/slug/{slug}", d.Categories.GetBySlug)
			r.Get("/{id}", d.Categories.Get)
			r.Group(func(r chi.Router) {
				r.Use(middleware.Require(authz.CategoryWrite))
				r.Post("/", d.Categories.Create)
				r.Put("/{id}", d.Categories.Update)
				r.Delete("/{id}", d.Categories.Delete)
			})
		})

		r.Route("/media", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/", d.Media.List)
			r.With(middleware.Require(authz.MediaStats)).Get("/stats", d.Media.Stats)
			r.Get("/{id}", d.Media.Get)
			r.With(middleware.Require(authz.MediaUpload)).Post("/upload", d.Media.Upload)
			r.With(middleware.Require(authz.MediaUpload)).Post("/upload-multiple", d.Media.UploadMany)
			r.Put("/{id}", d.Media.Update)
			r.Delete("/{id}", d.Media.Delete)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.With(middleware.Require(authz.DashboardView)).Get("/stats", d.Dashboard.Stats)
			r.With(middleware.Require(authz.ContentStats)).Get("/content-stats", d.Dashboard.ContentStats)
			r.With(middleware.Require(authz.DashboardView)).Get("/analytics", d.Dashboard.Analytics)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Require(authz.UserAdmin))
			r.Get("/", d.UserAdmin.List)
			r.Put("/{id}/role", d.UserAdmin.SetRole)
			r.Post("/{id}/deactivate", d.UserAdmin.Deactivate)
		})
	})

	return r
}

// uploads serves locally stored files. Directory listings are refused.
func uploads(dir string) http.Handler {
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			render.Error(w, r, apperr.NotFound("file"))
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		files.ServeHTTP(w, r)
	})
}
