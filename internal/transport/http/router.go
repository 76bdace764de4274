package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"snapshare/internal/handler"
	"snapshare/internal/httputil"
	"snapshare/internal/metrics"
	"snapshare/internal/model"
	authmw "snapshare/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler        *handler.AuthHandler
	UserHandler        *handler.UserHandler
	FollowHandler      *handler.FollowHandler
	PostHandler        *handler.PostHandler
	InteractionHandler *handler.InteractionHandler
	Tokens             authmw.TokenVerifier
	Logger             logrus.FieldLogger
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(authmw.Logging(cfg.Logger, "/health", "/metrics"))
	r.Use(metrics.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusMethodNotAllowed, model.CodeBadRequest, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	requireAuth := authmw.AuthMiddleware(cfg.Tokens)

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/logout", cfg.AuthHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", cfg.AuthHandler.Me)
			r.Get("/all", cfg.UserHandler.All)
			r.Get("/profile/{id}", cfg.UserHandler.Profile)
			r.Post("/follow/{id}", cfg.FollowHandler.Follow)
			r.Post("/unfollow/{id}", cfg.FollowHandler.Unfollow)
		})
	})

	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/get-posts", cfg.PostHandler.List)
		r.Get("/{id}", cfg.PostHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/create", cfg.PostHandler.Create)
			r.Get("/user-posts", cfg.PostHandler.ListByUser)
			r.Put("/update-post/{id}", cfg.PostHandler.Update)
			r.Delete("/delete-post/{id}", cfg.PostHandler.Delete)

			r.Post("/{id}/like", cfg.InteractionHandler.Like)
			r.Post("/{id}/comment", cfg.InteractionHandler.Comment)
		})
	})

	return r
}
