package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rrens/floorboard/internal/api/handler"
	customMiddleware "github.com/Rrens/floorboard/internal/api/middleware"
	"github.com/Rrens/floorboard/internal/config"
	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/livesync"
	"github.com/Rrens/floorboard/internal/security"
	"github.com/Rrens/floorboard/internal/service"
)

// Deps are the components the router wires into handlers
type Deps struct {
	Adapter     *livesync.Adapter
	Objects     domain.ObjectStore
	JWT         *security.JWTManager
	Admins      *security.AdminList
	Auth        *service.AuthService
	Catalog     *service.CatalogService
	Dashboard   *service.DashboardService
	Overseas    *service.OverseasService
	Views       *service.ViewService
	RateLimiter customMiddleware.Limiter
	// Ready lists backing stores checked by /ready.
	Ready map[string]handler.Pinger
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	maxUpload := cfg.Uploads.MaxBytes

	authHandler := handler.NewAuthHandler(deps.Auth)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog, deps.Dashboard, maxUpload)
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboard)
	overseasHandler := handler.NewOverseasHandler(deps.Overseas, maxUpload)
	viewHandler := handler.NewViewHandler(deps.Views)
	objectHandler := handler.NewObjectHandler(deps.Objects)
	streamHandler := handler.NewStreamHandler(deps.Adapter)

	authMiddleware := customMiddleware.NewAuthMiddleware(deps.JWT)
	limit := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		limit = customMiddleware.NewRateLimitMiddleware(deps.RateLimiter).Limit
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Long-lived, so outside the request timeout.
		r.Get("/stream", streamHandler.Stream)

		r.Group(func(r chi.Router) {
			if cfg.Server.MiddlewareTimeout > 0 {
				r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
			}

			r.Get("/health", handler.HealthCheck)
			r.Get("/ready", handler.ReadyCheck(deps.Adapter.Ready(), deps.Ready))

			r.Route("/auth", func(r chi.Router) {
				r.With(limit).Post("/register", authHandler.Register)
				r.With(limit).Post("/login", authHandler.Login)
				r.With(limit).Post("/refresh", authHandler.Refresh)
				r.With(authMiddleware.Authenticate).Get("/me", authHandler.Me)
			})

			// Dashboard (public)
			r.Group(func(r chi.Router) {
				r.Use(limit)

				r.Get("/brands", catalogHandler.Brands)
				r.Get("/colors", catalogHandler.Colors)
				r.Get("/sidebar", catalogHandler.Sidebar)

				r.Route("/workspaces/{workspaceID}", func(r chi.Router) {
					r.Get("/zones", dashboardHandler.Zones)
					r.Get("/overlay", dashboardHandler.Overlay)
					r.Get("/calendar", dashboardHandler.Calendar)
				})

				r.Get("/overseas", dashboardHandler.Overseas)
				r.Get("/overseas/calendar", dashboardHandler.OverseasCalendar)

				r.Post("/views", viewHandler.Create)
				r.Route("/views/{viewID}", func(r chi.Router) {
					r.Get("/", viewHandler.Get)
					r.Delete("/", viewHandler.Delete)
					r.Post("/events", viewHandler.ApplyEvent)
				})

				r.Get("/objects/*", objectHandler.Get)
			})

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Use(limit)
				r.Use(customMiddleware.RequireAdmin(deps.Admins))

				r.Get("/snapshot", streamHandler.Snapshot)

				r.Route("/categories", func(r chi.Router) {
					r.Post("/", catalogHandler.CreateCategory)
					r.Patch("/{categoryID}", catalogHandler.RenameCategory)
					r.Delete("/{categoryID}", catalogHandler.DeleteCategory)
				})

				r.Route("/workspaces", func(r chi.Router) {
					r.Post("/", catalogHandler.CreateWorkspace)
					r.Route("/{workspaceID}", func(r chi.Router) {
						r.Patch("/", catalogHandler.UpdateWorkspace)
						r.Delete("/", catalogHandler.DeleteWorkspace)
						r.Put("/plan", catalogHandler.UploadPlan)
						r.Post("/drag", dashboardHandler.DragRect)
					})
				})

				r.Route("/zones", func(r chi.Router) {
					r.Post("/", catalogHandler.CreateZone)
					r.Put("/{zoneID}", catalogHandler.UpdateZone)
					r.Delete("/{zoneID}", catalogHandler.DeleteZone)
				})

				r.Route("/overseas", func(r chi.Router) {
					r.Post("/", overseasHandler.Create)
					r.Route("/{workID}", func(r chi.Router) {
						r.Put("/", overseasHandler.Update)
						r.Delete("/", overseasHandler.Delete)
						r.Post("/attachments", overseasHandler.AddAttachment)
					})
				})

				r.Put("/settings/sidebar", catalogHandler.SaveSidebar)
				r.Patch("/settings/sidebar/order", catalogHandler.MoveSidebar)
			})
		})
	})

	return r
}
