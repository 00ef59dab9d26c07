package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rumahkopi/api/internal/cache"
	"github.com/rumahkopi/api/internal/config"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/enum"
	"github.com/rumahkopi/api/internal/events"
	"github.com/rumahkopi/api/internal/handler"
	"github.com/rumahkopi/api/internal/logger"
	mw "github.com/rumahkopi/api/internal/middleware"
	"github.com/rumahkopi/api/internal/service"
	"github.com/rumahkopi/api/internal/ws"
)

// Version is reported by /health and set at build time.
var Version = "dev"

// Deps are the long-lived components the routes are built from.
type Deps struct {
	Queries *database.Queries
	Pool    *pgxpool.Pool
	Hub     *ws.Hub
	// Menu serves the public menu. Nil reads straight from the database.
	Menu    *cache.MenuCache
	Events  events.Publisher
	Metrics *mw.Metrics
	Logger  *logger.Logger
}

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, d Deps) chi.Router {
	if d.Logger == nil {
		d.Logger = logger.Global()
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}

	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(d.Logger))
	r.Use(mw.Recoverer(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"` + Version + `"}`))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, cfg.JWTSecret, w, r)
	})

	// --- Services ---
	menu := d.Menu
	if menu == nil {
		menu = cache.NewMenuCache(d.Queries, nil, 0)
	}

	adminService := service.NewAdminService(d.Queries, menu, d.Events)
	orderService := service.NewOrderService(d.Pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, d.Events)
	reservationService := service.NewReservationService(d.Pool, func(db database.DBTX) service.ReservationStore {
		return database.New(db)
	}, d.Events)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Queries, cfg.JWTSecret)
	menuHandler := handler.NewMenuHandler(d.Queries, menu, adminService)
	packageHandler := handler.NewPackageHandler(d.Queries, adminService)
	orderHandler := handler.NewOrderHandler(orderService, d.Queries)
	reservationHandler := handler.NewReservationHandler(reservationService, d.Queries)
	reviewHandler := handler.NewReviewHandler(d.Queries, d.Events)
	userHandler := handler.NewUserHandler(d.Queries, adminService)
	summaryHandler := handler.NewSummaryHandler(d.Queries)

	// Public routes
	authHandler.RegisterRoutes(r)
	menuHandler.RegisterRoutes(r)
	packageHandler.RegisterRoutes(r)
	reviewHandler.RegisterPublicRoutes(r)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		userHandler.RegisterRoutes(r)
		orderHandler.RegisterRoutes(r)
		reservationHandler.RegisterRoutes(r)
		reviewHandler.RegisterRoutes(r)

		// Dashboard routes (admin and staff)
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleStaff))

			menuHandler.RegisterAdminRoutes(r)
			packageHandler.RegisterAdminRoutes(r)
			orderHandler.RegisterAdminRoutes(r)
			reservationHandler.RegisterAdminRoutes(r)
			reviewHandler.RegisterAdminRoutes(r)
			summaryHandler.RegisterAdminRoutes(r)

			// Account management is admin-only
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				userHandler.RegisterAdminRoutes(r)
			})
		})
	})

	d.Logger.WithComponent("router").Info("router initialized")
	return r
}
