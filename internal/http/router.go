package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/geocoder89/bookhub/internal/auth"
	"github.com/geocoder89/bookhub/internal/cache"
	"github.com/geocoder89/bookhub/internal/config"
	"github.com/geocoder89/bookhub/internal/domain/user"
	"github.com/geocoder89/bookhub/internal/http/handlers"
	"github.com/geocoder89/bookhub/internal/http/middlewares"
	"github.com/geocoder89/bookhub/internal/observability"
	"github.com/geocoder89/bookhub/internal/repo/postgres"
)

const maxRequestBody = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// a registry per router so tests can build routers independently
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxRequestBody))
	r.Use(otelgin.Middleware("bookhub-api"))
	r.Use(prom.GinHandleMiddleware())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	booksRepo := postgres.NewBooksRepo(pool, prom)

	// wire up handlers
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager)
	usersHandler := handlers.NewUsersHandler()
	booksHandler := handlers.NewBooksHandler(booksRepo, cache.New(5*time.Second))

	authMW := middlewares.NewAuthMiddleware(jwtManager, usersRepo)

	// public routes
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// any active authenticated user
	protected := r.Group("", authMW.RequireAuth())
	protected.GET("/users/me", usersHandler.Me)
	protected.GET("/books", booksHandler.List)
	protected.GET("/books/:id", booksHandler.GetByID)

	// catalog writes are admin-only
	admin := protected.Group("", authMW.RequireRole(user.RoleAdmin))
	admin.POST("/books", booksHandler.Create)
	admin.PUT("/books/:id", booksHandler.Update)
	admin.DELETE("/books/:id", booksHandler.Delete)

	return r
}
