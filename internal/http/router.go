package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/docvault/internal/auth"
	"github.com/geocoder89/docvault/internal/config"
	"github.com/geocoder89/docvault/internal/domain/user"
	"github.com/geocoder89/docvault/internal/http/handlers"
	"github.com/geocoder89/docvault/internal/http/middlewares"
	"github.com/geocoder89/docvault/internal/observability"
	"github.com/geocoder89/docvault/internal/repo/memory"
	"github.com/geocoder89/docvault/internal/repo/postgres"
	"github.com/geocoder89/docvault/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type UserStore interface {
	auth.UserStore
	handlers.UserLister
	handlers.Counter
}

type DocumentStore interface {
	handlers.DocumentStore
	handlers.Counter
}

// Deps is everything the router needs, built once at startup.
type Deps struct {
	Users     UserStore
	Documents DocumentStore
	Tokens    *auth.Manager
	Hasher    *security.Hasher

	// named readiness pings, e.g. "postgres", "redis"
	Checks map[string]handlers.Check

	// Registry is served on /metrics. A private one is created when nil.
	Registry *prometheus.Registry
	Prom     *observability.Prom
}

func PostgresStores(pool *pgxpool.Pool, prom *observability.Prom) (UserStore, DocumentStore) {
	return postgres.NewUsersRepo(pool, prom), postgres.NewDocumentsRepo(pool, prom)
}

func MemoryStores() (UserStore, DocumentStore) {
	users := memory.NewUsersRepo()
	return users, memory.NewDocumentsRepo(users)
}

// PoolCheck adapts a pgx pool ping to a readiness check.
func PoolCheck(pool *pgxpool.Pool) handlers.Check {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.Prom == nil {
		deps.Prom = observability.NewProm(deps.Registry)
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(deps.Prom.GinHandleMiddleware())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORS(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health + metrics
	h := handlers.NewHealthHandler(deps.Checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// wire up the auth core
	authSvc := auth.NewService(deps.Users, deps.Hasher, deps.Tokens)
	authMW := middlewares.NewAuthMiddleware(deps.Tokens)

	authHandler := handlers.NewAuthHandler(authSvc, log, deps.Prom)
	usersHandler := handlers.NewUsersHandler(deps.Users, log)
	documentsHandler := handlers.NewDocumentsHandler(deps.Documents, log)
	adminHandler := handlers.NewAdminHandler(deps.Users, deps.Documents, log)

	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// resource routes are open unless AUTH_REQUIRED is set
	resources := r.Group("")
	if cfg.AuthRequired {
		resources.Use(authMW.RequireAuth())
	}

	resources.GET("/users", usersHandler.ListUsers)

	resources.POST("/documents", documentsHandler.CreateDocument)
	resources.GET("/documents", documentsHandler.ListDocuments)
	resources.GET("/documents/:id", documentsHandler.GetDocumentByID)
	resources.PUT("/documents/:id", documentsHandler.UpdateDocumentStatus)
	resources.DELETE("/documents/:id", documentsHandler.DeleteDocument)

	admin := r.Group("/admin", authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin))
	admin.GET("", adminHandler.Panel)

	return r
}
