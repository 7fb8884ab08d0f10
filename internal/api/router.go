package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/invoiceapp/user-management-system/docs"
	"github.com/invoiceapp/user-management-system/internal/api/handler"
	"github.com/invoiceapp/user-management-system/internal/api/middleware"
	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/service"
	mongodb "github.com/invoiceapp/user-management-system/internal/infrastructure/db/mongo"
	redisdb "github.com/invoiceapp/user-management-system/internal/infrastructure/db/redis"
)

// RouterConfig carries the settings the router needs beyond its storage handles.
type RouterConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg RouterConfig, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("useradmin"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	groupRepo := mongodb.NewGroupRepository(db)
	invoiceRepo := mongodb.NewInvoiceRepository(db)
	allocator := redisdb.NewSequenceAllocator(rdb)

	userService := service.NewUserService(userRepo, groupRepo, allocator, log)
	groupService := service.NewGroupService(groupRepo, userRepo, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, log)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)

	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	groupHandler := handler.NewGroupHandler(groupService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)

	authMW := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/api/auth/login", authHandler.Login)
	e.GET("/api/auth/me", authHandler.Me, authMW)

	// --- User routes ---
	users := e.Group("/api/users", authMW)
	users.POST("", userHandler.Create)
	users.GET("", userHandler.List)
	users.GET("/next-id", userHandler.NextID)
	users.GET("/groups", userHandler.Groups)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Group routes (managers only; per-record tier checks run in the service) ---
	groups := e.Group("/api/groups", authMW, middleware.RBAC(domain.RoleSuperAdmin, domain.RoleAdmin))
	groups.POST("", groupHandler.Create)
	groups.GET("", groupHandler.List)
	groups.PUT("/:id", groupHandler.Update)
	groups.DELETE("/:id", groupHandler.Delete)
	groups.POST("/:id/members", groupHandler.AddMember)
	groups.DELETE("/:id/members/:userId", groupHandler.RemoveMember)
	groups.GET("/:id/visible-users", groupHandler.VisibleUsers)

	// --- Invoice routes ---
	invoices := e.Group("/api/invoices", authMW)
	invoices.POST("", invoiceHandler.Create)
	invoices.GET("", invoiceHandler.List)
	invoices.GET("/:id", invoiceHandler.Get)
	invoices.PUT("/:id", invoiceHandler.Update)
	invoices.DELETE("/:id", invoiceHandler.Delete)

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	return e
}
