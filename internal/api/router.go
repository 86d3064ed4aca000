package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shiftpool/marketplace-api/internal/api/handler"
	"github.com/shiftpool/marketplace-api/internal/api/middleware"
	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
	"github.com/shiftpool/marketplace-api/internal/core/service"
	"github.com/shiftpool/marketplace-api/internal/infrastructure/config"
	mongodb "github.com/shiftpool/marketplace-api/internal/infrastructure/db/mongo"
	redisdb "github.com/shiftpool/marketplace-api/internal/infrastructure/db/redis"
	"github.com/shiftpool/marketplace-api/pkg/passhash"
)

// NewRouter builds the Echo instance with all routes registered. The
// notification queue and service are built by the caller because their
// lifecycles (worker pool, broker connection) outlive any single request.
func NewRouter(
	cfg *config.Config,
	log zerolog.Logger,
	db *mongo.Database,
	rdb *redis.Client,
	notifQueue ports.NotificationQueue,
	notifications ports.NotificationService,
) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	// --- Dependencies ---
	hasher, err := passhash.New(passhash.Params{
		Algorithm:   passhash.Algorithm(cfg.Hash.Algorithm),
		Memory:      cfg.Hash.Argon2Memory,
		Iterations:  cfg.Hash.Argon2Time,
		Parallelism: cfg.Hash.Argon2Lanes,
		BcryptCost:  cfg.Hash.BcryptCost,
	})
	if err != nil {
		return nil, err
	}
	tokens, err := service.NewTokenService(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	if err != nil {
		return nil, err
	}

	users := mongodb.NewUserRepository(db)
	shifts := mongodb.NewShiftRepository(db)
	applications := mongodb.NewApplicationRepository(db)

	guard := redisdb.NewReplayGuard(rdb)
	identityCache := redisdb.NewIdentityCache(rdb)

	authService, err := service.NewAuthService(users, hasher, tokens, guard, identityCache, log)
	if err != nil {
		return nil, err
	}
	identities := service.NewIdentityService(users, identityCache, cfg.Auth.IdentityTTL, log)
	userService := service.NewUserService(users, hasher, guard, identityCache, tokens, log)
	shiftService := service.NewShiftService(shifts, log)
	applicationService := service.NewApplicationService(applications, shifts, notifQueue, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	shiftHandler := handler.NewShiftHandler(shiftService)
	applicationHandler := handler.NewApplicationHandler(applicationService)
	notificationHandler := handler.NewNotificationHandler(notifications)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	authn := middleware.Auth(tokens, identities)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	authLimit := middleware.RateLimitConfig{PerMinute: cfg.RateLimit.AuthPerMinute, Burst: cfg.RateLimit.AuthBurst}

	// --- Probes, metrics, docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Credential endpoints, rate limited per client ---
	auth := e.Group("/v1/auth")
	auth.POST("/register", authHandler.Register, middleware.RateLimit("register", authLimit))
	auth.POST("/login", authHandler.Login, middleware.RateLimit("login", authLimit))
	auth.POST("/refresh", authHandler.Refresh, middleware.RateLimit("refresh", authLimit))
	auth.POST("/logout", authHandler.Logout)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", authn)

	v1.GET("/me", userHandler.Me)
	v1.PUT("/me/password", userHandler.ChangePassword)

	v1.POST("/shifts", shiftHandler.Create)
	v1.GET("/shifts", shiftHandler.List)
	v1.GET("/shifts/:ref", shiftHandler.Get)
	v1.PUT("/shifts/:ref", shiftHandler.Update)
	v1.POST("/shifts/:ref/close", shiftHandler.Close)
	v1.POST("/shifts/:ref/applications", applicationHandler.Apply)

	v1.GET("/applications", applicationHandler.List)
	v1.GET("/applications/:ref", applicationHandler.Get)
	v1.POST("/applications/:ref/accept", applicationHandler.Accept)
	v1.POST("/applications/:ref/reject", applicationHandler.Reject)
	v1.POST("/applications/:ref/withdraw", applicationHandler.Withdraw)

	v1.GET("/notifications", notificationHandler.List)
	v1.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	v1.POST("/notifications/:ref/read", notificationHandler.MarkRead)

	admin := v1.Group("/admin", adminOnly)
	admin.GET("/users", userHandler.List)
	admin.PATCH("/users/:id/flags", userHandler.SetFlags)

	return e, nil
}

// requestLogger emits one structured line per request through the service's
// zerolog logger instead of echo's built-in format.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
