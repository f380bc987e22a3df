package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/tiu-access/visit-access/internal/api/handler"
	"github.com/tiu-access/visit-access/internal/api/middleware"
	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

// Services are the core services the HTTP layer drives.
type Services struct {
	Auth        ports.AuthService
	Accounts    ports.AccountService
	Roles       ports.RoleService
	Requests    ports.RequestService
	Credentials handler.CredentialLookup
}

type RouterOptions struct {
	JWTSecret string
	// Health lists the readiness checks by dependency name.
	Health map[string]handler.Check
	Logger zerolog.Logger
	// Registerer receives the HTTP request metrics. Defaults to the
	// Prometheus default registerer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts RouterOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "visit_access",
		Subsystem:  "http",
		Registerer: opts.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/health")
		},
	}))

	// --- Probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(opts.Health).Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(svc.Auth)
	accountHandler := handler.NewAccountHandler(svc.Accounts)
	roleHandler := handler.NewRoleHandler(svc.Roles)
	requestHandler := handler.NewRequestHandler(svc.Requests)
	credentialHandler := handler.NewCredentialHandler(svc.Credentials)

	// --- Public routes: login and the token links mailed to users and guests ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/register/:token", accountHandler.CompleteRegistration)
	e.POST("/password-recovery", accountHandler.RequestRecovery)
	e.POST("/password-recovery/:token", accountHandler.CompleteRecovery)
	e.GET("/credentials/:handle", credentialHandler.Get)

	// --- Authenticated routes ---
	authn := middleware.Auth(opts.JWTSecret)
	actor := middleware.Actor(svc.Roles)
	admin := middleware.RBAC(domain.RoleAdmin)

	users := e.Group("/users", authn, actor, admin)
	users.POST("", accountHandler.Create)
	users.GET("", accountHandler.List)
	users.GET("/:id", accountHandler.Get)
	users.POST("/:id/roles/:role", roleHandler.Assign)
	users.DELETE("/:id/roles/:role", roleHandler.Remove)

	requests := e.Group("/requests", authn, actor)
	requests.POST("", requestHandler.Create)
	requests.GET("", requestHandler.List)
	requests.GET("/:id", requestHandler.Get)
	requests.POST("/:id/review", requestHandler.Review, middleware.RBAC(domain.RoleConfirming))
	requests.DELETE("/:id", requestHandler.Remove, admin)

	security := middleware.RBAC(domain.RoleSecurity)
	requests.POST("/:id/guests/:guestId/check-in", requestHandler.CheckIn, security)
	requests.POST("/:id/guests/:guestId/check-out", requestHandler.CheckOut, security)

	return e
}
