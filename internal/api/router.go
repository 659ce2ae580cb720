package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/crmhub/crm-system/internal/api/handler"
	"github.com/crmhub/crm-system/internal/api/middleware"
	"github.com/crmhub/crm-system/internal/core/policy"
	"github.com/crmhub/crm-system/internal/core/ports"
)

// DashboardOrigins are the browser origins allowed by CORS.
var DashboardOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8081",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:8081",
}

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Auth         ports.AuthService
	Customers    ports.CustomerService
	Interactions ports.InteractionService
	Analytics    ports.AnalyticsService
	HealthChecks map[string]handler.HealthCheck
	Logger       zerolog.Logger
	// Registry receives the HTTP metrics; nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  DashboardOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderOrigin},
		ExposeHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "crm",
		Registerer: registerer,
	}))

	// --- Operations (no auth required) ---
	health := handler.NewHealthHandler(deps.HealthChecks)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authn := middleware.Auth(deps.Auth, deps.Logger.With().Str("component", "auth_middleware").Logger())
	guard := func(r policy.Resource) []echo.MiddlewareFunc {
		return []echo.MiddlewareFunc{authn, middleware.Require(r)}
	}

	// --- Auth ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/validate", authHandler.Validate)
	auth.POST("/register-user", authHandler.RegisterUser, guard(policy.Users)...)
	auth.GET("/users", authHandler.ListUsers, guard(policy.Users)...)

	// --- Users ---
	userHandler := handler.NewUserHandler(deps.Auth)
	users := e.Group("/api/users", guard(policy.Users)...)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Customers ---
	customerHandler := handler.NewCustomerHandler(deps.Customers, deps.Interactions)
	customers := e.Group("/api/customers")
	customers.GET("", customerHandler.List, guard(policy.CustomersRead)...)
	customers.POST("", customerHandler.Create, guard(policy.CustomersWrite)...)
	customers.GET("/:id", customerHandler.Get, guard(policy.CustomersRead)...)
	customers.PUT("/:id", customerHandler.Update, guard(policy.CustomersWrite)...)
	customers.DELETE("/:id", customerHandler.Delete, guard(policy.CustomersWrite)...)
	customers.GET("/:id/interactions", customerHandler.Interactions, guard(policy.InteractionsRead)...)

	// --- Interactions ---
	interactionHandler := handler.NewInteractionHandler(deps.Interactions)
	interactions := e.Group("/api/interactions")
	interactions.POST("", interactionHandler.Create, guard(policy.InteractionsWrite)...)
	interactions.GET("/count", interactionHandler.Count, guard(policy.InteractionsRead)...)
	interactions.GET("/:id", interactionHandler.Get, guard(policy.InteractionsRead)...)
	interactions.PUT("/:id", interactionHandler.Update, guard(policy.InteractionsWrite)...)
	interactions.DELETE("/:id", interactionHandler.Delete, guard(policy.InteractionsDelete)...)

	// --- Analytics ---
	analyticsHandler := handler.NewAnalyticsHandler(deps.Analytics)
	analytics := e.Group("/api/analytics", guard(policy.Analytics)...)
	analytics.GET("/customer-stats", analyticsHandler.CustomerStats)
	analytics.GET("/interaction-stats", analyticsHandler.InteractionStats)
	analytics.GET("/monthly-interactions", analyticsHandler.MonthlyInteractions)
	analytics.GET("/interaction-types", analyticsHandler.InteractionTypes)

	return e
}
