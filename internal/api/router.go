package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/skinscan/api/docs"
	"github.com/skinscan/api/internal/api/handler"
	"github.com/skinscan/api/internal/api/middleware"
	"github.com/skinscan/api/internal/core/ports"
)

const defaultMaxUpload = "10M"

// Dependencies are the process-scoped collaborators the router wires into
// handlers. AuthLimiter and Registry are optional.
type Dependencies struct {
	AuthService    ports.AuthService
	ChatService    ports.ChatService
	PredictService ports.PredictService

	// AuthLimiter throttles /register and /login per client IP when set.
	AuthLimiter ports.RateLimiter

	ReadinessChecks  map[string]handler.DependencyCheck
	CORSAllowOrigins []string
	MaxUploadSize    string

	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// Prometheus default registry.
	Registry *prometheus.Registry

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	origins := deps.CORSAllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "skinscan",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Logger)
	chatHandler := handler.NewChatHandler(deps.ChatService, deps.Logger)
	predictHandler := handler.NewPredictHandler(deps.PredictService, deps.Logger)

	var authMW []echo.MiddlewareFunc
	if deps.AuthLimiter != nil {
		authMW = append(authMW, middleware.RateLimit(deps.AuthLimiter, deps.Logger))
	}

	maxUpload := deps.MaxUploadSize
	if maxUpload == "" {
		maxUpload = defaultMaxUpload
	}

	// --- Auth routes ---
	e.POST("/register", authHandler.Register, authMW...)
	e.POST("/login", authHandler.Login, authMW...)

	// --- Proxy routes ---
	e.POST("/chatbot", chatHandler.Ask)
	e.POST("/predict", predictHandler.Predict, echomiddleware.BodyLimit(maxUpload))

	// --- Health probes ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.ReadinessChecks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness) // 503 until Mongo (and Redis, if set) answer

	// --- Operations ---
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
