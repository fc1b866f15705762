package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/flapboard/core/docs"
	httpHandlers "github.com/flapboard/core/internal/adapters/http"
	"github.com/flapboard/core/internal/adapters/repository"
	"github.com/flapboard/core/internal/application/services"
	"github.com/flapboard/core/internal/domain/entities"
	"github.com/flapboard/core/internal/infrastructure/config"
	"github.com/flapboard/core/internal/infrastructure/logger"
	"github.com/flapboard/core/internal/infrastructure/storage"
	"github.com/flapboard/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	logger   *logger.Logger
	registry *prometheus.Registry
	stores   *Stores
}

// Stores holds the two files backing the service. Both share one lock so
// every load and save in the process is serialized.
type Stores struct {
	Scores   *storage.Store[entities.ScoreEntry]
	Accounts *storage.Store[entities.UserAccount]
}

// Services holds the application services built on the stores
type Services struct {
	Leaderboard *services.LeaderboardService
	Accounts    *services.AccountService
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return echo.NewHTTPError(http.StatusBadRequest, ports.ErrorResponse{
				Message: "validation failed",
				Details: describeValidation(verrs),
			}).SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func describeValidation(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// OpenStores opens both store files with a shared lock
func OpenStores(cfg config.StorageConfig, appLogger *logger.Logger, metrics *storage.Metrics) (*Stores, error) {
	opts := storage.Options{
		Lock:    &sync.Mutex{},
		Logger:  appLogger,
		Metrics: metrics,
	}

	scores, err := storage.Open[entities.ScoreEntry](cfg.ScoresPath(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open scores store: %w", err)
	}

	accounts, err := storage.Open[entities.UserAccount](cfg.UsersPath(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open users store: %w", err)
	}

	return &Stores{Scores: scores, Accounts: accounts}, nil
}

// NewServices wires repositories and services onto the stores
func NewServices(cfg *config.Config, stores *Stores, appLogger *logger.Logger) (*Services, error) {
	digester, err := services.NewPasswordDigester(cfg.Security.PasswordDigest)
	if err != nil {
		return nil, err
	}

	scoreRepo := repository.NewScoreRepository(stores.Scores)
	accountRepo := repository.NewAccountRepository(stores.Accounts)

	return &Services{
		Leaderboard: services.NewLeaderboardService(scoreRepo, appLogger),
		Accounts:    services.NewAccountService(accountRepo, digester, appLogger),
	}, nil
}

// New creates a new server instance
func New(cfg *config.Config, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	stores, err := OpenStores(cfg.Storage, appLogger, storage.NewMetrics(registry))
	if err != nil {
		return nil, err
	}

	svcs, err := NewServices(cfg, stores, appLogger)
	if err != nil {
		return nil, err
	}

	leaderboardHandler := httpHandlers.NewLeaderboardHandler(svcs.Leaderboard, appLogger)
	accountHandler := httpHandlers.NewAccountHandler(svcs.Accounts, appLogger)

	server := &Server{
		echo:     e,
		config:   cfg,
		logger:   appLogger,
		registry: registry,
		stores:   stores,
	}

	server.setupMiddleware()

	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	server.setupRoutes(leaderboardHandler, accountHandler)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	return server, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID middleware
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			s.logger.LogHTTPRequest(
				values.Method,
				values.URI,
				values.RequestID,
				values.RemoteIP,
				values.Status,
				float64(values.Latency.Nanoseconds())/1000000,
				values.Error,
			)
			return nil
		},
	}))

	// CORS: any origin, with credentials, any method and header
	s.echo.Use(echo.WrapMiddleware(newCORS(s.config.Security.CORSAllowedOrigins).Handler))

	// Rate limiting middleware
	if s.config.Security.RateLimitRequests > 0 {
		s.echo.Use(rateLimitMiddleware(s.config.Security))
	}

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(leaderboardHandler *httpHandlers.LeaderboardHandler, accountHandler *httpHandlers.AccountHandler) {
	s.echo.GET("/", s.home)
	s.echo.GET("/health", s.healthCheck)

	// Swagger documentation
	s.echo.GET("/docs/*", echoSwagger.WrapHandler)

	s.echo.GET("/scores", leaderboardHandler.GetScores)
	s.echo.POST("/submit", leaderboardHandler.SubmitScore)

	s.echo.POST("/register", accountHandler.Register)
	s.echo.POST("/login", accountHandler.Login)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	s.registry.MustRegister(requestsTotal, requestDuration)

	s.echo.Use(metricsMiddleware(requestsTotal, requestDuration))

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

func (s *Server) home(c echo.Context) error {
	return c.JSON(http.StatusOK, ports.MessageResponse{
		Message: fmt.Sprintf("%s API is running", s.config.App.Name),
	})
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
		"stores": map[string]string{
			"scores":   s.stores.Scores.Path(),
			"accounts": s.stores.Accounts.Path(),
		},
		"version": s.config.App.Version,
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	address := s.config.Server.Address()
	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			code = http.StatusInternalServerError
			body interface{}
		)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch m := he.Message.(type) {
			case ports.ErrorResponse:
				body = m
			case string:
				body = ports.ErrorResponse{Message: m}
			default:
				body = ports.ErrorResponse{Message: fmt.Sprint(m)}
			}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else {
			body = ports.ErrorResponse{Message: http.StatusText(code)}
		}

		if code >= http.StatusInternalServerError {
			logger.WithError(err).Errorw("Internal server error", "path", c.Request().URL.Path)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			logger.WithError(err).Error("Error sending response")
		}
	}
}
