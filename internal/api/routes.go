// routes.go - Route registration helpers
// This file provides a clean way to register all routes and middleware
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/docchat/frontend/internal/config"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Controller Controller
	Backend    BackendProbe
	Logger     *zap.Logger
	Version    string
}

// Handlers holds all handler instances
type Handlers struct {
	Page      PageHandler
	Session   SessionHandler
	State     StateHandler
	Health    HealthHandler
	WebSocket *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Page:      NewPageHandler(deps.Controller),
		Session:   NewSessionHandler(deps.Controller, deps.Logger),
		State:     NewStateHandler(deps.Controller),
		Health:    NewHealthHandler(deps.Version, deps.Backend),
		WebSocket: NewWebSocketHandler(deps.Controller, deps.Logger),
	}
}

// RegisterRoutes registers all routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/", handlers.Page.HandlePage)

	// Browser actions and state
	ui := e.Group("/ui")
	ui.POST("/upload", handlers.Session.HandleUpload)
	ui.POST("/ask", handlers.Session.HandleAsk)
	ui.POST("/new", handlers.Session.HandleNewDocument)
	ui.GET("/state", handlers.State.HandleState)
	ui.GET("/state/msgpack", handlers.State.HandleStateMsgpack)
	ui.GET("/ws", handlers.WebSocket.HandleWebSocket)

	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig, logger *zap.Logger) {
	e.HTTPErrorHandler = ErrorHandler

	if cfg.Logging.EnableRequestLogging {
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			Skipper: func(c echo.Context) bool {
				path := c.Request().URL.Path
				return strings.HasPrefix(path, "/static/") || path == "/api/health"
			},
			LogMethod:   true,
			LogURI:      true,
			LogStatus:   true,
			LogLatency:  true,
			LogRemoteIP: true,
			LogError:    true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				fields := []zap.Field{
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
					zap.Duration("latency", v.Latency),
					zap.String("remote_ip", v.RemoteIP),
				}
				if v.Error != nil {
					logger.Warn("request", append(fields, zap.Error(v.Error))...)
					return nil
				}
				logger.Info("request", fields...)
				return nil
			},
		}))
	}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout:      time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper:      skipTimeout,
		ErrorMessage: "Request timeout",
	}))

	if cfg.Server.EnableGzip {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Skipper: func(c echo.Context) bool {
				return c.Request().URL.Path == "/ui/ws"
			},
		}))
	}

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 1 && origins[0] == "" {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}

// skipTimeout exempts routes whose backend calls may outlast the server read
// timeout, and the websocket.
func skipTimeout(c echo.Context) bool {
	switch c.Request().URL.Path {
	case "/ui/upload", "/ui/ask", "/ui/new", "/ui/ws":
		return true
	}
	return false
}
