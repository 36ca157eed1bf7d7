package bootstrap

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	app "github.com/mohammadpnp/padron-import/internal/application/member"
	httpecho "github.com/mohammadpnp/padron-import/internal/interfaces/http/echo"
	"github.com/mohammadpnp/padron-import/pkg/logger"
	"github.com/mohammadpnp/padron-import/pkg/metrics"
)

type ServerConfig struct {
	MaxUploadSize string
}

func NewHTTPServer(cfg ServerConfig, service app.ImportService, m *metrics.ImportMetrics, log logger.Logger) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			)
			return nil
		},
	}))
	server.Use(middleware.BodyLimit(cfg.MaxUploadSize))

	httpecho.RegisterRoutes(server, httpecho.NewImportHandler(service))

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if m != nil {
		server.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	return server
}
