package webserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/comptoirlabs/comptoir/config"
)

// ContextAppKey is the echo context key under which the application container
// is injected for the api handlers.
const ContextAppKey = "appctx"

var server *WebServer

type WebServer struct {
	root *echo.Echo
	cfg  *config.AppConfig
}

// Init builds the global web server. appctx is stored opaquely in every
// request context; the adminapi package asserts it back to the application.
func Init(appctx interface{}, cfg *config.AppConfig) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestMetrics())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextAppKey, appctx)
			return next(c)
		}
	})
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI: true, LogStatus: true, LogMethod: true, LogError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				zap.L().Warn("http request",
					zap.String("method", v.Method), zap.String("uri", v.URI),
					zap.Int("status", v.Status), zap.Error(v.Error))
			} else {
				zap.L().Debug("http request",
					zap.String("method", v.Method), zap.String("uri", v.URI),
					zap.Int("status", v.Status))
			}
			return nil
		},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	server = &WebServer{root: e, cfg: cfg}
}

// Listen blocks serving the admin api.
func Listen() error {
	addr := fmt.Sprintf("%s:%d", server.cfg.Web.Host, server.cfg.Web.Port)
	zap.L().Info("starting web server", zap.String("listen", addr))
	return server.root.Start(addr)
}

func Shutdown() {
	if server != nil {
		_ = server.root.Close()
	}
}

// Echo exposes the underlying router, used by tests.
func Echo() *echo.Echo {
	return server.root
}

const apiPrefix = "/api"

func ApiGET(path string, h echo.HandlerFunc) {
	server.root.GET(apiPrefix+path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.root.POST(apiPrefix+path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.root.PUT(apiPrefix+path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.root.DELETE(apiPrefix+path, h)
}
