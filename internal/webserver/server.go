package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/saajjewels/storefront/config"
)

// AppContextKey is the echo context key under which the application context
// is published for handlers
const AppContextKey = "appctx"

// Stage is one named step of the request pipeline
type Stage struct {
	Name       string
	Middleware echo.MiddlewareFunc
}

// Server composes the storefront HTTP application
type Server struct {
	root   *echo.Echo
	api    *echo.Group
	cfg    *config.AppConfig
	stages []Stage
}

// NewServer builds the echo instance with its global pipeline:
//
//	recover -> request log -> cors -> body limit -> app context -> routing
//
// Errors from any stage or handler are translated by handleError.
func NewServer(cfg *config.AppConfig, appCtx interface{}) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = &JSONSerializer{}
	e.Validator = NewValidator()

	s := &Server{root: e, cfg: cfg}
	e.HTTPErrorHandler = s.handleError

	s.stages = []Stage{
		{Name: "recover", Middleware: middleware.Recover()},
		{Name: "request-log", Middleware: requestLogger()},
		{Name: "cors", Middleware: cors(cfg.Web.CorsOrigins)},
		{Name: "body-limit", Middleware: middleware.BodyLimit(bodyLimit(cfg.Web.BodyLimit))},
		{Name: "app-context", Middleware: injectAppContext(appCtx)},
	}
	for _, st := range s.stages {
		e.Use(st.Middleware)
	}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	s.api = e.Group("/api")
	return s
}

// Stages returns the pipeline stage names in execution order
func (s *Server) Stages() []string {
	names := make([]string, 0, len(s.stages))
	for _, st := range s.stages {
		names = append(names, st.Name)
	}
	return names
}

// Echo exposes the underlying echo instance
func (s *Server) Echo() *echo.Echo {
	return s.root
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.root.ServeHTTP(w, r)
}

// Group returns a route group mounted at prefix outside /api
func (s *Server) Group(prefix string, m ...echo.MiddlewareFunc) *echo.Group {
	return s.root.Group(prefix, m...)
}

// ApiGroup returns a route group mounted under /api
func (s *Server) ApiGroup(prefix string, m ...echo.MiddlewareFunc) *echo.Group {
	return s.api.Group(prefix, m...)
}

func (s *Server) ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.GET(path, h, m...)
}

func (s *Server) ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.POST(path, h, m...)
}

func (s *Server) ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.PUT(path, h, m...)
}

func (s *Server) ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.DELETE(path, h, m...)
}

// Static serves files from dir under prefix
func (s *Server) Static(prefix, dir string) {
	s.root.Static(prefix, dir)
}

// Start listens until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Web.Host, s.cfg.Web.Port)
	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("Server running on %s", addr)
		errCh <- s.root.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		zap.S().Info("Server shutting down")
		return s.root.Shutdown(shutdownCtx)
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
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
				zap.String("ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			zap.L().Info("request", fields...)
			return nil
		},
	})
}

// cors allows credentials; "*" reflects the caller's origin
func cors(origins []string) echo.MiddlewareFunc {
	conf := middleware.CORSConfig{
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, "x-admin-token",
		},
	}
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		conf.AllowOriginFunc = func(origin string) (bool, error) { return true, nil }
	} else {
		conf.AllowOrigins = origins
	}
	return middleware.CORSWithConfig(conf)
}

func bodyLimit(v string) string {
	if v == "" {
		return "10M"
	}
	return v
}

func injectAppContext(appCtx interface{}) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	}
}
