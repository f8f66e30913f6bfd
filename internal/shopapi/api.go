// Package shopapi mounts the storefront REST endpoints on the web server.
package shopapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/saajjewels/storefront/internal/app"
	"github.com/saajjewels/storefront/internal/apperr"
	"github.com/saajjewels/storefront/internal/guard"
	"github.com/saajjewels/storefront/internal/webserver"
)

// Register mounts every route group. Admin routes share one gate built from
// the configured token.
func Register(s *webserver.Server, appCtx app.AppContext) {
	cfg := appCtx.Config()
	admin := guard.AdminGate(cfg.Admin.Token)
	session := appCtx.Sessions().Middleware()

	if !cfg.Cloudinary.Enabled() {
		s.Static(app.LocalUploadPrefix, cfg.GetUploadDir())
	}

	registerProductRoutes(s, admin, appCtx)
	registerCustomerRoutes(s, admin)
	registerAuthRoutes(s, session)
	registerOrderRoutes(s, admin, session)
	registerRazorpayRoutes(s, session)
	registerOfferRoutes(s, admin)
	registerContactRoutes(s, admin)
}

// GetAppContext returns the application context published by the pipeline
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

// GetDB returns the request scoped database handle
func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB().WithContext(c.Request().Context())
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

type pageResult struct {
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pageResult{Data: data, Total: total, Page: page, PageSize: pageSize})
}

// parsePagination reads page and pageSize (or perPage), defaulting to 1 and 20
func parsePagination(c echo.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := 20
	raw := c.QueryParam("pageSize")
	if raw == "" {
		raw = c.QueryParam("perPage")
	}
	if ps, err := strconv.Atoi(raw); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

// parseIDParam reads the :id path parameter. An id that cannot name a row
// is reported as not found.
func parseIDParam(c echo.Context, notFound string) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound(nil, notFound)
	}
	return id, nil
}

// bindAndValidate binds the request body into v and runs its validate tags
func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return err
	}
	return c.Validate(v)
}

// Compose builds the web server for appCtx with every route mounted
func Compose(appCtx app.AppContext) *webserver.Server {
	s := webserver.NewServer(appCtx.Config(), appCtx)
	Register(s, appCtx)
	return s
}
