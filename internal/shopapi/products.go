package shopapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/saajjewels/storefront/internal/app"
	"github.com/saajjewels/storefront/internal/catalog"
	"github.com/saajjewels/storefront/internal/domain"
	"github.com/saajjewels/storefront/internal/upload"
	"github.com/saajjewels/storefront/internal/webserver"
)

// productPayload accepts both JSON and multipart form submissions
type productPayload struct {
	Name            string             `json:"name" form:"name"`
	OriginalPrice   catalog.PriceField `json:"originalPrice" form:"originalPrice"`
	DiscountedPrice catalog.PriceField `json:"discountedPrice" form:"discountedPrice"`
	Image           string             `json:"image" form:"image"`
	Description     string             `json:"description" form:"description"`
	Category        string             `json:"category" form:"category"`
}

func (p productPayload) draft() catalog.Draft {
	return catalog.Draft{
		Name:            p.Name,
		OriginalPrice:   p.OriginalPrice,
		DiscountedPrice: p.DiscountedPrice,
		Image:           p.Image,
		Description:     p.Description,
		Category:        p.Category,
	}
}

// registerProductRoutes mounts the catalog. Reads are public, writes pass
// the admin gate before any file is uploaded.
func registerProductRoutes(s *webserver.Server, admin echo.MiddlewareFunc, appCtx app.AppContext) {
	image := upload.SingleFile(appCtx.Uploader(), upload.FieldImage)

	s.ApiGET("/products", listProducts)
	s.ApiGET("/products/search", searchProducts)
	s.ApiGET("/products/:id", getProduct)
	s.ApiPOST("/products", createProduct, admin, image)
	s.ApiPUT("/products/:id", updateProduct, admin, image)
	s.ApiDELETE("/products/:id", deleteProduct, admin)

	s.ApiGET("/admin/products/stats", productStats, admin)
	s.ApiGET("/admin/products/export", exportProducts, admin)
}

func listProducts(c echo.Context) error {
	rows, err := GetAppContext(c).Catalog().List(c.Request().Context())
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []domain.Product{}
	}
	return ok(c, rows)
}

func searchProducts(c echo.Context) error {
	rows, err := GetAppContext(c).Catalog().Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []domain.Product{}
	}
	return ok(c, rows)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, catalog.MsgProductNotFound)
	if err != nil {
		return err
	}
	p, err := GetAppContext(c).Catalog().Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	p, err := GetAppContext(c).Catalog().Create(c.Request().Context(), payload.draft(), upload.URL(c))
	if err != nil {
		return err
	}
	return created(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, catalog.MsgProductNotFound)
	if err != nil {
		return err
	}
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	p, err := GetAppContext(c).Catalog().Update(c.Request().Context(), id, payload.draft(), upload.URL(c))
	if err != nil {
		return err
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, catalog.MsgProductNotFound)
	if err != nil {
		return err
	}
	if err := GetAppContext(c).Catalog().Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return ok(c, map[string]interface{}{
		"success": true,
		"message": "Product deleted successfully",
	})
}

func productStats(c echo.Context) error {
	st, err := GetAppContext(c).Catalog().Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, st)
}

type productCSV struct {
	ID              int64   `csv:"id"`
	Name            string  `csv:"name"`
	Category        string  `csv:"category"`
	OriginalPrice   float64 `csv:"original_price"`
	DiscountedPrice float64 `csv:"discounted_price"`
	Image           string  `csv:"image"`
	Description     string  `csv:"description"`
	UpdatedAt       string  `csv:"updated_at"`
}

func exportProducts(c echo.Context) error {
	rows, err := GetAppContext(c).Catalog().List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]productCSV, 0, len(rows))
	for _, p := range rows {
		out = append(out, productCSV{
			ID:              p.ID,
			Name:            p.Name,
			Category:        p.Category,
			OriginalPrice:   p.OriginalPrice,
			DiscountedPrice: p.DiscountedPrice,
			Image:           p.Image,
			Description:     p.Description,
			UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
		})
	}
	data, err := gocsv.MarshalBytes(&out)
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("products-%s.csv", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}
