package shopapi

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/saajjewels/storefront/internal/apperr"
	"github.com/saajjewels/storefront/internal/catalog"
	"github.com/saajjewels/storefront/internal/domain"
	"github.com/saajjewels/storefront/internal/webserver"
	"github.com/saajjewels/storefront/pkg/common"
)

const (
	msgOrderNotFound      = "Order not found"
	msgInvalidOrderStatus = "Invalid order status"
)

type orderItemPayload struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,min=1,max=100"`
}

type orderPayload struct {
	Items           []orderItemPayload `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string             `json:"shippingAddress" validate:"required,max=1024"`
	Phone           string             `json:"phone" validate:"max=32"`
}

type orderStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

func registerOrderRoutes(s *webserver.Server, admin, session echo.MiddlewareFunc) {
	s.ApiPOST("/orders", createOrder, session)

	g := s.ApiGroup("/admin/orders", admin)
	g.GET("", listOrders)
	g.GET("/export", exportOrders)
	g.GET("/:id", getOrder)
	g.PUT("/:id/status", updateOrderStatus)
	g.DELETE("/:id", deleteOrder)
}

// createOrder prices every line from the catalog; client supplied prices
// are never trusted.
func createOrder(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	var payload orderPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}

	ctx := c.Request().Context()
	items := make([]domain.OrderItem, 0, len(payload.Items))
	var total float64
	for _, it := range payload.Items {
		p, err := GetAppContext(c).Catalog().Get(ctx, it.ProductID)
		if errors.Is(err, catalog.ErrProductNotFound) {
			return apperr.BadRequest(fmt.Sprintf("Product %d not found", it.ProductID))
		}
		if err != nil {
			return err
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			UnitPrice: p.DiscountedPrice,
			Quantity:  it.Quantity,
		})
		total += p.DiscountedPrice * float64(it.Quantity)
	}

	order := &domain.Order{
		OrderNumber:     common.OrderNumber(),
		CustomerID:      user.ID,
		Items:           items,
		TotalAmount:     math.Round(total*100) / 100,
		Status:          domain.OrderPending,
		ShippingAddress: strings.TrimSpace(payload.ShippingAddress),
		Phone:           payload.Phone,
	}
	if err := GetDB(c).Create(order).Error; err != nil {
		return apperr.Storage(err, "Error creating order")
	}
	return created(c, order)
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := GetDB(c).Model(&domain.Order{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return apperr.Storage(err, "Error fetching orders")
	}
	rows := []domain.Order{}
	if err := db.Preload("Customer").Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return apperr.Storage(err, "Error fetching orders")
	}
	return paged(c, rows, total, page, pageSize)
}

func findOrder(c echo.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var row domain.Order
	err := db.Preload("Customer").First(&row, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound(err, msgOrderNotFound)
	case err != nil:
		return nil, apperr.Storage(err, "Error fetching order")
	}
	return &row, nil
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, msgOrderNotFound)
	if err != nil {
		return err
	}
	row, err := findOrder(c, GetDB(c), id)
	if err != nil {
		return err
	}
	return ok(c, row)
}

func updateOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, msgOrderNotFound)
	if err != nil {
		return err
	}
	var payload orderStatusPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	status := strings.ToLower(strings.TrimSpace(payload.Status))
	if !domain.IsValidOrderStatus(status) {
		return apperr.BadRequest(msgInvalidOrderStatus)
	}

	now := time.Now()
	updates := map[string]interface{}{"status": status, "updated_at": now}
	if status == domain.OrderPaid {
		updates["paid_at"] = now
	}
	res := GetDB(c).Model(&domain.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return apperr.Storage(res.Error, "Error updating order")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(nil, msgOrderNotFound)
	}
	row, err := findOrder(c, GetDB(c), id)
	if err != nil {
		return err
	}
	return ok(c, row)
}

func deleteOrder(c echo.Context) error {
	id, err := parseIDParam(c, msgOrderNotFound)
	if err != nil {
		return err
	}
	res := GetDB(c).Delete(&domain.Order{}, id)
	if res.Error != nil {
		return apperr.Storage(res.Error, "Error deleting order")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(nil, msgOrderNotFound)
	}
	return ok(c, map[string]interface{}{
		"success": true,
		"message": "Order deleted successfully",
	})
}

var orderSheetHeader = []string{"Order", "Customer", "Email", "Items", "Total", "Status", "Payment", "Created"}

// exportOrders writes the filtered order list as an xlsx workbook
func exportOrders(c echo.Context) error {
	db := GetDB(c).Model(&domain.Order{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}
	var rows []domain.Order
	if err := db.Preload("Customer").Order("id").Find(&rows).Error; err != nil {
		return apperr.Storage(err, "Error fetching orders")
	}

	const sheet = "Sheet1"
	xlsx := excelize.NewFile()
	for i, h := range orderSheetHeader {
		xlsx.SetCellValue(sheet, cellName(i, 1), h)
	}
	for r, o := range rows {
		line := r + 2
		var name, email string
		if o.Customer != nil {
			name, email = o.Customer.Name, o.Customer.Email
		}
		names := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			names = append(names, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
		}
		values := []interface{}{
			o.OrderNumber, name, email, strings.Join(names, ", "),
			o.TotalAmount, o.Status, o.PaymentID, o.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			xlsx.SetCellValue(sheet, cellName(col, line), v)
		}
	}

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// cellName maps a zero based column and one based row to an A1 reference
func cellName(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}
