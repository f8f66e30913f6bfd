package shopapi

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/saajjewels/storefront/internal/apperr"
	"github.com/saajjewels/storefront/internal/domain"
	"github.com/saajjewels/storefront/internal/webserver"
	"github.com/saajjewels/storefront/pkg/common"
)

const msgCustomerNotFound = "Customer not found"

type customerPayload struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=32"`
	Address string `json:"address" validate:"max=512"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode" validate:"max=16"`
	Remark  string `json:"remark"`
}

func (p customerPayload) apply(c *domain.Customer) {
	c.Name = strings.TrimSpace(p.Name)
	c.Email = strings.ToLower(strings.TrimSpace(p.Email))
	c.Phone = strings.TrimSpace(p.Phone)
	c.Address = p.Address
	c.City = p.City
	c.State = p.State
	c.Pincode = p.Pincode
	c.Remark = p.Remark
}

// registerCustomerRoutes mounts customer management for shop admins
func registerCustomerRoutes(s *webserver.Server, admin echo.MiddlewareFunc) {
	g := s.ApiGroup("/admin/customers", admin)
	g.GET("", listCustomers)
	g.GET("/:id", getCustomer)
	g.POST("", createCustomer)
	g.PUT("/:id", updateCustomer)
	g.DELETE("/:id", deleteCustomer)
}

func listCustomers(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := GetDB(c).Model(&domain.Customer{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := common.ContainsPattern(strings.ToLower(q))
		db = db.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\'`, like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return apperr.Storage(err, "Error fetching customers")
	}
	rows := []domain.Customer{}
	if err := db.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return apperr.Storage(err, "Error fetching customers")
	}
	return paged(c, rows, total, page, pageSize)
}

func findCustomer(c echo.Context) (*domain.Customer, error) {
	id, err := parseIDParam(c, msgCustomerNotFound)
	if err != nil {
		return nil, err
	}
	var row domain.Customer
	err = GetDB(c).First(&row, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound(err, msgCustomerNotFound)
	case err != nil:
		return nil, apperr.Storage(err, "Error fetching customer")
	}
	return &row, nil
}

func getCustomer(c echo.Context) error {
	row, err := findCustomer(c)
	if err != nil {
		return err
	}
	return ok(c, row)
}

func createCustomer(c echo.Context) error {
	var payload customerPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	var row domain.Customer
	payload.apply(&row)
	if err := GetDB(c).Create(&row).Error; err != nil {
		return apperr.Storage(err, "Error creating customer")
	}
	return created(c, row)
}

func updateCustomer(c echo.Context) error {
	row, err := findCustomer(c)
	if err != nil {
		return err
	}
	var payload customerPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	payload.apply(row)
	row.UpdatedAt = time.Now()
	if err := GetDB(c).Save(row).Error; err != nil {
		return apperr.Storage(err, "Error updating customer")
	}
	return ok(c, row)
}

func deleteCustomer(c echo.Context) error {
	id, err := parseIDParam(c, msgCustomerNotFound)
	if err != nil {
		return err
	}
	res := GetDB(c).Delete(&domain.Customer{}, id)
	if res.Error != nil {
		return apperr.Storage(res.Error, "Error deleting customer")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(nil, msgCustomerNotFound)
	}
	return ok(c, map[string]interface{}{
		"success": true,
		"message": "Customer deleted successfully",
	})
}
