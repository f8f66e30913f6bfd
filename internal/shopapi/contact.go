package shopapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/saajjewels/storefront/internal/apperr"
	"github.com/saajjewels/storefront/internal/domain"
	"github.com/saajjewels/storefront/internal/webserver"
)

type contactPayload struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=32"`
	Subject string `json:"subject" validate:"max=255"`
	Message string `json:"message" validate:"required,max=5000"`
}

func registerContactRoutes(s *webserver.Server, admin echo.MiddlewareFunc) {
	s.ApiPOST("/contact", submitContact)
	s.ApiGET("/contact", listContact, admin)
}

func submitContact(c echo.Context) error {
	var payload contactPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	msg := domain.ContactMessage{
		Name:    strings.TrimSpace(payload.Name),
		Email:   strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:   payload.Phone,
		Subject: payload.Subject,
		Message: payload.Message,
	}
	if err := GetDB(c).Create(&msg).Error; err != nil {
		return apperr.Storage(err, "Error saving message")
	}
	GetAppContext(c).Notifier().ContactReceived(msg)
	return created(c, map[string]interface{}{
		"success": true,
		"message": "Message received",
		"id":      msg.ID,
	})
}

func listContact(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := GetDB(c).Model(&domain.ContactMessage{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return apperr.Storage(err, "Error fetching messages")
	}
	rows := []domain.ContactMessage{}
	if err := db.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return apperr.Storage(err, "Error fetching messages")
	}
	return paged(c, rows, total, page, pageSize)
}
