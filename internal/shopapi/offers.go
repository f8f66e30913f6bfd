package shopapi

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/saajjewels/storefront/internal/apperr"
	"github.com/saajjewels/storefront/internal/domain"
	"github.com/saajjewels/storefront/internal/webserver"
)

const msgOfferNotFound = "Offer not found"

type offerPayload struct {
	Title           string  `json:"title" validate:"required,max=255"`
	Description     string  `json:"description"`
	Code            string  `json:"code" validate:"max=64"`
	DiscountPercent float64 `json:"discountPercent" validate:"gte=0,lte=100"`
	Image           string  `json:"image" validate:"max=1024"`
	Active          *bool   `json:"active"`
	ValidUntil      string  `json:"validUntil"`
}

// apply copies the payload onto o. validUntil accepts any common date
// layout; an empty value clears the expiry.
func (p offerPayload) apply(o *domain.Offer) error {
	o.Title = strings.TrimSpace(p.Title)
	o.Description = p.Description
	o.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	o.DiscountPercent = p.DiscountPercent
	o.Image = p.Image
	o.Active = p.Active == nil || *p.Active
	o.ValidUntil = nil
	if v := strings.TrimSpace(p.ValidUntil); v != "" {
		t, err := dateparse.ParseLocal(v)
		if err != nil {
			return apperr.BadRequest("validUntil is not a valid date")
		}
		o.ValidUntil = &t
	}
	return nil
}

// registerOfferRoutes mounts offers outside /api, as the storefront expects
func registerOfferRoutes(s *webserver.Server, admin echo.MiddlewareFunc) {
	g := s.Group("/offers")
	g.GET("", listOffers)
	g.POST("", createOffer, admin)
	g.PUT("/:id", updateOffer, admin)
	g.DELETE("/:id", deleteOffer, admin)
}

// listOffers returns active offers that have not expired. Admins may pass
// all=true to include the rest.
func listOffers(c echo.Context) error {
	db := GetDB(c).Model(&domain.Offer{})
	if c.QueryParam("all") != "true" {
		db = db.Where("active = ? AND (valid_until IS NULL OR valid_until > ?)", true, time.Now())
	}
	rows := []domain.Offer{}
	if err := db.Order("id DESC").Find(&rows).Error; err != nil {
		return apperr.Storage(err, "Error fetching offers")
	}
	return ok(c, rows)
}

func createOffer(c echo.Context) error {
	var payload offerPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	var row domain.Offer
	if err := payload.apply(&row); err != nil {
		return err
	}
	// Select("*") so an explicit active=false is not replaced by the column default
	if err := GetDB(c).Select("*").Create(&row).Error; err != nil {
		return apperr.Storage(err, "Error creating offer")
	}
	return created(c, row)
}

func updateOffer(c echo.Context) error {
	id, err := parseIDParam(c, msgOfferNotFound)
	if err != nil {
		return err
	}
	var row domain.Offer
	err = GetDB(c).First(&row, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(err, msgOfferNotFound)
	case err != nil:
		return apperr.Storage(err, "Error fetching offer")
	}

	var payload offerPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	if err := payload.apply(&row); err != nil {
		return err
	}
	row.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&row).Error; err != nil {
		return apperr.Storage(err, "Error updating offer")
	}
	return ok(c, row)
}

func deleteOffer(c echo.Context) error {
	id, err := parseIDParam(c, msgOfferNotFound)
	if err != nil {
		return err
	}
	res := GetDB(c).Delete(&domain.Offer{}, id)
	if res.Error != nil {
		return apperr.Storage(res.Error, "Error deleting offer")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(nil, msgOfferNotFound)
	}
	return ok(c, map[string]interface{}{
		"success": true,
		"message": "Offer deleted successfully",
	})
}
