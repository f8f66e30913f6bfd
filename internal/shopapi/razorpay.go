package shopapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saajjewels/storefront/internal/apperr"
	"github.com/saajjewels/storefront/internal/domain"
	"github.com/saajjewels/storefront/internal/payment"
	"github.com/saajjewels/storefront/internal/webserver"
)

const (
	msgInvalidSignature    = "Invalid payment signature"
	msgPaymentsUnavailable = "Payments are not available"
)

type paymentOrderPayload struct {
	OrderID int64 `json:"orderId" validate:"required"`
}

type paymentVerifyPayload struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

func registerRazorpayRoutes(s *webserver.Server, session echo.MiddlewareFunc) {
	g := s.ApiGroup("/razorpay")
	g.GET("/key", razorpayKey)
	g.POST("/order", createPaymentOrder, session)
	g.POST("/verify", verifyPayment)
}

func razorpayKey(c echo.Context) error {
	return ok(c, map[string]string{"keyId": GetAppContext(c).Razorpay().KeyId()})
}

// createPaymentOrder registers the order amount with Razorpay and remembers
// the gateway order id for verification. Only the shopper who placed the
// order may check it out, and an order keeps its first gateway order.
func createPaymentOrder(c echo.Context) error {
	var payload paymentOrderPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	db := GetDB(c)
	var order domain.Order
	err = db.Where("customer_id = ?", user.ID).First(&order, payload.OrderID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(err, msgOrderNotFound)
	case err != nil:
		return apperr.Storage(err, "Error fetching order")
	}
	if order.Status != domain.OrderPending {
		return apperr.BadRequest("Order is not awaiting payment")
	}

	rp := GetAppContext(c).Razorpay()
	if !rp.Enabled() {
		return apperr.New(payment.ErrNotConfigured, http.StatusServiceUnavailable, msgPaymentsUnavailable)
	}
	if order.RazorpayOrderID != "" {
		return ok(c, map[string]interface{}{
			"id":       order.RazorpayOrderID,
			"amount":   payment.ToSubunits(order.TotalAmount),
			"currency": rp.Currency(),
			"receipt":  order.OrderNumber,
			"keyId":    rp.KeyId(),
			"orderId":  order.ID,
		})
	}

	gw, err := rp.CreateOrder(c.Request().Context(), order.TotalAmount, order.OrderNumber)
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			return apperr.New(err, http.StatusServiceUnavailable, msgPaymentsUnavailable)
		}
		return apperr.Storage(err, "Error creating payment order")
	}

	// a concurrent checkout may have stored its gateway order first
	res := db.Model(&domain.Order{}).Where("id = ? AND (razorpay_order_id = '' OR razorpay_order_id IS NULL)", order.ID).
		Updates(map[string]interface{}{"razorpay_order_id": gw.ID, "updated_at": time.Now()})
	if res.Error != nil {
		return apperr.Storage(res.Error, "Error updating order")
	}
	if res.RowsAffected == 0 {
		if err := db.First(&order, order.ID).Error; err != nil {
			return apperr.Storage(err, "Error fetching order")
		}
		gw.ID = order.RazorpayOrderID
	}
	return ok(c, map[string]interface{}{
		"id":       gw.ID,
		"amount":   gw.Amount,
		"currency": gw.Currency,
		"receipt":  gw.Receipt,
		"keyId":    rp.KeyId(),
		"orderId":  order.ID,
	})
}

// verifyPayment checks the checkout signature and marks the order paid
func verifyPayment(c echo.Context) error {
	var payload paymentVerifyPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	appCtx := GetAppContext(c)
	if !appCtx.Razorpay().VerifySignature(payload.RazorpayOrderID, payload.RazorpayPaymentID, payload.RazorpaySignature) {
		zap.L().Warn("payment signature mismatch", zap.String("razorpay_order_id", payload.RazorpayOrderID))
		return apperr.BadRequest(msgInvalidSignature)
	}

	db := GetDB(c)
	var order domain.Order
	err := db.Where("razorpay_order_id = ?", payload.RazorpayOrderID).First(&order).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(err, msgOrderNotFound)
	case err != nil:
		return apperr.Storage(err, "Error fetching order")
	}

	if order.Status == domain.OrderPaid {
		return ok(c, map[string]interface{}{"success": true, "order": order})
	}
	now := time.Now()
	if err := db.Model(&domain.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"status":     domain.OrderPaid,
		"payment_id": payload.RazorpayPaymentID,
		"paid_at":    now,
		"updated_at": now,
	}).Error; err != nil {
		return apperr.Storage(err, "Error updating order")
	}
	order.Status = domain.OrderPaid
	order.PaymentID = payload.RazorpayPaymentID
	order.PaidAt = &now

	appCtx.Notifier().OrderPaid(order)
	return ok(c, map[string]interface{}{"success": true, "order": order})
}
