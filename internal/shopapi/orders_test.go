package shopapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saajjewels/storefront/config"
	"github.com/saajjewels/storefront/internal/domain"
	"github.com/saajjewels/storefront/internal/payment"
	"github.com/saajjewels/storefront/internal/testutil"
)

func registerShopper(t *testing.T, e *testEnv, email string) string {
	t.Helper()
	rec := e.do(http.MethodPost, "/auth/register", map[string]string{
		"name":     "Meera",
		"email":    email,
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[authResult](t, rec)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestRegisterAndLogin(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	registerShopper(t, e, "Meera@Example.com")

	rec := e.do(http.MethodPost, "/auth/register", map[string]string{
		"name": "Meera", "email": "meera@example.com", "password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"message":"Email already registered"}`, rec.Body.String())

	rec = e.do(http.MethodPost, "/auth/register", map[string]string{
		"name": "Short", "email": "short@example.com", "password": "123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"password must be at least 6"}`, rec.Body.String())

	rec = e.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "meera@example.com", "password": "wrong-pass",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid email or password"}`, rec.Body.String())

	rec = e.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "MEERA@example.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[authResult](t, rec)
	assert.Equal(t, "meera@example.com", res.User.Email)
	assert.Equal(t, domain.RoleCustomer, res.User.Role)
	assert.NotContains(t, rec.Body.String(), "secret123")

	me := e.do(http.MethodGet, "/api/users/me", nil, bearer(res.Token))
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "meera@example.com", decode[domain.User](t, me).Email)
}

func TestUsersMeRequiresSession(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	rec := e.do(http.MethodGet, "/api/users/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Not authenticated"}`, rec.Body.String())

	rec = e.do(http.MethodGet, "/api/users/me", nil, bearer("not-a-jwt"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func placeOrder(t *testing.T, e *testEnv, token string) domain.Order {
	t.Helper()
	a := testutil.Product("Jhumka", "Earrings")
	a.DiscountedPrice = 499.99
	b := testutil.Product("Kada", "Bangles")
	b.DiscountedPrice = 1250
	seeded := testutil.SeedProducts(t, e.app.DB(), a, b)

	rec := e.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": seeded[0].ID, "quantity": 2},
			{"productId": seeded[1].ID, "quantity": 1},
		},
		"shippingAddress": "12 MG Road, Jaipur",
		"phone":           "9876543210",
	}, bearer(token))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.Order](t, rec)
}

func TestCreateOrder(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	token := registerShopper(t, e, "meera@example.com")

	order := placeOrder(t, e, token)
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, 2249.98, order.TotalAmount)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "Jhumka", order.Items[0].Name)
	assert.Regexp(t, `^[0-9]+$`, order.OrderNumber)

	rec := e.do(http.MethodGet, "/api/users/me/orders", nil, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]domain.Order](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, order.OrderNumber, mine[0].OrderNumber)
}

func TestCreateOrderValidation(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	token := registerShopper(t, e, "meera@example.com")

	rec := e.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"items":           []map[string]interface{}{{"productId": 404, "quantity": 1}},
		"shippingAddress": "Jaipur",
	}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Product 404 not found"}`, rec.Body.String())

	rec = e.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"items":           []map[string]interface{}{{"productId": 1, "quantity": 0}},
		"shippingAddress": "Jaipur",
	}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/orders", map[string]interface{}{"items": []interface{}{}}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/orders", map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOrders(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	token := registerShopper(t, e, "meera@example.com")
	order := placeOrder(t, e, token)
	target := fmt.Sprintf("/api/admin/orders/%d", order.ID)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/admin/orders", nil, nil).Code)

	rec := e.do(http.MethodGet, "/api/admin/orders?status=pending", nil, adminHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data  []domain.Order `json:"data"`
		Total int64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.EqualValues(t, 1, page.Total)
	require.NotNil(t, page.Data[0].Customer)
	assert.Equal(t, "meera@example.com", page.Data[0].Customer.Email)

	rec = e.do(http.MethodPut, target+"/status", map[string]string{"status": "teleported"}, adminHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid order status"}`, rec.Body.String())

	rec = e.do(http.MethodPut, target+"/status", map[string]string{"status": "Shipped"}, adminHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.OrderShipped, decode[domain.Order](t, rec).Status)

	rec = e.do(http.MethodGet, "/api/admin/orders/export", nil, adminHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.True(t, len(rec.Body.Bytes()) > 2 && string(rec.Body.Bytes()[:2]) == "PK", "xlsx is a zip archive")

	rec = e.do(http.MethodDelete, target, nil, adminHeader())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, target, nil, adminHeader()).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, target, nil, adminHeader()).Code)
}

func TestCellName(t *testing.T) {
	assert.Equal(t, "A1", cellName(0, 1))
	assert.Equal(t, "H12", cellName(7, 12))
}

// newGateway fakes the Razorpay orders API. Each call returns a fresh
// order id and bumps *calls.
func newGateway(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		var body struct {
			Amount  int64  `json:"amount"`
			Receipt string `json:"receipt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"id":"order_TEST%d","entity":"order","amount":%d,"currency":"INR","receipt":%q,"status":"created"}`, n, body.Amount, body.Receipt)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newPaymentEnv(t *testing.T, gw *httptest.Server) *testEnv {
	t.Helper()
	return newTestEnv(t, testAdminToken, func(cfg *config.AppConfig) {
		cfg.Razorpay.KeyId = "rzp_test_key"
		cfg.Razorpay.KeySecret = "rzp_secret"
		cfg.Razorpay.BaseURL = gw.URL
	})
}

func TestRazorpayCheckout(t *testing.T) {
	gw, _ := newGateway(t)
	e := newPaymentEnv(t, gw)
	token := registerShopper(t, e, "meera@example.com")
	order := placeOrder(t, e, token)

	rec := e.do(http.MethodGet, "/api/razorpay/key", nil, nil)
	assert.JSONEq(t, `{"keyId":"rzp_test_key"}`, rec.Body.String())

	rec = e.do(http.MethodPost, "/api/razorpay/order", map[string]interface{}{"orderId": order.ID}, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "order_TEST1", created["id"])
	assert.EqualValues(t, 224998, created["amount"])
	assert.Equal(t, order.OrderNumber, created["receipt"])

	rec = e.do(http.MethodPost, "/api/razorpay/verify", map[string]string{
		"razorpay_order_id":   "order_TEST1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "deadbeef",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid payment signature"}`, rec.Body.String())

	rec = e.do(http.MethodPost, "/api/razorpay/verify", map[string]string{
		"razorpay_order_id":   "order_TEST1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payment.Sign("rzp_secret", "order_TEST1", "pay_1"),
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stored domain.Order
	require.NoError(t, e.app.DB().First(&stored, order.ID).Error)
	assert.Equal(t, domain.OrderPaid, stored.Status)
	assert.Equal(t, "pay_1", stored.PaymentID)
	assert.NotNil(t, stored.PaidAt)

	// paid orders cannot be charged again
	rec = e.do(http.MethodPost, "/api/razorpay/order", map[string]interface{}{"orderId": order.ID}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRazorpayNotConfigured(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	token := registerShopper(t, e, "meera@example.com")
	order := placeOrder(t, e, token)

	rec := e.do(http.MethodPost, "/api/razorpay/order", map[string]interface{}{"orderId": order.ID}, bearer(token))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "Payments are not available", body["message"])
}

func TestRazorpayOrderBelongsToShopper(t *testing.T) {
	gw, calls := newGateway(t)
	e := newPaymentEnv(t, gw)
	token := registerShopper(t, e, "meera@example.com")
	order := placeOrder(t, e, token)
	body := map[string]interface{}{"orderId": order.ID}

	rec := e.do(http.MethodPost, "/api/razorpay/order", body, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "order_TEST1", decode[map[string]interface{}](t, rec)["id"])

	rec = e.do(http.MethodPost, "/api/razorpay/order", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := registerShopper(t, e, "ravi@example.com")
	rec = e.do(http.MethodPost, "/api/razorpay/order", body, bearer(other))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Order not found"}`, rec.Body.String())

	// a repeated checkout reuses the gateway order
	rec = e.do(http.MethodPost, "/api/razorpay/order", body, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	again := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "order_TEST1", again["id"])
	assert.EqualValues(t, 224998, again["amount"])
	assert.Equal(t, "INR", again["currency"])
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))

	rec = e.do(http.MethodPost, "/api/razorpay/verify", map[string]string{
		"razorpay_order_id":   "order_TEST1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payment.Sign("rzp_secret", "order_TEST1", "pay_1"),
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stored domain.Order
	require.NoError(t, e.app.DB().First(&stored, order.ID).Error)
	assert.Equal(t, domain.OrderPaid, stored.Status)
}
