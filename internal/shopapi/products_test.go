package shopapi

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saajjewels/storefront/internal/catalog"
	"github.com/saajjewels/storefront/internal/domain"
	"github.com/saajjewels/storefront/internal/guard"
	"github.com/saajjewels/storefront/internal/testutil"
)

func validProduct() map[string]interface{} {
	return map[string]interface{}{
		"name":            "Temple Necklace",
		"originalPrice":   "2499.00",
		"discountedPrice": 1999.5,
		"image":           "https://res.cloudinary.com/demo/image/upload/necklace.jpg",
		"description":     "Gold plated temple necklace",
		"category":        "Necklaces",
	}
}

func TestListProductsEmpty(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	rec := e.do(http.MethodGet, "/api/products", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListProductsIsRepeatable(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	testutil.SeedProducts(t, e.app.DB(),
		testutil.Product("Jhumka", "Earrings"),
		testutil.Product("Kada", "Bangles"))

	first := e.do(http.MethodGet, "/api/products", nil, nil)
	second := e.do(http.MethodGet, "/api/products", nil, nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Len(t, decode[[]domain.Product](t, first), 2)
}

func TestCreateProduct(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	rec := e.do(http.MethodPost, "/api/products", validProduct(), adminHeader())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	p := decode[domain.Product](t, rec)
	assert.NotZero(t, p.ID)
	assert.Equal(t, 2499.0, p.OriginalPrice)
	assert.Equal(t, 1999.5, p.DiscountedPrice)
	assert.Equal(t, "Necklaces", p.Category)

	got := e.do(http.MethodGet, fmt.Sprintf("/api/products/%d", p.ID), nil, nil)
	assert.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "Temple Necklace", decode[domain.Product](t, got).Name)
}

func TestCreateProductValidation(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	for _, field := range []string{"name", "originalPrice", "discountedPrice", "image", "description", "category"} {
		t.Run("missing "+field, func(t *testing.T) {
			body := validProduct()
			delete(body, field)
			rec := e.do(http.MethodPost, "/api/products", body, adminHeader())
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"message":"All fields are required"}`, rec.Body.String())
		})
	}

	body := validProduct()
	body["originalPrice"] = "abc"
	rec := e.do(http.MethodPost, "/api/products", body, adminHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Prices must be valid numbers"}`, rec.Body.String())

	var count int64
	require.NoError(t, e.app.DB().Model(&domain.Product{}).Count(&count).Error)
	assert.Zero(t, count, "no partial writes")
}

func TestCreateProductBlobImageUsesPlaceholder(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	body := validProduct()
	body["image"] = "blob:http://localhost:5173/6c1f0f3a"
	rec := e.do(http.MethodPost, "/api/products", body, adminHeader())
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, catalog.PlaceholderImage, decode[domain.Product](t, rec).Image)
}

func productForm(t *testing.T, method, target string, values map[string]string, file string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != "" {
		fw, err := w.CreateFormFile("image", file)
		require.NoError(t, err)
		_, _ = fw.Write([]byte("fake image bytes"))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(guard.HeaderAdminToken, testAdminToken)
	return req
}

func TestCreateProductMultipartUpload(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	values := map[string]string{
		"name":            "Kundan Ring",
		"originalPrice":   "899",
		"discountedPrice": "749",
		"image":           "blob:http://localhost/abc",
		"description":     "Adjustable kundan ring",
		"category":        "Rings",
	}
	rec := e.serve(productForm(t, http.MethodPost, "/api/products", values, "ring.JPG"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	p := decode[domain.Product](t, rec)
	assert.True(t, strings.HasPrefix(p.Image, "/uploads/"), p.Image)
	assert.True(t, strings.HasSuffix(p.Image, ".jpg"), p.Image)
	assert.Equal(t, 899.0, p.OriginalPrice)

	// the stored file is served back
	img := e.do(http.MethodGet, p.Image, nil, nil)
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "fake image bytes", img.Body.String())
}

func TestCreateProductMultipartWithoutFile(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	values := map[string]string{
		"name":            "Kundan Ring",
		"originalPrice":   "899",
		"discountedPrice": "oops",
		"image":           "https://cdn.example.com/ring.jpg",
		"description":     "Adjustable kundan ring",
		"category":        "Rings",
	}
	rec := e.serve(productForm(t, http.MethodPost, "/api/products", values, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Prices must be valid numbers"}`, rec.Body.String())
}

func TestGetProductNotFound(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	for _, id := range []string{"42", "abc"} {
		rec := e.do(http.MethodGet, "/api/products/"+id, nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"message":"Product not found"}`, rec.Body.String())
	}
}

func TestSearchProducts(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	testutil.SeedProducts(t, e.app.DB(),
		testutil.Product("a.b*", "Misc"),
		testutil.Product("axb5", "Misc"),
		testutil.Product("Pearl Drops", "Earrings"),
		testutil.Product("Silver Anklet", "Anklets"))

	cases := []struct {
		q    string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"a.b*", []string{"a.b*"}},
		{"EARRINGS", []string{"Pearl Drops"}},
		{"handcrafted silver", []string{"Silver Anklet"}},
	}
	for _, tc := range cases {
		rec := e.do(http.MethodGet, "/api/products/search?q="+url.QueryEscape(tc.q), nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var names []string
		for _, p := range decode[[]domain.Product](t, rec) {
			names = append(names, p.Name)
		}
		assert.Equal(t, tc.want, names, "q=%q", tc.q)
	}

	rec := e.do(http.MethodGet, "/api/products/search", nil, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpdateProduct(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	seeded := testutil.SeedProducts(t, e.app.DB(), testutil.Product("Jhumka", "Earrings"))[0]

	body := validProduct()
	rec := e.do(http.MethodPut, fmt.Sprintf("/api/products/%d", seeded.ID), body, adminHeader())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[domain.Product](t, rec)
	assert.Equal(t, seeded.ID, p.ID)
	assert.Equal(t, "Temple Necklace", p.Name)
	assert.Equal(t, "Necklaces", p.Category)
	assert.False(t, p.UpdatedAt.Before(seeded.UpdatedAt))

	partial := map[string]interface{}{"name": "Only a name"}
	rec = e.do(http.MethodPut, fmt.Sprintf("/api/products/%d", seeded.ID), partial, adminHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"All fields are required"}`, rec.Body.String())

	rec = e.do(http.MethodPut, "/api/products/9999", body, adminHeader())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Product not found"}`, rec.Body.String())
}

func TestDeleteProduct(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	seeded := testutil.SeedProducts(t, e.app.DB(), testutil.Product("Jhumka", "Earrings"))[0]
	target := fmt.Sprintf("/api/products/%d", seeded.ID)

	rec := e.do(http.MethodDelete, target, nil, adminHeader())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Product deleted successfully"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, target, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, target, nil, adminHeader()).Code)
}

func TestAdminGate(t *testing.T) {
	e := newTestEnv(t, testAdminToken)

	rec := e.do(http.MethodPost, "/api/products", validProduct(), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Not authenticated"}`, rec.Body.String())

	rec = e.do(http.MethodDelete, "/api/products/1", nil, map[string]string{guard.HeaderAdminToken: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var count int64
	require.NoError(t, e.app.DB().Model(&domain.Product{}).Count(&count).Error)
	assert.Zero(t, count)

	// reads stay public
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/products", nil, nil).Code)
}

func TestAdminGateDisabledWithoutToken(t *testing.T) {
	e := newTestEnv(t, "")
	rec := e.do(http.MethodPost, "/api/products", validProduct(), nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	p := decode[domain.Product](t, rec)
	rec = e.do(http.MethodDelete, fmt.Sprintf("/api/products/%d", p.ID), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMalformedProductJSON(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	rec := e.do(http.MethodPost, "/api/products", `{"name":`, adminHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductStatsAndExport(t *testing.T) {
	e := newTestEnv(t, testAdminToken)
	a := testutil.Product("Jhumka", "Earrings")
	a.OriginalPrice, a.DiscountedPrice = 1000, 800
	b := testutil.Product("Kada", "Bangles")
	b.OriginalPrice, b.DiscountedPrice = 2000, 1000
	testutil.SeedProducts(t, e.app.DB(), a, b)

	rec := e.do(http.MethodGet, "/api/admin/products/stats", nil, adminHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[catalog.PriceStats](t, rec)
	assert.Equal(t, 2, st.Count)
	assert.Equal(t, 800.0, st.MinPrice)
	assert.Equal(t, 1000.0, st.MaxPrice)
	assert.Equal(t, 35.0, st.MeanDiscountPercent)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/admin/products/stats", nil, nil).Code)

	rec = e.do(http.MethodGet, "/api/admin/products/export", nil, adminHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id,name,category,original_price,discounted_price"))
	assert.Contains(t, lines[1], "Jhumka")
}
