package shopapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/saajjewels/storefront/config"
	"github.com/saajjewels/storefront/internal/app"
	"github.com/saajjewels/storefront/internal/guard"
	"github.com/saajjewels/storefront/internal/testutil"
	"github.com/saajjewels/storefront/internal/webserver"
)

const testAdminToken = "admin-s3cret"

type testEnv struct {
	t   *testing.T
	app *app.Application
	srv *webserver.Server
}

func newTestEnv(t *testing.T, adminToken string, opts ...func(*config.AppConfig)) *testEnv {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Admin.Token = adminToken
	cfg.Auth.JwtSecret = "test-jwt-secret"
	for _, opt := range opts {
		opt(cfg)
	}
	a := app.NewWithDB(cfg, testutil.NewSQLiteDB(t, true))
	t.Cleanup(func() { a.Notifier().Wait() })

	return &testEnv{t: t, app: a, srv: Compose(a)}
}

func adminHeader() map[string]string {
	return map[string]string{guard.HeaderAdminToken: testAdminToken}
}

func bearer(token string) map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

// do sends body as JSON; strings are sent verbatim
func (e *testEnv) do(method, target string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	e.t.Helper()
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, target, nil)
	case string:
		req = httptest.NewRequest(method, target, bytes.NewBufferString(b))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
