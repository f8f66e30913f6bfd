// Package handler is the serverless function entry. The host calls Handler
// once per request; the application is built on the first call and reused.
package handler

import (
	"net/http"
	"os"

	"github.com/saajjewels/storefront/config"
	"github.com/saajjewels/storefront/internal/app"
	"github.com/saajjewels/storefront/internal/serverless"
	"github.com/saajjewels/storefront/internal/shopapi"
)

var entry = serverless.NewEntry(func() (http.Handler, error) {
	cfg, err := config.LoadConfig(os.Getenv("STOREFRONT_CONFIG"))
	if err != nil {
		return nil, err
	}
	application := app.NewApplication(cfg)
	application.Init(cfg)
	return shopapi.Compose(application), nil
})

// Handler serves one request
func Handler(w http.ResponseWriter, r *http.Request) {
	entry.ServeHTTP(w, r)
}
