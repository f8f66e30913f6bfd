// Package upload stores a single request file in an object store and hands
// its durable URL to the request handler.
package upload

import (
	"context"
	"io"
)

// Uploader persists one file and returns the URL it is reachable at
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	Name() string
}
