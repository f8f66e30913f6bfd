// Package serverless adapts the composed storefront to hosts that invoke a
// single handler function per request.
package serverless

import (
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

const (
	MsgInitFailed    = "Server initialization failed"
	MsgInternalError = "Internal Server Error"
)

// Entry builds its handler on the first request and keeps it for the life
// of the process. Concurrent first requests share one initialization; a
// failed initialization is remembered and never retried.
type Entry struct {
	handler func() (http.Handler, error)
}

// NewEntry wraps init. A panic inside init counts as a failure.
func NewEntry(init func() (http.Handler, error)) *Entry {
	return &Entry{handler: sync.OnceValues(func() (h http.Handler, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("init panic: %v", r)
			}
		}()
		h, err = init()
		if err == nil && h == nil {
			err = fmt.Errorf("init returned no handler")
		}
		if err != nil {
			zap.L().Error("failed to init app for serverless", zap.Error(err))
		}
		return h, err
	})}
}

func (e *Entry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, err := e.handler()
	if err != nil {
		http.Error(w, MsgInitFailed, http.StatusInternalServerError)
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("serverless handler error", zap.Any("panic", rec))
			http.Error(w, MsgInternalError, http.StatusInternalServerError)
		}
	}()
	h.ServeHTTP(w, r)
}
