package shutdown

import (
	"context"
	"io"
	"net/http"

	"xsmodels/core"
)

// StopServer shuts srv down, letting open requests finish until ctx
// expires.
func StopServer(srv *http.Server) core.ShutdownFunc {
	return func(ctx context.Context) error {
		if err := srv.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

// Close adapts an io.Closer.
func Close(c io.Closer) core.ShutdownFunc {
	return func(context.Context) error { return c.Close() }
}

// Func adapts a function that ignores the deadline, such as a log flush.
func Func(fn func() error) core.ShutdownFunc {
	return func(context.Context) error { return fn() }
}
