package native

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

// captureMu guards the process-wide descriptors. Captures do not nest.
var captureMu sync.Mutex

// flushNative flushes buffers the library keeps on its side of the stream
// before the descriptor is switched back. The cgo backend replaces it.
var flushNative = func() {}

// CaptureStdout runs fn with the process standard output redirected into a
// buffer and returns what was written. The original stream is restored before
// CaptureStdout returns, including when fn fails or panics.
func CaptureStdout(fn func() error) (string, error) {
	return capture(1, fn)
}

// CaptureStderr is CaptureStdout for the process error stream.
func CaptureStderr(fn func() error) (string, error) {
	return capture(2, fn)
}

func capture(fd int, fn func() error) (out string, err error) {
	if !captureMu.TryLock() {
		return "", ErrCaptureBusy
	}
	defer captureMu.Unlock()

	r, w, err := os.Pipe()
	if err != nil {
		return "", fmt.Errorf("capture pipe: %w", err)
	}

	restore, err := redirect(fd, w)
	if err != nil {
		_ = r.Close()
		_ = w.Close()
		return "", fmt.Errorf("redirect fd %d: %w", fd, err)
	}

	// Drain concurrently so a chatty call cannot fill the pipe and block.
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	defer func() {
		flushNative()
		restoreErr := restore()
		_ = w.Close()
		<-done
		_ = r.Close()
		out = buf.String()
		if err == nil && restoreErr != nil {
			err = fmt.Errorf("restore fd %d: %w", fd, restoreErr)
		}
	}()

	return "", fn()
}
