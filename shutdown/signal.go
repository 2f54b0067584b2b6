package shutdown

import (
	"os"
	"sync"
	"syscall"

	"xsmodels/core"
)

// signalCounter starts a graceful stop on the first signal and calls
// force on the second.
type signalCounter struct {
	mu    sync.Mutex
	count int
	force func(os.Signal)
}

// observe records sig and reports whether it was the first.
func (c *signalCounter) observe(sig os.Signal) bool {
	c.mu.Lock()
	c.count++
	n := c.count
	c.mu.Unlock()
	if n >= 2 && c.force != nil {
		c.force(sig)
	}
	return n == 1
}

func (c *signalCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// ExitCodeFor maps a stop signal to the conventional exit status.
func ExitCodeFor(sig os.Signal) int {
	switch sig {
	case syscall.SIGTERM:
		return core.ExitCodeSIGTERM
	case os.Interrupt:
		return core.ExitCodeSIGINT
	default:
		return core.ExitCodeError
	}
}
