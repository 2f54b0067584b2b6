//go:build !unix

package native

import (
	"fmt"
	"os"
)

// redirect swaps the os package's stream variables. Output the library
// writes below the Go runtime is not captured on these platforms.
func redirect(fd int, w *os.File) (func() error, error) {
	switch fd {
	case 1:
		old := os.Stdout
		os.Stdout = w
		return func() error { os.Stdout = old; return nil }, nil
	case 2:
		old := os.Stderr
		os.Stderr = w
		return func() error { os.Stderr = old; return nil }, nil
	}
	return nil, fmt.Errorf("unsupported descriptor %d", fd)
}
