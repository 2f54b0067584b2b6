//go:build unix

package native

import (
	"os"

	"golang.org/x/sys/unix"
)

// redirect points fd at w and returns a func that puts the original back.
func redirect(fd int, w *os.File) (func() error, error) {
	saved, err := unix.Dup(fd)
	if err != nil {
		return nil, err
	}
	if err := dup2(int(w.Fd()), fd); err != nil {
		_ = unix.Close(saved)
		return nil, err
	}
	return func() error {
		defer unix.Close(saved)
		return dup2(saved, fd)
	}, nil
}
