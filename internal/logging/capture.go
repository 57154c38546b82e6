//go:build unix

package logging

import (
	"os"

	"golang.org/x/sys/unix"
)

// CaptureStderr redirects file descriptor 2 into the log until the returned
// restore function runs. Audio C libraries (ALSA) write there directly and
// would otherwise corrupt the TUI.
func CaptureStderr() (restore func(), err error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := unix.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := unix.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		unix.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		forward(r)
	}()

	return func() {
		_ = unix.Dup2(orig, int(os.Stderr.Fd()))
		_ = unix.Close(orig)
		w.Close()
		<-done
		r.Close()
	}, nil
}
