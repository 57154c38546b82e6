//go:build !unix

package logging

// CaptureStderr is a no-op where file descriptors cannot be redirected.
func CaptureStderr() (restore func(), err error) {
	return func() {}, nil
}
