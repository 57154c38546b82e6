// Package errmsg turns failures into messages fit for the status line and
// the terminal.
package errmsg

import (
	"context"
	"errors"
	"fmt"
)

// Op names the operation that failed, phrased to follow "Failed to".
type Op string

const (
	// Startup
	OpConfigLoad    Op = "load configuration"
	OpStoreOpen     Op = "open database"
	OpEngineConnect Op = "connect to playback engine"

	// Library
	OpLibraryScan Op = "scan library"
	OpLibraryLoad Op = "load library"

	// Session
	OpSessionEnded   Op = "keep the session running"
	OpFavoriteToggle Op = "update favorites"
	OpHistoryLoad    Op = "load listening history"

	// Last.fm
	OpLastfmLink   Op = "link Last.fm account"
	OpLastfmUnlink Op = "unlink Last.fm account"
	OpLastfmStatus Op = "read Last.fm status"
)

// Format renders "Failed to <op>: <cause>", or "" for a nil error.
// Context timeouts and cancellations read as such instead of the raw
// context error text.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %s", op, cause(err))
}

func cause(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return err.Error()
	}
}

// Error is a failure tagged with the operation it interrupted.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string { return Format(e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Wrap tags err with op. It returns nil for a nil error.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
