package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when no usable encoder exists for
	// the requested output format.
	ErrUnsupportedFormat = errors.New("unsupported output format")

	// ErrSourceNotFound is returned when the source file does not exist.
	ErrSourceNotFound = errors.New("source image not found")
)

// Error records a failed engine operation on a named source.
type Error struct {
	Op   string // "config", "load", "encode", "cache"
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("engine %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
