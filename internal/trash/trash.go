// Package trash moves files to the platform recycle bin when one is available.
package trash

import "errors"

// ErrUnsupported is returned when the platform has no usable trash.
var ErrUnsupported = errors.New("trash not supported on this platform")

// Trasher moves paths to a recycle bin.
type Trasher interface {
	// Supported reports whether Trash can be attempted at all.
	Supported() bool
	// Trash moves path to the recycle bin.
	Trash(path string) error
}

// Unsupported is a Trasher for platforms without a trash.
type Unsupported struct{}

// Supported always returns false.
func (Unsupported) Supported() bool { return false }

// Trash always returns ErrUnsupported.
func (Unsupported) Trash(string) error { return ErrUnsupported }
