//go:build !linux

package trash

// New returns the trash for the current platform.
func New() Trasher {
	return Unsupported{}
}
