//go:build linux

package trash

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/rs/xid"
)

// New returns the freedesktop.org home trash.
func New() Trasher {
	return Home{}
}

// Home is the freedesktop.org home trash ($XDG_DATA_HOME/Trash).
// Moves are plain renames, so paths on other filesystems fail and the
// caller falls back to permanent deletion.
type Home struct{}

// Dir returns the trash directory, or an empty string if none can be determined.
func (Home) Dir() string {
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		return filepath.Join(data, "Trash")
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}

	return filepath.Join(home, ".local", "share", "Trash")
}

// Supported reports whether a trash directory can be located.
func (h Home) Supported() bool {
	return h.Dir() != ""
}

// Trash moves path into the trash and records its origin in a .trashinfo file.
func (h Home) Trash(path string) error {
	dir := h.Dir()
	if dir == "" {
		return ErrUnsupported
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}

	if _, err := os.Lstat(abs); err != nil {
		return fmt.Errorf("accessing path %q: %w", abs, err)
	}

	filesDir := filepath.Join(dir, "files")
	infoDir := filepath.Join(dir, "info")

	for _, d := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return fmt.Errorf("creating trash directory: %w", err)
		}
	}

	name := filepath.Base(abs)
	if fileutil.IsExist(filepath.Join(filesDir, name)) || fileutil.IsExist(filepath.Join(infoDir, name+".trashinfo")) {
		name = name + "." + xid.New().String()
	}

	infoPath := filepath.Join(infoDir, name+".trashinfo")
	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		(&url.URL{Path: abs}).EscapedPath(), time.Now().Format("2006-01-02T15:04:05"))

	if err := os.WriteFile(infoPath, []byte(info), 0o600); err != nil {
		return fmt.Errorf("writing trash info: %w", err)
	}

	if err := os.Rename(abs, filepath.Join(filesDir, name)); err != nil {
		_ = os.Remove(infoPath)

		return fmt.Errorf("moving %q to trash: %w", abs, err)
	}

	return nil
}
