package sigcache

import (
	"encoding/binary"
	"hash/fnv"
	"os"
)

// Signature is a shallow fingerprint of a directory: its own modification
// time and the name and modification time of every immediate child.
// Changes deeper in the tree are only seen through the mtimes they bump.
type Signature uint64

// ShallowSignature computes the Signature of dir. It never fails: a value
// that cannot be read contributes zero to the hash.
//
// Children are folded in the order os.ReadDir returns them.
func ShallowSignature(dir string) Signature {
	h := fnv.New64a()

	var buf [8]byte

	writeTime := func(nanos int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(nanos)) //nolint:gosec // Bit pattern only
		_, _ = h.Write(buf[:])
	}

	writeTime(modTime(dir))

	entries, _ := os.ReadDir(dir) //nolint:errcheck // Unreadable directories hash their mtime only

	for _, entry := range entries {
		_, _ = h.Write([]byte(entry.Name()))

		var nanos int64
		if info, err := entry.Info(); err == nil {
			nanos = info.ModTime().UnixNano()
		}

		writeTime(nanos)
	}

	return Signature(h.Sum64())
}

// modTime returns the mtime of path without following a final symlink, or zero.
func modTime(path string) int64 {
	info, err := os.Lstat(path)
	if err != nil {
		return 0
	}

	return info.ModTime().UnixNano()
}
