// Package cache remembers content hashes of source files so the watch loops
// (internal/watch, internal/devserver) can tell a genuine edit apart from
// the spurious extra events editors emit on save (truncate-then-write,
// atomic rename-into-place, a no-op re-save). It is in-memory only: FIP's
// module cache in pkg/interp is a separate evaluated-environment cache keyed
// by resolved path, and the interpreter keeps no on-disk state beyond source
// files.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// Hashes maps a file path to the SHA-256 of its content the last time it was
// seen.
type Hashes struct {
	seen map[string]string
}

// New creates an empty hash table.
func New() *Hashes {
	return &Hashes{seen: make(map[string]string)}
}

// Changed reports whether path's content differs from the last call and
// records the new hash. A file that cannot be read reports changed, so the
// caller's own re-read surfaces the error instead of it vanishing here.
func (h *Hashes) Changed(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	sum := sha256.Sum256(data)
	current := hex.EncodeToString(sum[:])
	if h.seen[path] == current {
		return false
	}
	h.seen[path] = current
	return true
}
