// Package artifact owns the temporary-file namespace of the pipeline:
// request-scoped directories, collision-free naming, and guaranteed removal
// once a request reaches a terminal state.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// File describes a fetched or transcoded artifact on disk. Ownership stays
// with the scope that produced it; consumers only get a read-only handle.
type File struct {
	Path      string
	SizeBytes int64
	MimeHint  string
}

// Store manages the temporary-directory root shared by all requests.
// Concurrent requests never collide because every scope directory carries a
// unique name, so no locking is required.
type Store struct {
	root string
}

// NewStore creates (if necessary) and wraps the temporary root directory.
func NewStore(root string) (*Store, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), "ytaudio")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create temp root %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Root returns the temporary root directory.
func (s *Store) Root() string { return s.root }

// NewScope allocates a uniquely named directory for one request. The caller
// must Close the scope when the request reaches a terminal state.
func (s *Store) NewScope() (*Scope, error) {
	dir := filepath.Join(s.root, uuid.NewString())
	if err := os.Mkdir(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create request scope: %w", err)
	}
	return &Scope{dir: dir}, nil
}

// Purge removes every scope directory under the root. It is idempotent:
// purging an empty or missing root is a no-op. Intended for operator
// cleanup after abnormal process termination.
func (s *Store) Purge() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read temp root: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			return fmt.Errorf("purge %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Scope is the artifact namespace of a single request.
type Scope struct {
	dir string
}

// Dir returns the scope directory where backends and the transcoder place
// their files.
func (sc *Scope) Dir() string { return sc.dir }

// Close removes the scope directory and everything in it. Safe to call more
// than once.
func (sc *Scope) Close() error {
	return os.RemoveAll(sc.dir)
}

// unsafeChars are stripped from titles before use as filenames, matching the
// characters rejected by common filesystems.
const unsafeChars = `<>:"/\|?*`

// maxNameRunes caps the title part of generated filenames to avoid
// path-length problems with long video titles.
const maxNameRunes = 100

// SafeName derives a filesystem-safe filename from a video title. Unsafe
// and control characters are dropped, the result is length-capped, and an
// empty or fully-stripped title falls back to "audio".
func SafeName(title, ext string) string {
	var b strings.Builder
	for _, r := range title {
		if strings.ContainsRune(unsafeChars, r) || unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}

	name := strings.TrimSpace(b.String())
	runes := []rune(name)
	if len(runes) > maxNameRunes {
		name = string(runes[:maxNameRunes])
	}
	if name == "" {
		name = "audio"
	}
	return name + ext
}
