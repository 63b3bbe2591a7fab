package filesystem

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store manages the server-side upload directory: creation, collision-free
// naming, batch deletion and age-based purging. Cleanup failures are logged
// and swallowed so best-effort deletion never masks a request's primary
// outcome.
type Store struct {
	logger *log.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger routes cleanup warnings to a custom logger (for tests).
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store. Warnings go to the standard logger by default.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{logger: log.Default()}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// EnsureDirectory creates dir and any missing parents. It is a no-op when the
// directory already exists.
func (s *Store) EnsureDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// UniqueFilename builds a collision-resistant name for originalName in the
// form {prefix_}{timestamp}_{token}_{base}{ext}. The original extension is
// preserved and the base is sanitized so client-supplied names cannot smuggle
// path segments into the upload directory.
func (s *Store) UniqueFilename(originalName, prefix string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := sanitizeBase(strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName)))
	if base == "" {
		base = "file"
	}

	stamp := time.Now().Format("20060102T150405")
	token := uuid.NewString()[:8]

	name := fmt.Sprintf("%s_%s_%s%s", stamp, token, base, ext)
	if prefix != "" {
		name = sanitizeBase(prefix) + "_" + name
	}
	return name
}

// RemoveFiles deletes every listed path and returns once all deletions have
// completed. Missing paths are skipped silently; other failures are logged
// and skipped so one bad path never blocks cleanup of the rest.
func (s *Store) RemoveFiles(paths ...string) {
	var wg sync.WaitGroup

	for _, path := range paths {
		if path == "" {
			continue
		}
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				s.logger.Printf("cleanup: failed to remove %s: %v", p, err)
			}
		}(path)
	}

	wg.Wait()
}

// DirectorySize walks dir and sums the sizes of all regular files beneath it.
// A missing directory counts as empty, not as an error.
func (s *Store) DirectorySize(dir string) (int64, error) {
	var total int64

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// Entry vanished mid-walk; treat as already gone.
			return nil
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("measure directory %s: %w", dir, err)
	}

	return total, nil
}

// RemoveOlderThan deletes regular files directly under dir whose modification
// time is older than maxAge and returns how many were removed. A missing
// directory yields zero. Per-file failures are logged and skipped; a file
// vanishing between listing and deletion counts as already deleted.
func (s *Store) RemoveOlderThan(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read directory %s: %w", dir, err)
	}

	cutoff := time.Now().Add(-maxAge)
	deleted := 0

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Printf("cleanup: failed to stat %s: %v", entry.Name(), err)
			}
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				s.logger.Printf("cleanup: failed to remove %s: %v", path, err)
			}
			continue
		}
		deleted++
	}

	return deleted, nil
}

// FormatSize renders bytes human-readably with one decimal place, using
// 1024-based units up to GB. Zero is rendered as "0 B" exactly.
func FormatSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}

	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}

	return fmt.Sprintf("%.1f %s", size, units[i])
}

// sanitizeBase keeps letters, digits, dot, dash and underscore, mapping spaces
// to dashes and stripping anything that could carry a path segment.
func sanitizeBase(name string) string {
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return -1
	}, name)
	return strings.ReplaceAll(name, "..", "")
}
