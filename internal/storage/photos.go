package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// AllowedExtensions lists the accepted photo extensions, lower case, without dot.
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"webp": {},
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	ext := filepath.Ext(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func Allowed(name string) bool {
	_, ok := AllowedExtensions[Extension(name)]
	return ok
}

// PhotoStore saves uploaded photos under unique names in a single directory.
type PhotoStore struct {
	dir string
	now func() time.Time
}

func NewPhotoStore(dir string) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &PhotoStore{dir: dir, now: time.Now}, nil
}

func (s *PhotoStore) Dir() string {
	return s.dir
}

// UniqueName builds "<timestamp>_<random>_<sanitized name>.<ext>". Directory
// components are dropped and the rest of the original name is slugified.
func (s *PhotoStore) UniqueName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := Extension(base)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	safe := slug.Make(stem)
	if safe == "" {
		safe = "foto"
	}

	prefix := s.now().Format("20060102_150405")
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	name := prefix + "_" + random + "_" + safe
	if ext != "" {
		name += "." + ext
	}
	return name
}

// Save durably writes data under a new unique name and returns that name.
// Nothing is left behind when the write fails.
func (s *PhotoStore) Save(original string, data []byte) (string, error) {
	name := s.UniqueName(original)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return name, nil
}

// Remove deletes a previously saved photo. Missing files are ignored.
func (s *PhotoStore) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
