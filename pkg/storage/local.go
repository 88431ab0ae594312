package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned by Put when the stream exceeds its byte limit.
var ErrTooLarge = errors.New("object exceeds size limit")

// Object describes a stored file.
type Object struct {
	Name     string
	Size     int64
	Checksum string // hex sha256
}

// LocalStorage keeps uploaded course materials on the local filesystem.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates root if needed.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		root = "./materials"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// Put streams r into name, reading at most limit bytes (limit <= 0 means unlimited).
// The file only appears under name once it is fully written.
func (s *LocalStorage) Put(name string, r io.Reader, limit int64) (Object, error) {
	target, err := s.resolve(name)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return Object{}, fmt.Errorf("prepare directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), src)
	if err != nil {
		return Object{}, fmt.Errorf("write %s: %w", name, err)
	}
	if limit > 0 && size > limit {
		return Object{}, ErrTooLarge
	}
	if err := tmp.Close(); err != nil {
		return Object{}, fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return Object{}, fmt.Errorf("commit %s: %w", name, err)
	}
	committed = true
	return Object{Name: name, Size: size, Checksum: hex.EncodeToString(hasher.Sum(nil))}, nil
}

// Open returns a read handle. The caller closes it.
func (s *LocalStorage) Open(name string) (*os.File, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

// Remove deletes name. Removing a missing object is not an error.
func (s *LocalStorage) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// resolve maps an object name to a path that cannot escape the root.
func (s *LocalStorage) resolve(name string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.ToSlash(name))
	if cleaned == "/" || strings.HasPrefix(filepath.Base(cleaned), ".") {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.root, cleaned), nil
}
