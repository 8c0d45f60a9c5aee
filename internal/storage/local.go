package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// LocalStorage хранит файлы в каталоге на диске.
type LocalStorage struct {
	root string
	now  func() time.Time
}

func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root, now: time.Now}
}

func (s *LocalStorage) Save(ctx context.Context, r io.Reader, originalName string, opts SaveOptions) (*StoredFile, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(relativeDir(opts)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	mime, body, err := sniff(r)
	if err != nil {
		return nil, err
	}

	name := StoredName(s.now(), originalName)
	full := filepath.Join(dir, name)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil, ErrExists
	}
	if err != nil {
		return nil, err
	}
	size, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return nil, err
	}

	return &StoredFile{
		StoredName:   name,
		OriginalName: originalName,
		Path:         full,
		Size:         size,
		Extension:    Extension(originalName),
		MimeType:     mime,
	}, nil
}

func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, ErrNotExist
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) bool {
	if path == "" {
		return false
	}
	return os.Remove(path) == nil
}
