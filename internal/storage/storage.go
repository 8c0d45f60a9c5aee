// Package storage хранит файлы, прикреплённые к ресурсам: локальная ФС или S3.
package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotExist файла по указанному пути нет.
var ErrNotExist = errors.New("stored file does not exist")

// ErrExists файл с таким именем уже сохранён, перезаписи не делаем.
var ErrExists = errors.New("stored file already exists")

// sniffLen сколько байт читается для определения MIME-типа.
const sniffLen = 3072

// SaveOptions куда раскладывать файл.
type SaveOptions struct {
	OwnerID  int64
	Kind     string
	FolderID *int64
}

// StoredFile результат сохранения.
type StoredFile struct {
	StoredName   string `json:"stored_name"`
	OriginalName string `json:"original_name"`
	Path         string `json:"file_path"`
	Size         int64  `json:"file_size"`
	Extension    string `json:"file_type"`
	MimeType     string `json:"mime_type"`
}

// Storage контракт файлового хранилища.
type Storage interface {
	Save(ctx context.Context, r io.Reader, originalName string, opts SaveOptions) (*StoredFile, error)
	// Open возвращает ErrNotExist, если файла нет.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete удаляет файл, ошибки не возвращаются.
	Delete(ctx context.Context, path string) bool
}

// StoredName имя файла вида {unix}_{md5(unix_name)[:8]}{ext}.
func StoredName(now time.Time, originalName string) string {
	ts := now.Unix()
	sum := md5.Sum([]byte(fmt.Sprintf("%d_%s", ts, originalName)))
	return fmt.Sprintf("%d_%s%s", ts, hex.EncodeToString(sum[:])[:8], filepath.Ext(originalName))
}

// Extension расширение в нижнем регистре без точки.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// relativeDir каталог внутри корня хранилища: kind[/folder_N].
func relativeDir(opts SaveOptions) string {
	kind := opts.Kind
	if kind == "" {
		kind = "academic"
	}
	if opts.FolderID != nil {
		return path.Join(kind, fmt.Sprintf("folder_%d", *opts.FolderID))
	}
	return kind
}

// sniff читает начало потока для mimetype и возвращает reader с полным содержимым.
func sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	head = head[:n]
	mt := mimetype.Detect(head)
	return mt.String(), io.MultiReader(bytes.NewReader(head), r), nil
}
