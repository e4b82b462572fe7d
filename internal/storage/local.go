// Package storage keeps uploaded files on the local disk.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	DefaultMaxSize = 10 << 20
	sniffLen       = 3072
	namePrefix     = "file-"
)

var (
	ErrTooLarge        = errors.New("file exceeds the size limit")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrInvalidName     = errors.New("invalid file name")
	ErrNotFound        = errors.New("file not found")
)

// AllowedTypes is the upload allow-list, matched against the sniffed content type.
var AllowedTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// StoredFile describes a file written by Save.
type StoredFile struct {
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
}

type Local struct {
	dir     string
	maxSize int64
}

// NewLocal creates dir if needed. A non-positive maxSize means DefaultMaxSize.
func NewLocal(dir string, maxSize int64) (*Local, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, maxSize: maxSize}, nil
}

func (l *Local) MaxSize() int64 { return l.maxSize }

// Save sniffs the content type, rejects anything outside AllowedTypes and
// writes the stream under a generated name.
func (l *Local) Save(src io.Reader, originalName string) (*StoredFile, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	if !mimetype.EqualsAny(detected.String(), AllowedTypes...) {
		return nil, ErrUnsupportedType
	}
	mimeType := strings.SplitN(detected.String(), ";", 2)[0]

	name := namePrefix + uuid.NewString() + extension(originalName, detected)
	path := filepath.Join(l.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	rest := io.LimitReader(src, l.maxSize-int64(len(head))+1)
	size, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), rest))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && size > l.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &StoredFile{
		Filename:     name,
		OriginalName: filepath.Base(originalName),
		MimeType:     mimeType,
		Size:         size,
	}, nil
}

// Path returns the on-disk location of a stored file.
func (l *Local) Path(filename string) (string, error) {
	if !validName(filename) {
		return "", ErrInvalidName
	}
	path := filepath.Join(l.dir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

func (l *Local) Remove(filename string) error {
	if !validName(filename) {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(l.dir, filename))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// ModTime reports when a stored file was last written.
func (l *Local) ModTime(filename string) (time.Time, error) {
	if !validName(filename) {
		return time.Time{}, ErrInvalidName
	}
	info, err := os.Stat(filepath.Join(l.dir, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// List returns the names of all generated files in the directory.
func (l *Local) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), namePrefix) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func validName(name string) bool {
	return name != "" &&
		name == filepath.Base(name) &&
		name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`)
}

func extension(originalName string, detected *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > 1 && len(ext) <= 10 && isAlnum(ext[1:]) {
		return ext
	}
	return detected.Extension()
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
