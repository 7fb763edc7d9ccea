// Package document describes a user-selected file: its identity, declared
// metadata and a way to read its bytes on demand.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// File is an immutable handle on a selected file. Bytes are never held by
// the File itself; Open returns a fresh reader each time.
type File struct {
	id       uuid.UUID
	name     string
	size     int64
	mimeType string
	open     func() (io.ReadSeekCloser, error)
}

// Option adjusts how a File is constructed.
type Option func(*File)

// WithMIMEType overrides the content type declared by the extension.
func WithMIMEType(mimeType string) Option {
	return func(f *File) {
		f.mimeType = normalizeMIME(mimeType)
	}
}

// FromPath builds a File for a path on disk. The content type is declared by
// the extension, the way a file picker reports it; content is only checked
// by validation.
func FromPath(path string, opts ...Option) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	f := File{
		id:   uuid.New(),
		name: filepath.Base(path),
		size: info.Size(),
		open: func() (io.ReadSeekCloser, error) {
			return os.Open(path)
		},
	}
	for _, opt := range opts {
		opt(&f)
	}
	if f.mimeType == "" {
		f.mimeType = mimeFromExtension(f.name)
	}
	return f, nil
}

// FromBytes builds a File backed by a copy of data. An empty mimeType falls
// back to the extension.
func FromBytes(name, mimeType string, data []byte) File {
	return FromBuffer(name, mimeType, append([]byte(nil), data...))
}

// FromBuffer is FromBytes without the copy. The File takes ownership of
// data; the caller must not modify it afterwards.
func FromBuffer(name, mimeType string, data []byte) File {
	f := File{
		id:       uuid.New(),
		name:     name,
		size:     int64(len(data)),
		mimeType: normalizeMIME(mimeType),
		open: func() (io.ReadSeekCloser, error) {
			return nopCloser{bytes.NewReader(data)}, nil
		},
	}
	if f.mimeType == "" {
		f.mimeType = mimeFromExtension(name)
	}
	return f
}

func (f File) ID() uuid.UUID     { return f.id }
func (f File) Name() string      { return f.name }
func (f File) Size() int64       { return f.size }
func (f File) MIMEType() string  { return f.mimeType }
func (f File) IsZero() bool      { return f.id == uuid.Nil }
func (f File) Extension() string { return strings.ToLower(filepath.Ext(f.name)) }

// Title is the file name without its extension.
func (f File) Title() string {
	return strings.TrimSuffix(f.name, filepath.Ext(f.name))
}

// Open returns a reader positioned at the start of the file.
func (f File) Open() (io.ReadSeekCloser, error) {
	if f.open == nil {
		return nil, errors.New("document: file has no content source")
	}
	return f.open()
}

// ReadHeader returns up to n leading bytes. Shorter files yield fewer bytes
// without error.
func (f File) ReadHeader(n int) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	buf := make([]byte, n)
	read, err := io.ReadFull(rc, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:read], nil
}

// Bytes reads the whole file.
func (f File) Bytes() ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func mimeFromExtension(name string) string {
	return normalizeMIME(mime.TypeByExtension(strings.ToLower(filepath.Ext(name))))
}

func normalizeMIME(value string) string {
	if value == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(value); err == nil {
		return parsed
	}
	return strings.ToLower(strings.TrimSpace(value))
}

type nopCloser struct {
	io.ReadSeeker
}

func (nopCloser) Close() error { return nil }

// FormatSize renders a byte count the way the upload panel shows it.
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	value := float64(n)
	idx := 0
	for value >= 1024 && idx < len(units)-1 {
		value /= 1024
		idx++
	}
	text := fmt.Sprintf("%.2f", value)
	text = strings.TrimRight(strings.TrimRight(text, "0"), ".")
	return text + " " + units[idx]
}
