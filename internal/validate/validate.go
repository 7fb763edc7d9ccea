// Package validate decides whether a selected file may be previewed and
// summarized. Checks run in a fixed order and stop at the first failure.
package validate

import (
	"bytes"
	"fmt"

	"github.com/csheth/pdf2ai/internal/apperr"
)

const (
	// DefaultMaxSize is 50 MiB.
	DefaultMaxSize int64 = 50 * 1024 * 1024
	// PDFMIMEType is the only accepted declared content type.
	PDFMIMEType = "application/pdf"
	// Extension is the only accepted file name suffix.
	Extension = ".pdf"
)

// Signature is the byte prefix every PDF starts with.
var Signature = []byte("%PDF-")

// Candidate is a file offered for validation.
type Candidate interface {
	Extension() string
	MIMEType() string
	Size() int64
	ReadHeader(n int) ([]byte, error)
}

// Result is the outcome of a validation run.
type Result struct {
	err *apperr.Error
}

// Valid reports whether every check passed.
func (r Result) Valid() bool { return r.err == nil }

// Reason returns the failed check's kind, or "" when valid.
func (r Result) Reason() apperr.Kind {
	if r.err == nil {
		return ""
	}
	return r.err.Kind
}

// Err returns the failure as an error, or nil when valid.
func (r Result) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// Failure returns the typed failure, or nil when valid.
func (r Result) Failure() *apperr.Error { return r.err }

// Validator holds the configurable limits.
type Validator struct {
	MaxSize int64
}

// New returns a Validator with the given size ceiling. Non-positive values
// fall back to DefaultMaxSize.
func New(maxSize int64) Validator {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return Validator{MaxSize: maxSize}
}

// Validate runs the checks with DefaultMaxSize.
func Validate(c Candidate) Result {
	return New(DefaultMaxSize).Validate(c)
}

// Validate checks extension, declared type, size, emptiness and signature,
// in that order. Only the signature bytes are read.
func (v Validator) Validate(c Candidate) Result {
	limit := v.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	if c.Extension() != Extension {
		return fail(apperr.BadExtension)
	}
	if c.MIMEType() != PDFMIMEType {
		return fail(apperr.BadMimeType)
	}
	if c.Size() > limit {
		err := apperr.New(apperr.TooLarge, nil)
		err.Message = fmt.Sprintf("File size exceeds %s limit", formatLimit(limit))
		return Result{err: err}
	}
	if c.Size() <= 0 {
		return fail(apperr.EmptyFile)
	}
	head, err := c.ReadHeader(len(Signature))
	if err != nil {
		return Result{err: apperr.New(apperr.UnreadableFile, err)}
	}
	if !bytes.Equal(head, Signature) {
		return fail(apperr.BadSignature)
	}
	return Result{}
}

func fail(kind apperr.Kind) Result {
	return Result{err: apperr.New(kind, nil)}
}

func formatLimit(limit int64) string {
	const mib = 1024 * 1024
	if limit%mib == 0 {
		return fmt.Sprintf("%dMB", limit/mib)
	}
	return fmt.Sprintf("%d bytes", limit)
}
