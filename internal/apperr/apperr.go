// Package apperr defines the failure kinds shared by validation, previewing
// and summarization, along with the user-facing message for each.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	BadExtension                Kind = "bad_extension"
	BadMimeType                 Kind = "bad_mime_type"
	TooLarge                    Kind = "too_large"
	EmptyFile                   Kind = "empty_file"
	BadSignature                Kind = "bad_signature"
	UnreadableFile              Kind = "unreadable_file"
	NetworkError                Kind = "network_error"
	ServerError                 Kind = "server_error"
	CorruptPdf                  Kind = "corrupt_pdf"
	PasswordProtectedPdf        Kind = "password_protected_pdf"
	UnsupportedPdfFormat        Kind = "unsupported_pdf_format"
	RenderingServiceUnavailable Kind = "rendering_service_unavailable"
	LoadCancelled               Kind = "load_cancelled"
)

var messages = map[Kind]string{
	BadExtension:                "File must have .pdf extension",
	BadMimeType:                 "Invalid file type. Please select a PDF file.",
	TooLarge:                    "File size exceeds 50MB limit",
	EmptyFile:                   "File appears to be empty",
	BadSignature:                "File does not appear to be a valid PDF",
	UnreadableFile:              "Unable to read file contents",
	NetworkError:                "Could not reach the summarization service.",
	ServerError:                 "Failed to summarize PDF",
	CorruptPdf:                  "Failed to load PDF. Please try uploading a different file.",
	PasswordProtectedPdf:        "This PDF is password protected and cannot be previewed.",
	UnsupportedPdfFormat:        "This PDF uses features the previewer does not support.",
	RenderingServiceUnavailable: "The PDF previewer is unavailable.",
	LoadCancelled:               "Loading was cancelled.",
}

// Message returns the default user-facing text for the kind.
func (k Kind) Message() string {
	if msg, ok := messages[k]; ok {
		return msg
	}
	return string(k)
}

// IsValidation reports whether the kind is produced by file validation.
func (k Kind) IsValidation() bool {
	switch k {
	case BadExtension, BadMimeType, TooLarge, EmptyFile, BadSignature, UnreadableFile:
		return true
	}
	return false
}

// Error carries a Kind, a user-facing message and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New wraps err with the default message for kind.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: kind.Message(), Err: err}
}

// Newf builds an error with a custom message and no cause.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail returns the technical cause, or an empty string.
func (e *Error) Detail() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf returns the kind of err, or fallback when err carries none.
func KindOf(err error, fallback Kind) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return fallback
}

// Ensure returns err as an *Error, wrapping it with fallback when needed.
func Ensure(err error, fallback Kind) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	return New(fallback, err)
}
