// Package errors provides typed errors for the decrypt and extract engine.
// It enables callers to use errors.Is() and errors.As() for specific error
// handling of the taxonomy a title run can produce.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
// Use errors.Is(err, errors.ErrCancelled) to check for specific errors.
var (
	// Operation errors
	ErrCancelled = errors.New("operation cancelled")

	// Metadata errors
	ErrMissingFile        = errors.New("required file missing")
	ErrMalformedMetadata  = errors.New("malformed metadata")
	ErrCommonKeyMismatch  = errors.New("common key self-check mismatch")
	ErrInvalidTitleKeyHex = errors.New("title key must be 32 hex characters")

	// Content decryption errors
	ErrMissingContainer = errors.New("content container missing")
	ErrCipherFailure    = errors.New("cipher operation failed")
	ErrHashMismatch     = errors.New("hash verification mismatch")
	ErrShortRead        = errors.New("short read from container")

	// FST extraction errors
	ErrMissingContent = errors.New("referenced content missing")
	ErrPathEscape     = errors.New("reconstructed path escapes output root")
)

// MetadataError represents an error parsing the ticket or TMD.
type MetadataError struct {
	Op  string // Operation name: "tmd", "ticket", "title-key", "key-derive", "fst"
	Err error  // Underlying error
}

func (e *MetadataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metadata %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("metadata %s failed", e.Op)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// NewMetadataError creates a new MetadataError.
func NewMetadataError(op string, err error) *MetadataError {
	return &MetadataError{Op: op, Err: err}
}

// ContentError represents an error decrypting a single content entry.
type ContentError struct {
	ContentID string // 8 lowercase hex characters
	Op        string // Operation: "open", "create-output", "decrypt", "close-output"
	Err       error
}

func (e *ContentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("content %s %s: %v", e.ContentID, e.Op, e.Err)
	}
	return fmt.Sprintf("content %s %s failed", e.ContentID, e.Op)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// NewContentError creates a new ContentError.
func NewContentError(contentID, op string, err error) *ContentError {
	return &ContentError{ContentID: contentID, Op: op, Err: err}
}

// ExtractError represents an error extracting a single FST entry.
type ExtractError struct {
	Path string // Reconstructed output path, or FST entry name
	Op   string // Operation: "mkdir", "create", "copy"
	Err  error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("extract %s %s failed", e.Op, e.Path)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// NewExtractError creates a new ExtractError.
func NewExtractError(op, path string, err error) *ExtractError {
	return &ExtractError{Op: op, Path: path, Err: err}
}

// Is checks if target matches any of our sentinel errors.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsCancelled checks if the error indicates a cancelled operation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsWarning reports whether an error kind is defined as a warning in the
// propagation table: it is logged and counted but never stops the run.
func IsWarning(err error) bool {
	return errors.Is(err, ErrCommonKeyMismatch) ||
		errors.Is(err, ErrHashMismatch) ||
		errors.Is(err, ErrMissingContainer) ||
		errors.Is(err, ErrMissingContent) ||
		errors.Is(err, ErrPathEscape)
}
