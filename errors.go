package doctoolkit

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package wraps exactly one of them,
// so callers can classify failures with errors.Is.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrMalformedRequest = errors.New("malformed request")
	ErrNotFound         = errors.New("file not found")
	ErrConversion       = errors.New("conversion failed")
	ErrStorage          = errors.New("storage failure")
)

// Invalid input errors.
var (
	ErrUnsupportedType   = fmt.Errorf("%w: unsupported file type", ErrInvalidInput)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported image format", ErrInvalidInput)
	ErrTooFewFiles       = fmt.Errorf("%w: not enough files", ErrInvalidInput)
	ErrNoPagesLeft       = fmt.Errorf("%w: cannot remove every page", ErrInvalidInput)
	ErrInvalidPages      = fmt.Errorf("%w: pages must be a JSON list of integers", ErrInvalidInput)
	ErrInvalidAngle      = fmt.Errorf("%w: angle must be 90, 180 or 270", ErrInvalidInput)
	ErrUploadTooLarge    = fmt.Errorf("%w: upload too large", ErrInvalidInput)
)

// Malformed request errors.
var (
	ErrNotMultipart = fmt.Errorf("%w: expected multipart/form-data", ErrMalformedRequest)
	ErrMissingFile  = fmt.Errorf("%w: field \"file\" is required", ErrMalformedRequest)
)

// Conversion errors.
var (
	ErrRendererNotFound = fmt.Errorf("%w: office renderer not found", ErrConversion)
	ErrRendererFailed   = fmt.Errorf("%w: office renderer exited with an error", ErrConversion)
	ErrRendererTimeout  = fmt.Errorf("%w: office renderer timed out", ErrConversion)
	ErrNoOutput         = fmt.Errorf("%w: renderer produced no output", ErrConversion)
	ErrCorruptOutput    = fmt.Errorf("%w: output failed verification", ErrConversion)
	ErrBrowserRender    = fmt.Errorf("%w: browser rendering failed", ErrConversion)
	ErrCanceled         = fmt.Errorf("%w: request canceled", ErrConversion)
)

// RenderError describes a failed office renderer invocation.
// It unwraps to one of ErrRendererFailed, ErrRendererTimeout or ErrNoOutput.
type RenderError struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *RenderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	fmt.Fprintf(&b, " (exit code %d)", e.ExitCode)
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
