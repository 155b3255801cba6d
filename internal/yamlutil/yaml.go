// Package yamlutil decodes and encodes configuration documents.
// Decoding is always strict: unknown keys are errors.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize int64 = 1 << 20

var (
	ErrEmpty          = errors.New("yamlutil: empty document")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// Decode reads one YAML document from r into v, rejecting unknown fields.
// Parse errors include the offending source line.
func Decode(r io.Reader, v any) error {
	if v == nil {
		return ErrNilDestination
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return fmt.Errorf("yamlutil: reading: %w", err)
	}
	if int64(len(data)) > MaxInputSize {
		return fmt.Errorf("%w: max %d bytes", ErrInputTooLarge, MaxInputSize)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmpty
	}

	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %s", yaml.FormatError(err, false, true))
	}
	return nil
}

// DecodeFile decodes the YAML file at path into v.
// Open errors are returned wrapped so os.ErrNotExist remains detectable.
func DecodeFile(path string, v any) error {
	f, err := os.Open(path) // #nosec G304 -- config path is operator-provided
	if err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	defer f.Close()

	if err := Decode(f, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Encode writes v to w as YAML with indented sequences.
func Encode(w io.Writer, v any) error {
	if err := yaml.NewEncoder(w, yaml.IndentSequence(true)).Encode(v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}
