// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CopyBufferSize bounds the memory used by streaming copies.
const CopyBufferSize = 32 << 10

// Sentinel errors for file utility operations.
var (
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// ValidateExtension checks that an extension is safe to append to a generated
// file name. An empty extension is allowed.
func ValidateExtension(extension string) error {
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// BaseName returns the last element of a client-supplied name, treating both
// slash and backslash as separators regardless of the host OS.
func BaseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// CopyFile streams src into a new file at dst. A partial dst is removed on error.
func CopyFile(src, dst string) (err error) {
	in, err := os.Open(src) // #nosec G304 -- paths are generated by the scratch layout
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) // #nosec G304
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	buf := make([]byte, CopyBufferSize)
	if _, err = io.CopyBuffer(out, in, buf); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s: %w", filepath.Base(src), err)
	}
	return out.Close()
}

// MoveFile renames src to dst, falling back to copy and delete when the
// rename crosses filesystems.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
