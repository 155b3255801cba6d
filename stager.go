package doctoolkit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/alnah/go-doctoolkit/internal/fileutil"
)

const filePerm = 0o600

// StagedFile is an upload persisted to the uploads directory.
type StagedFile struct {
	Path         string // absolute path, <id><ext>
	OriginalName string // base name declared by the client
	Size         int64
}

// Stager writes upload streams to collision-free paths.
type Stager struct {
	dir string
}

// NewStager returns a Stager writing into scratch's uploads directory.
func NewStager(scratch *Scratch) *Stager {
	return &Stager{dir: scratch.Uploads()}
}

// Stage copies r to uploads/<random id><ext>, where ext is the extension of
// originalName kept verbatim. Memory use is bounded by the copy buffer.
// The content is not inspected.
func (s *Stager) Stage(r io.Reader, originalName string) (*StagedFile, error) {
	base := fileutil.BaseName(originalName)
	ext := filepath.Ext(base)
	if err := fileutil.ValidateExtension(ext); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	path := filepath.Join(s.dir, uuid.NewString()+ext)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm) // #nosec G304 -- generated name
	if err != nil {
		return nil, fmt.Errorf("%w: creating staged file: %v", ErrStorage, err)
	}

	buf := make([]byte, fileutil.CopyBufferSize)
	n, err := io.CopyBuffer(f, r, buf)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: writing upload: %w", ErrStorage, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: closing staged file: %v", ErrStorage, err)
	}

	return &StagedFile{Path: path, OriginalName: base, Size: n}, nil
}
