package doctoolkit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"

	"github.com/alnah/go-doctoolkit/internal/fileutil"
)

// Archiver bundles plural outputs into a single zip file.
type Archiver struct {
	scratch *Scratch
}

// NewArchiver returns an Archiver writing into scratch's outputs directory.
func NewArchiver(scratch *Scratch) *Archiver {
	return &Archiver{scratch: scratch}
}

// Create writes outputs/<id>_<name> containing every path as an entry named
// by its base name, in input order. Inputs are read, never modified.
// A partial archive is removed on failure.
func (a *Archiver) Create(paths []string, name string) (_ string, err error) {
	name = fileutil.BaseName(name)
	if name == "" {
		name = "archive.zip"
	}
	archivePath := filepath.Join(a.scratch.Outputs(), uuid.NewString()+"_"+name)

	f, err := os.OpenFile(archivePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm) // #nosec G304 -- generated name
	if err != nil {
		return "", fmt.Errorf("%w: creating archive: %v", ErrStorage, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(archivePath)
		}
	}()

	zw := zip.NewWriter(f)
	buf := make([]byte, fileutil.CopyBufferSize)
	for _, p := range paths {
		if err = addToZip(zw, p, buf); err != nil {
			_ = zw.Close()
			_ = f.Close()
			return "", err
		}
	}

	if err = zw.Close(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("%w: finalizing archive: %v", ErrStorage, err)
	}
	if err = f.Close(); err != nil {
		return "", fmt.Errorf("%w: closing archive: %v", ErrStorage, err)
	}
	return archivePath, nil
}

func addToZip(zw *zip.Writer, path string, buf []byte) error {
	src, err := os.Open(path) // #nosec G304 -- paths come from scratch outputs
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
		}
		return fmt.Errorf("%w: opening archive entry: %v", ErrStorage, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat archive entry: %v", ErrStorage, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("%w: archive header: %v", ErrStorage, err)
	}
	header.Name = filepath.Base(path)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("%w: archive entry: %v", ErrStorage, err)
	}
	if _, err := io.CopyBuffer(w, src, buf); err != nil {
		return fmt.Errorf("%w: writing archive entry: %v", ErrStorage, err)
	}
	return nil
}
