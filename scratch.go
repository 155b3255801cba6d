package doctoolkit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Scratch directory layout.
const (
	UploadsDir  = "uploads"
	OutputsDir  = "outputs"
	defaultRoot = "doctoolkit"

	dirPerm = 0o750
)

// Scratch owns the transient directories used by all operations.
// It is resolved once at startup and shared by every component.
type Scratch struct {
	root    string
	uploads string
	outputs string
}

// NewScratch creates the uploads and outputs directories under root.
// An empty root selects a doctoolkit directory inside os.TempDir().
func NewScratch(root string) (*Scratch, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), defaultRoot)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving scratch root: %v", ErrStorage, err)
	}

	s := &Scratch{
		root:    abs,
		uploads: filepath.Join(abs, UploadsDir),
		outputs: filepath.Join(abs, OutputsDir),
	}
	for _, dir := range []string{s.uploads, s.outputs} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %v", ErrStorage, dir, err)
		}
	}
	return s, nil
}

func (s *Scratch) Root() string    { return s.root }
func (s *Scratch) Uploads() string { return s.uploads }
func (s *Scratch) Outputs() string { return s.outputs }

// OutputPath returns a fresh, unused path in the outputs directory.
// The name is <prefix>_<id><ext>, or <id><ext> without a prefix.
func (s *Scratch) OutputPath(prefix, ext string) string {
	name := uuid.NewString() + ext
	if prefix != "" {
		name = prefix + "_" + name
	}
	return filepath.Join(s.outputs, name)
}

// NewWorkDir creates a per-invocation directory in outputs.
// The caller owns it and must remove it or hand it to a CleanupSet.
func (s *Scratch) NewWorkDir() (string, error) {
	dir := filepath.Join(s.outputs, uuid.NewString())
	if err := os.Mkdir(dir, dirPerm); err != nil {
		return "", fmt.Errorf("%w: creating work directory: %v", ErrStorage, err)
	}
	return dir, nil
}
