package doctoolkit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/alnah/go-doctoolkit/internal/fileutil"
)

// Output name prefixes.
const (
	prefixMerged     = "merged"
	prefixCompressed = "compressed"
	prefixEdited     = "edited"
	prefixRotated    = "rotated"
	prefixImages     = "images"
	prefixConverted  = "converted"
	prefixRendered   = "rendered"
)

func init() {
	// Keep pdfcpu from creating a config directory in the user's home.
	api.DisableConfigDir()
}

// PageSet is a plural result: one file per page inside a per-invocation
// directory. Hand Dir to a CleanupSet to remove everything at once.
type PageSet struct {
	Dir   string
	Paths []string
}

func pdfConfig() *model.Configuration {
	return model.NewDefaultConfiguration()
}

// readPDF loads and validates a PDF with its page tree ready.
func readPDF(path string) (*model.Context, error) {
	f, err := os.Open(path) // #nosec G304 -- staged path
	if err != nil {
		return nil, fmt.Errorf("%w: opening PDF: %v", ErrStorage, err)
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, pdfConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF: %v", ErrConversion, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: counting pages: %v", ErrConversion, err)
	}
	return ctx, nil
}

// writePDF serializes ctx to a new file at path.
func writePDF(ctx *model.Context, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm) // #nosec G304 -- generated name
	if err != nil {
		return fmt.Errorf("%w: creating PDF: %v", ErrStorage, err)
	}
	if err := api.WriteContext(ctx, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("%w: writing PDF: %v", ErrConversion, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("%w: closing PDF: %v", ErrStorage, err)
	}
	return nil
}

// MergePDFs concatenates inputs in order into a single PDF.
func (t *Toolkit) MergePDFs(ctx context.Context, inputs []string) (string, error) {
	if len(inputs) < 2 {
		return "", fmt.Errorf("%w: merging needs at least two PDFs", ErrTooFewFiles)
	}
	if err := requireFiles(inputs...); err != nil {
		return "", err
	}

	out := t.scratch.OutputPath(prefixMerged, ".pdf")
	err := t.pool.Do(ctx, func() error {
		if err := api.MergeCreateFile(inputs, out, false, pdfConfig()); err != nil {
			return fmt.Errorf("%w: merging: %v", ErrConversion, err)
		}
		return nil
	})
	if err != nil {
		_ = os.Remove(out)
		return "", err
	}
	return out, nil
}

// SplitPDF writes each page of input as its own PDF named
// <stem>_page_<n>.pdf, in page order.
func (t *Toolkit) SplitPDF(ctx context.Context, input, stem string) (*PageSet, error) {
	if err := requireFiles(input); err != nil {
		return nil, err
	}

	dir, err := t.scratch.NewWorkDir()
	if err != nil {
		return nil, err
	}

	set := &PageSet{Dir: dir}
	err = t.pool.Do(ctx, func() error {
		src, err := readPDF(input)
		if err != nil {
			return err
		}
		for i := 1; i <= src.PageCount; i++ {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrCanceled, err)
			}
			page, err := pdfcpu.ExtractPages(src, []int{i}, false)
			if err != nil {
				return fmt.Errorf("%w: extracting page %d: %v", ErrConversion, i, err)
			}
			path := filepath.Join(dir, pageFileName(stem, i, ".pdf"))
			if err := writePDF(page, path); err != nil {
				return err
			}
			set.Paths = append(set.Paths, path)
		}
		return nil
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return set, nil
}

// CompressPDF rewrites input with pdfcpu's optimizer, which removes duplicate
// resources and unused objects. The result is validated and must keep the
// page count of the source; otherwise it is discarded and an error returned.
func (t *Toolkit) CompressPDF(ctx context.Context, input string) (string, error) {
	if err := requireFiles(input); err != nil {
		return "", err
	}

	out := t.scratch.OutputPath(prefixCompressed, ".pdf")
	err := t.pool.Do(ctx, func() error {
		conf := pdfConfig()
		if err := api.OptimizeFile(input, out, conf); err != nil {
			return fmt.Errorf("%w: optimizing: %v", ErrConversion, err)
		}
		if err := api.ValidateFile(out, pdfConfig()); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptOutput, err)
		}
		want, err := api.PageCountFile(input)
		if err != nil {
			return fmt.Errorf("%w: counting source pages: %v", ErrConversion, err)
		}
		got, err := api.PageCountFile(out)
		if err != nil || got != want {
			return fmt.Errorf("%w: page count %d, want %d", ErrCorruptOutput, got, want)
		}
		return nil
	})
	if err != nil {
		_ = os.Remove(out)
		return "", err
	}
	return out, nil
}

// RemovePages writes a copy of input without the given 1-based pages.
// Out-of-range and duplicate numbers are ignored; an empty selection yields an
// equivalent document. Removing every page is rejected with ErrNoPagesLeft.
func (t *Toolkit) RemovePages(ctx context.Context, input string, pages []int) (string, error) {
	if err := requireFiles(input); err != nil {
		return "", err
	}

	out := t.scratch.OutputPath(prefixEdited, ".pdf")
	err := t.pool.Do(ctx, func() error {
		src, err := readPDF(input)
		if err != nil {
			return err
		}

		keep := KeptPages(src.PageCount, pages)
		if len(keep) == 0 {
			return ErrNoPagesLeft
		}
		if len(keep) == src.PageCount {
			if err := fileutil.CopyFile(input, out); err != nil {
				return fmt.Errorf("%w: copying PDF: %v", ErrStorage, err)
			}
			return nil
		}

		trimmed, err := pdfcpu.ExtractPages(src, keep, false)
		if err != nil {
			return fmt.Errorf("%w: extracting pages: %v", ErrConversion, err)
		}
		return writePDF(trimmed, out)
	})
	if err != nil {
		_ = os.Remove(out)
		return "", err
	}
	return out, nil
}

// KeptPages returns, in ascending order, the pages of a pageCount-page document
// that survive removing the given 1-based page numbers.
func KeptPages(pageCount int, remove []int) []int {
	keep := make([]int, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		if !slices.Contains(remove, i) {
			keep = append(keep, i)
		}
	}
	return keep
}

// RotatePDF rotates every page of input clockwise by angle degrees.
func (t *Toolkit) RotatePDF(ctx context.Context, input string, angle int) (string, error) {
	switch angle {
	case 90, 180, 270:
	default:
		return "", ErrInvalidAngle
	}
	if err := requireFiles(input); err != nil {
		return "", err
	}

	out := t.scratch.OutputPath(prefixRotated, ".pdf")
	err := t.pool.Do(ctx, func() error {
		if err := api.RotateFile(input, out, angle, nil, pdfConfig()); err != nil {
			return fmt.Errorf("%w: rotating: %v", ErrConversion, err)
		}
		return nil
	})
	if err != nil {
		_ = os.Remove(out)
		return "", err
	}
	return out, nil
}

// pageFileName returns <stem>_page_<n><ext>.
func pageFileName(stem string, n int, ext string) string {
	if stem == "" {
		stem = fallbackBaseName
	}
	return fmt.Sprintf("%s_page_%d%s", stem, n, ext)
}

// requireFiles checks every path is an existing regular file.
func requireFiles(paths ...string) error {
	for _, p := range paths {
		if !fileutil.FileExists(p) {
			return fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(p))
		}
	}
	return nil
}
