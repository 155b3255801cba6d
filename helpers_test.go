package doctoolkit

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alnah/go-doctoolkit/internal/pdftest"
)

// newTestScratch creates a scratch area inside the test's temp directory.
func newTestScratch(t *testing.T) *Scratch {
	t.Helper()

	s, err := NewScratch(t.TempDir())
	if err != nil {
		t.Fatalf("NewScratch() error = %v", err)
	}
	return s
}

// newTestToolkit builds a Toolkit with fake renderers so no external
// process or browser is started.
func newTestToolkit(t *testing.T, opts ...Option) *Toolkit {
	t.Helper()

	base := []Option{
		WithWorkers(2),
		WithOfficeRenderer(&fakeOffice{}),
		WithHTMLRenderer(&fakeBrowser{}),
	}
	tk := New(newTestScratch(t), append(base, opts...)...)
	t.Cleanup(func() { _ = tk.Close() })
	return tk
}

// writeTestPDF writes a fixture PDF into dir and returns its path.
func writeTestPDF(t *testing.T, dir, name string, widths ...int) string {
	t.Helper()

	return pdftest.Write(t, dir, name, widths...)
}

// pageWidths returns the MediaBox width of every page of the PDF at path.
func pageWidths(t *testing.T, path string) []int {
	t.Helper()

	ctx, err := readPDF(path)
	if err != nil {
		t.Fatalf("readPDF(%s) error = %v", filepath.Base(path), err)
	}
	widths := make([]int, 0, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		_, _, inh, err := ctx.PageDict(i, false)
		if err != nil {
			t.Fatalf("PageDict(%d) error = %v", i, err)
		}
		widths = append(widths, int(inh.MediaBox.Width()))
	}
	return widths
}

// testImage returns a w x h image with a translucent pixel in the corner.
func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	img.Set(0, 0, color.NRGBA{R: 255, A: 64})
	return img
}

// writeTestPNG writes a w x h PNG into dir and returns its path.
func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, testImage(w, h)); err != nil {
		t.Fatal(err)
	}
	return path
}

// fakeOffice copies a fixture PDF to the output directory.
type fakeOffice struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeOffice) Render(_ context.Context, input, outDir string) (*RenderResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, input)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := filepath.Join(outDir, "fake-"+filepath.Base(input)+".pdf")
	if err := os.WriteFile(out, pdftest.Build(612), 0o600); err != nil {
		return nil, err
	}
	return &RenderResult{Output: out}, nil
}

// fakeBrowser records the HTML it was asked to print.
type fakeBrowser struct {
	mu     sync.Mutex
	html   []string
	err    error
	closed bool
}

func (f *fakeBrowser) RenderHTML(_ context.Context, html string, outPath string) error {
	f.mu.Lock()
	f.html = append(f.html, html)
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outPath, pdftest.Build(595), 0o600)
}

func (f *fakeBrowser) Close() error {
	f.closed = true
	return nil
}

// listDir returns the names in dir, failing the test on error.
func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// bufferLogger returns a logger writing JSON lines to buf.
func bufferLogger(buf *bytes.Buffer) zerolog.Logger {
	return zerolog.New(buf)
}
