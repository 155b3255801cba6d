package doctoolkit

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/alnah/go-doctoolkit/internal/pipeline"
)

// Toolkit runs every conversion against one scratch area.
// It is safe for concurrent use.
type Toolkit struct {
	scratch  *Scratch
	stager   *Stager
	archiver *Archiver
	pool     *WorkerPool
	office   DocumentRenderer
	browser  HTMLRenderer
	markdown *pipeline.GoldmarkConverter
	logger   zerolog.Logger

	workers     int
	imageDPI    float64
	jpegQuality int
}

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithLogger sets the logger used by the Toolkit and its renderers.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Toolkit) { t.logger = l }
}

// WithWorkers sets the worker pool size. Zero or less selects ResolvePoolSize.
func WithWorkers(n int) Option {
	return func(t *Toolkit) { t.workers = n }
}

// WithOfficeRenderer replaces the default LibreOffice renderer.
func WithOfficeRenderer(r DocumentRenderer) Option {
	return func(t *Toolkit) { t.office = r }
}

// WithHTMLRenderer replaces the default Chrome renderer.
func WithHTMLRenderer(r HTMLRenderer) Option {
	return func(t *Toolkit) { t.browser = r }
}

// WithImageDPI sets the resolution for PDF page rasterization.
func WithImageDPI(dpi float64) Option {
	if dpi <= 0 {
		panic("doctoolkit: WithImageDPI must be positive")
	}
	return func(t *Toolkit) { t.imageDPI = dpi }
}

// WithJPEGQuality sets the JPEG encoder quality (1-100).
func WithJPEGQuality(q int) Option {
	if q < 1 || q > 100 {
		panic("doctoolkit: WithJPEGQuality must be between 1 and 100")
	}
	return func(t *Toolkit) { t.jpegQuality = q }
}

// New creates a Toolkit over scratch. Renderers are created with defaults
// unless supplied; neither starts a process until first used.
func New(scratch *Scratch, opts ...Option) *Toolkit {
	t := &Toolkit{
		scratch:     scratch,
		stager:      NewStager(scratch),
		archiver:    NewArchiver(scratch),
		markdown:    pipeline.NewGoldmarkConverter(),
		logger:      zerolog.Nop(),
		imageDPI:    DefaultImageDPI,
		jpegQuality: DefaultJPEGQuality,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.pool = NewWorkerPool(ResolvePoolSize(t.workers))
	if t.office == nil {
		t.office = NewOfficeRenderer(WithOfficeLogger(t.logger))
	}
	if t.browser == nil {
		t.browser = NewChromeRenderer(DefaultBrowserPool, DefaultBrowserTimeout, "")
	}
	return t
}

// Scratch returns the scratch area the Toolkit writes to.
func (t *Toolkit) Scratch() *Scratch {
	return t.scratch
}

// Workers returns the worker pool size.
func (t *Toolkit) Workers() int {
	return t.pool.Size()
}

// Stage persists an upload stream. See Stager.Stage.
func (t *Toolkit) Stage(r io.Reader, originalName string) (*StagedFile, error) {
	return t.stager.Stage(r, originalName)
}

// Archive zips paths into outputs. See Archiver.Create.
func (t *Toolkit) Archive(paths []string, name string) (string, error) {
	return t.archiver.Create(paths, name)
}

// Close releases browser resources.
func (t *Toolkit) Close() error {
	if t.browser != nil {
		return t.browser.Close()
	}
	return nil
}
