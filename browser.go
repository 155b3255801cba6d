package doctoolkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Chrome renderer defaults.
const (
	DefaultBrowserTimeout = 60 * time.Second
	DefaultBrowserPool    = 1
)

// PDF page dimensions in inches (A4).
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
	marginInches      = 0.5
)

// HTMLRenderer prints an HTML document to a PDF file.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string, outPath string) error
	Close() error
}

var _ HTMLRenderer = (*ChromeRenderer)(nil)

// ChromeRenderer prints HTML to PDF with headless Chrome through go-rod.
// Browsers are launched lazily, up to size instances, and reused.
type ChromeRenderer struct {
	size      int
	timeout   time.Duration
	bin       string
	noSandbox bool

	idle    chan *rod.Browser
	mu      sync.Mutex
	all     []*rod.Browser
	created int
	closed  bool
}

// NewChromeRenderer creates a renderer holding at most size browsers.
// An empty bin lets rod find or download Chromium; ROD_BROWSER_BIN overrides it.
func NewChromeRenderer(size int, timeout time.Duration, bin string) *ChromeRenderer {
	if size < 1 {
		size = DefaultBrowserPool
	}
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	if env := os.Getenv("ROD_BROWSER_BIN"); env != "" {
		bin = env
	}
	return &ChromeRenderer{
		size:    size,
		timeout: timeout,
		bin:     bin,
		// NoSandbox required for CI and containerized environments
		noSandbox: os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || bin != "",
		idle:      make(chan *rod.Browser, size),
	}
}

// acquire returns an idle browser, launches a new one while under capacity,
// or waits for one to be released.
func (c *ChromeRenderer) acquire(ctx context.Context) (*rod.Browser, error) {
	select {
	case b := <-c.idle:
		return b, nil
	default:
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: renderer closed", ErrBrowserRender)
	}
	if c.created < c.size {
		c.created++
		c.mu.Unlock()

		b, err := c.launch()
		if err != nil {
			c.mu.Lock()
			c.created--
			c.mu.Unlock()
			return nil, err
		}

		c.mu.Lock()
		c.all = append(c.all, b)
		c.mu.Unlock()
		return b, nil
	}
	c.mu.Unlock()

	select {
	case b, ok := <-c.idle:
		if !ok {
			return nil, fmt.Errorf("%w: renderer closed", ErrBrowserRender)
		}
		return b, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for browser: %v", ErrCanceled, ctx.Err())
	}
}

// release returns a browser to the pool.
func (c *ChromeRenderer) release(b *rod.Browser) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.idle <- b
}

func (c *ChromeRenderer) launch() (*rod.Browser, error) {
	l := launcher.New().Headless(true)
	if c.bin != "" {
		l = l.Bin(c.bin)
	}
	if c.noSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launching browser: %v", ErrBrowserRender, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("%w: connecting to browser: %v", ErrBrowserRender, err)
	}
	return b, nil
}

// RenderHTML loads html into a blank page and prints it to outPath.
// The document is injected directly, so it cannot read local files via file:// URLs.
func (c *ChromeRenderer) RenderHTML(ctx context.Context, html string, outPath string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCanceled, err)
	}

	b, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer c.release(b)

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	if timeout <= 0 {
		return fmt.Errorf("%w: %v", ErrCanceled, context.DeadlineExceeded)
	}

	page, err := b.Context(ctx).Timeout(timeout).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("%w: creating page: %v", ErrBrowserRender, err)
	}
	defer page.Close()

	if err := page.SetDocumentContent(html); err != nil {
		return fmt.Errorf("%w: loading document: %v", ErrBrowserRender, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("%w: waiting for load: %v", ErrBrowserRender, err)
	}

	reader, err := page.PDF(buildPDFOptions())
	if err != nil {
		return fmt.Errorf("%w: printing: %v", ErrBrowserRender, err)
	}

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm) // #nosec G304 -- generated name
	if err != nil {
		return fmt.Errorf("%w: creating PDF: %v", ErrStorage, err)
	}
	if _, err := io.Copy(out, reader); err != nil {
		_ = out.Close()
		_ = os.Remove(outPath)
		return fmt.Errorf("%w: reading PDF stream: %v", ErrBrowserRender, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(outPath)
		return fmt.Errorf("%w: closing PDF: %v", ErrStorage, err)
	}
	return nil
}

// buildPDFOptions returns A4 print settings with backgrounds.
func buildPDFOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

// Close shuts down every launched browser.
// Returns an aggregated error if multiple browsers fail to close.
func (c *ChromeRenderer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.idle)
	browsers := c.all
	c.mu.Unlock()

	var errs []error
	for _, b := range browsers {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
