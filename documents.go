package doctoolkit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxMarkupSize bounds Markdown and HTML inputs read into memory.
const maxMarkupSize = 10 << 20

// OfficeToPDF converts a Word, Excel, PowerPoint or text document to PDF
// through the office renderer.
func (t *Toolkit) OfficeToPDF(ctx context.Context, input string) (string, error) {
	if err := requireFiles(input); err != nil {
		return "", err
	}

	res, err := t.office.Render(ctx, input, t.scratch.Outputs())
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// MarkdownToPDF renders Markdown (GFM with highlighted code) to PDF.
// An empty title falls back to the input file name.
func (t *Toolkit) MarkdownToPDF(ctx context.Context, input, title string) (string, error) {
	content, err := readMarkup(input)
	if err != nil {
		return "", err
	}

	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	html, err := t.markdown.ToHTML(ctx, title, content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return t.renderHTML(ctx, html)
}

// HTMLToPDF prints an HTML document to PDF.
func (t *Toolkit) HTMLToPDF(ctx context.Context, input string) (string, error) {
	content, err := readMarkup(input)
	if err != nil {
		return "", err
	}
	return t.renderHTML(ctx, string(content))
}

func (t *Toolkit) renderHTML(ctx context.Context, html string) (string, error) {
	out := t.scratch.OutputPath(prefixRendered, ".pdf")
	if err := t.browser.RenderHTML(ctx, html, out); err != nil {
		_ = os.Remove(out)
		return "", err
	}
	return out, nil
}

// readMarkup reads a text input, rejecting files over maxMarkupSize.
func readMarkup(path string) ([]byte, error) {
	if err := requireFiles(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path) // #nosec G304 -- staged path
	if err != nil {
		return nil, fmt.Errorf("%w: opening input: %v", ErrStorage, err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxMarkupSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading input: %v", ErrStorage, err)
	}
	if len(content) > maxMarkupSize {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrInvalidInput, maxMarkupSize)
	}
	return content, nil
}
