package server

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-doctoolkit"
	"github.com/alnah/go-doctoolkit/internal/pdftest"
)

// fakeOffice writes a one-page PDF, or fails with err.
type fakeOffice struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeOffice) Render(_ context.Context, input, outDir string) (*doctoolkit.RenderResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := filepath.Join(outDir, filepath.Base(input)+".pdf")
	if err := os.WriteFile(out, pdftest.Build(612), 0o600); err != nil {
		return nil, err
	}
	return &doctoolkit.RenderResult{Output: out}, nil
}

// fakeBrowser writes a one-page PDF and records the HTML it received.
type fakeBrowser struct {
	mu   sync.Mutex
	html []string
}

func (f *fakeBrowser) RenderHTML(_ context.Context, html, outPath string) error {
	f.mu.Lock()
	f.html = append(f.html, html)
	f.mu.Unlock()
	return os.WriteFile(outPath, pdftest.Build(595), 0o600)
}

func (f *fakeBrowser) Close() error { return nil }

// testEnv is a server over a real Toolkit with fake renderers.
type testEnv struct {
	tk      *doctoolkit.Toolkit
	office  *fakeOffice
	browser *fakeBrowser
	handler http.Handler
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	scratch, err := doctoolkit.NewScratch(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{office: &fakeOffice{}, browser: &fakeBrowser{}, logs: &bytes.Buffer{}}
	env.tk = doctoolkit.New(scratch,
		doctoolkit.WithWorkers(2),
		doctoolkit.WithOfficeRenderer(env.office),
		doctoolkit.WithHTMLRenderer(env.browser),
	)
	t.Cleanup(func() { _ = env.tk.Close() })

	env.handler = New(env.tk, zerolog.New(env.logs), opts).Handler()
	return env
}

// scratchEntries lists everything left in uploads and outputs.
func (e *testEnv) scratchEntries(t *testing.T) []string {
	t.Helper()

	var names []string
	for _, dir := range []string{e.tk.Scratch().Uploads(), e.tk.Scratch().Outputs()} {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, entry := range entries {
			names = append(names, filepath.Join(filepath.Base(dir), entry.Name()))
		}
	}
	return names
}

// do posts a multipart body built from parts to path.
func (e *testEnv) do(t *testing.T, path string, parts ...formPart) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, parts...)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// formPart is one multipart section. Parts without a filename are fields.
type formPart struct {
	field       string
	filename    string
	contentType string
	body        []byte
}

func filePart(filename string, body []byte) formPart {
	return formPart{field: "file", filename: filename, body: body}
}

func field(name, value string) formPart {
	return formPart{field: name, body: []byte(value)}
}

func multipartBody(t *testing.T, parts ...formPart) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		disposition := fmt.Sprintf(`form-data; name=%q`, p.field)
		if p.filename != "" {
			disposition += fmt.Sprintf(`; filename=%q`, p.filename)
			ct := p.contentType
			if ct == "" {
				ct = "application/octet-stream"
			}
			h.Set("Content-Type", ct)
		}
		h.Set("Content-Disposition", disposition)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// attachmentName returns the filename from a Content-Disposition header.
func attachmentName(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	require.Equal(t, "attachment", disposition)
	return params["filename"]
}

// zipNames lists the entry names of a zip response body.
func zipNames(t *testing.T, body []byte) []string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 8), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
