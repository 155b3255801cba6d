package server

// Notes:
// - Renderers are fakes; every other step (staging, pdfcpu, go-fitz, image
//   codecs, zip) runs for real against a per-test scratch directory.
// - Each test asserts the scratch area is empty afterwards: the response has
//   been fully written by the time ServeHTTP returns, so the deferred release
//   has already run.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-doctoolkit"
	"github.com/alnah/go-doctoolkit/internal/pdftest"
)

// pageCount writes a PDF response body to disk and counts its pages.
func pageCount(t *testing.T, body []byte) int {
	t.Helper()

	path := filepath.Join(t.TempDir(), "resp.pdf")
	require.NoError(t, os.WriteFile(path, body, 0o600))
	n, err := api.PageCountFile(path)
	require.NoError(t, err)
	return n
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

// ---------------------------------------------------------------------------
// TestServer_Meta - Welcome and health
// ---------------------------------------------------------------------------

func TestServer_Meta(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{Version: "1.2.3"})

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)

	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", detail(t, rec))
}

// ---------------------------------------------------------------------------
// TestOfficeEndpoints - Allow-lists and naming
// ---------------------------------------------------------------------------

func TestOfficeEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		filename string
		wantName string
	}{
		{"/convert/word-to-pdf", "Quarterly Report.DOCX", "quarterly-report-topdf.pdf"},
		{"/convert/word-to-pdf", "old.doc", "old-topdf.pdf"},
		{"/convert/excel-to-pdf", "Budget 2024.xlsx", "budget-2024-topdf.pdf"},
		{"/convert/ppt-to-pdf", "deck.pptx", "deck-topdf.pdf"},
		{"/text/to-pdf", "notes.txt", "notes-topdf.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.path+" "+tt.filename, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, Options{})
			rec := env.do(t, tt.path, filePart(tt.filename, []byte("content")))

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantName, attachmentName(t, rec))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
			assert.Empty(t, env.scratchEntries(t))
		})
	}
}

func TestOfficeEndpoints_WrongType(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{})
	rec := env.do(t, "/convert/excel-to-pdf", filePart("report.docx", []byte("x")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detail(t, rec), "report.docx")
	assert.Zero(t, env.office.calls)
	assert.Empty(t, env.scratchEntries(t), "rejected uploads are never staged")
}

func TestOfficeEndpoints_ConversionFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{})
	env.office.err = &doctoolkit.RenderError{
		Command:  []string{"/usr/bin/soffice", "/tmp/secret/uploads/x.docx"},
		ExitCode: 1,
		Stderr:   "Error: source file could not be loaded: /tmp/secret/uploads/x.docx",
		Err:      doctoolkit.ErrRendererFailed,
	}

	rec := env.do(t, "/convert/word-to-pdf", filePart("x.docx", []byte("x")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "conversion failed", detail(t, rec))
	assert.NotContains(t, rec.Body.String(), "/tmp/secret")
	assert.Contains(t, env.logs.String(), "could not be loaded", "diagnostics go to the log")
	assert.Empty(t, env.scratchEntries(t))
}

// ---------------------------------------------------------------------------
// TestRequestErrors - Malformed and oversized requests
// ---------------------------------------------------------------------------

func TestRequestErrors(t *testing.T) {
	t.Parallel()

	t.Run("not multipart", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, Options{})
		req := httptest.NewRequest(http.MethodPost, "/pdf/compress", strings.NewReader(`{"file":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, detail(t, rec), "multipart")
	})

	t.Run("missing file field", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, Options{})
		rec := env.do(t, "/pdf/compress", field("pages", "[1]"))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, detail(t, rec), `"file"`)
	})

	t.Run("upload too large", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, Options{MaxUploadBytes: 4 << 10})
		rec := env.do(t, "/pdf/compress", filePart("big.pdf", bytes.Repeat([]byte("x"), 64<<10)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Empty(t, env.scratchEntries(t), "partial upload is removed")
	})
}

// ---------------------------------------------------------------------------
// TestMergeEndpoint - Multi-file staging and release
// ---------------------------------------------------------------------------

func TestMergeEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{})
	rec := env.do(t, "/pdf/merge",
		filePart("Part One.pdf", pdftest.Build(100, 110)),
		filePart("two.pdf", pdftest.Build(200)),
	)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "part-one-merged.pdf", attachmentName(t, rec))
	assert.Equal(t, 3, pageCount(t, rec.Body.Bytes()))
	assert.Empty(t, env.scratchEntries(t))
}

func TestMergeEndpoint_Rejections(t *testing.T) {
	t.Parallel()

	t.Run("single file", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, Options{})
		rec := env.do(t, "/pdf/merge", filePart("a.pdf", pdftest.Build(100)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, env.scratchEntries(t))
	})

	t.Run("invalid second file releases the first", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, Options{})
		rec := env.do(t, "/pdf/merge",
			filePart("a.pdf", pdftest.Build(100)),
			filePart("b.png", pngBytes(t, 4, 4)),
		)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, detail(t, rec), "b.png")
		assert.Empty(t, env.scratchEntries(t))
	})
}

// ---------------------------------------------------------------------------
// TestPageEndpoints - Split, remove, rotate, compress
// ---------------------------------------------------------------------------

func TestSplitEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{})
	rec := env.do(t, "/pdf/split", filePart("Big File.pdf", pdftest.Build(100, 200, 300)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, "big-file-split.zip", attachmentName(t, rec))
	assert.Equal(t, []string{"big-file_page_1.pdf", "big-file_page_2.pdf", "big-file_page_3.pdf"}, zipNames(t, rec.Body.Bytes()))
	assert.Empty(t, env.scratchEntries(t))
}

func TestRemovePagesEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		parts     []formPart
		wantCode  int
		wantPages int
	}{
		{name: "remove one", parts: []formPart{field("pages", "[2]")}, wantCode: http.StatusOK, wantPages: 2},
		{name: "remove two", parts: []formPart{field("pages", "[1, 3]")}, wantCode: http.StatusOK, wantPages: 1},
		{name: "default keeps all", wantCode: http.StatusOK, wantPages: 3},
		{name: "out of range ignored", parts: []formPart{field("pages", "[0, 9]")}, wantCode: http.StatusOK, wantPages: 3},
		{name: "remove all", parts: []formPart{field("pages", "[1,2,3]")}, wantCode: http.StatusBadRequest},
		{name: "not json", parts: []formPart{field("pages", "1,2")}, wantCode: http.StatusBadRequest},
		{name: "not integers", parts: []formPart{field("pages", `["a"]`)}, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, Options{})
			parts := append([]formPart{}, tt.parts...)
			parts = append(parts, filePart("doc.pdf", pdftest.Build(100, 200, 300)))
			rec := env.do(t, "/pdf/remove-pages", parts...)

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "doc-pages-removed.pdf", attachmentName(t, rec))
				assert.Equal(t, tt.wantPages, pageCount(t, rec.Body.Bytes()))
			}
			assert.Empty(t, env.scratchEntries(t))
		})
	}
}

func TestRotateEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{})
	rec := env.do(t, "/pdf/rotate", filePart("scan.pdf", pdftest.Build(100)), field("angle", "180"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "scan-rotated.pdf", attachmentName(t, rec))

	rec = env.do(t, "/pdf/rotate", filePart("scan.pdf", pdftest.Build(100)), field("angle", "sideways"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detail(t, rec), "sideways")
	assert.Empty(t, env.scratchEntries(t))
}

func TestCompressEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{})
	rec := env.do(t, "/pdf/compress", filePart("Big.PDF", pdftest.Build(100, 200)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "big-compressed.pdf", attachmentName(t, rec))
	assert.Equal(t, 2, pageCount(t, rec.Body.Bytes()))

	rec = env.do(t, "/pdf/compress", filePart("broken.pdf", []byte("not a pdf at all")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "conversion failed", detail(t, rec))
	assert.Empty(t, env.scratchEntries(t))
}

// ---------------------------------------------------------------------------
// TestImageEndpoints - Conversion, import and rasterization
// ---------------------------------------------------------------------------

func TestImageConvertEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format   string
		wantName string
		wantType string
	}{
		{"", "photo-converted.png", "image/png"},
		{"jpg", "photo-converted.jpeg", "image/jpeg"},
		{"WEBP", "photo-converted.webp", "image/webp"},
		{"bmp", "photo-converted.bmp", "image/bmp"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, Options{})
			parts := []formPart{filePart("Photo.png", pngBytes(t, 8, 8))}
			if tt.format != "" {
				parts = append(parts, field("format", tt.format))
			}
			rec := env.do(t, "/image/convert", parts...)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantName, attachmentName(t, rec))
			assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			assert.Empty(t, env.scratchEntries(t))
		})
	}
}

func TestImageConvertEndpoint_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{})

	rec := env.do(t, "/image/convert", filePart("a.png", pngBytes(t, 4, 4)), field("format", "tiff"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Accepted on MIME type alone.
	rec = env.do(t, "/image/convert", formPart{field: "file", filename: "camera.raw", contentType: "image/png", body: pngBytes(t, 4, 4)})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, "/image/convert", filePart("notes.txt", []byte("hi")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.scratchEntries(t))
}

func TestImagesToPDFEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{})
	rec := env.do(t, "/image/to-pdf",
		filePart("First Shot.png", pngBytes(t, 20, 10)),
		filePart("second.png", pngBytes(t, 10, 20)),
	)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "first-shot-imagestopdf.pdf", attachmentName(t, rec))
	assert.Equal(t, 2, pageCount(t, rec.Body.Bytes()))
	assert.Empty(t, env.scratchEntries(t))
}

func TestPDFToImagesEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{})
	rec := env.do(t, "/pdf/to-images", filePart("Slides.pdf", pdftest.Build(100, 200)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "slides-toimages.zip", attachmentName(t, rec))
	assert.Equal(t, []string{"slides_page_1.jpg", "slides_page_2.jpg"}, zipNames(t, rec.Body.Bytes()))
	assert.Empty(t, env.scratchEntries(t))
}

// ---------------------------------------------------------------------------
// TestMarkupEndpoints - Optional browser-backed routes
// ---------------------------------------------------------------------------

func TestMarkupEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{EnableHTML: true})

	rec := env.do(t, "/convert/markdown-to-pdf", filePart("Read Me.md", []byte("# Hello\n")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "read-me-topdf.pdf", attachmentName(t, rec))
	require.Len(t, env.browser.html, 1)
	assert.Contains(t, env.browser.html[0], "<title>read-me</title>")

	rec = env.do(t, "/convert/html-to-pdf", filePart("page.htm", []byte("<p>x</p>")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "page-topdf.pdf", attachmentName(t, rec))
	assert.Empty(t, env.scratchEntries(t))
}

func TestMarkupEndpoints_Disabled(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{})
	rec := env.do(t, "/convert/markdown-to-pdf", filePart("a.md", []byte("# a")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---------------------------------------------------------------------------
// TestCORS - Download name is readable cross-origin
// ---------------------------------------------------------------------------

func TestCORS(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{AllowedOrigins: []string{"https://app.example.com"}})

	body, contentType := multipartBody(t, filePart("a.pdf", pdftest.Build(100)))
	req := httptest.NewRequest(http.MethodPost, "/pdf/compress", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")

	req = httptest.NewRequest(http.MethodOptions, "/pdf/merge", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

// ---------------------------------------------------------------------------
// TestStatusFor / TestDetailFor - Error mapping
// ---------------------------------------------------------------------------

func TestRecoverer(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	h := hlog.NewHandler(zerolog.New(&logs))(recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "internal error", detail(t, rec))
	assert.Contains(t, logs.String(), "nil map write")
}

func TestRecoverer_AbortHandlerPropagates(t *testing.T) {
	t.Parallel()

	h := recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{doctoolkit.ErrUnsupportedType, http.StatusBadRequest},
		{doctoolkit.ErrNoPagesLeft, http.StatusBadRequest},
		{doctoolkit.ErrUploadTooLarge, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("%w: writing upload: %w", doctoolkit.ErrStorage, &http.MaxBytesError{Limit: 1}), http.StatusRequestEntityTooLarge},
		{doctoolkit.ErrMissingFile, http.StatusUnprocessableEntity},
		{doctoolkit.ErrNotMultipart, http.StatusUnprocessableEntity},
		{doctoolkit.ErrNotFound, http.StatusInternalServerError},
		{doctoolkit.ErrRendererTimeout, http.StatusInternalServerError},
		{doctoolkit.ErrStorage, http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "statusFor(%v)", tt.err)
	}
}

func TestDetailFor(t *testing.T) {
	t.Parallel()

	leaky := fmt.Errorf("%w: opening /srv/scratch/outputs/x.pdf", doctoolkit.ErrStorage)
	assert.Equal(t, "storage failure", detailFor(leaky, http.StatusInternalServerError))
	assert.Equal(t, "request canceled", detailFor(doctoolkit.ErrCanceled, http.StatusInternalServerError))
	assert.Equal(t, "internal error", detailFor(errors.New("boom"), http.StatusInternalServerError))
	assert.Equal(t, doctoolkit.ErrNoPagesLeft.Error(), detailFor(doctoolkit.ErrNoPagesLeft, http.StatusBadRequest))
}

func TestHintFor(t *testing.T) {
	t.Parallel()

	timeout := &doctoolkit.RenderError{Err: doctoolkit.ErrRendererTimeout}
	assert.Contains(t, hintFor(timeout), "renderer.timeout")
	assert.Contains(t, hintFor(doctoolkit.ErrRendererNotFound), "LibreOffice")
	assert.Empty(t, hintFor(doctoolkit.ErrInvalidPages))
}

func TestOfficeEndpoints_TimeoutLogsHint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{})
	env.office.err = &doctoolkit.RenderError{ExitCode: -1, Err: doctoolkit.ErrRendererTimeout}

	rec := env.do(t, "/convert/ppt-to-pdf", filePart("deck.pptx", []byte("x")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, env.logs.String(), "renderer.timeout")
	assert.NotContains(t, rec.Body.String(), "renderer.timeout", "hints stay in the log")
}

// ---------------------------------------------------------------------------
// TestParameters - Validation happens before staging
// ---------------------------------------------------------------------------

func TestParameters_RejectedBeforeStaging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path  string
		field formPart
		file  formPart
	}{
		{"/image/convert", field("format", "TIFF"), filePart("a.png", nil)},
		{"/pdf/remove-pages", field("pages", "nope"), filePart("a.pdf", nil)},
		{"/pdf/rotate", field("angle", "45"), filePart("a.pdf", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, Options{})
			// Any staging attempt would fail with a storage error.
			uploads := env.tk.Scratch().Uploads()
			require.NoError(t, os.RemoveAll(uploads))
			require.NoError(t, os.WriteFile(uploads, nil, 0o600))

			rec := env.do(t, tt.path, tt.field, tt.file)

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			entries, err := os.ReadDir(env.tk.Scratch().Outputs())
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestParameters_AfterFileStillRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Options{})
	rec := env.do(t, "/pdf/rotate", filePart("scan.pdf", pdftest.Build(100)), field("angle", "45"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detail(t, rec), "45")
	assert.Empty(t, env.scratchEntries(t), "the staged file is released")
}

func TestParseAngle(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"90", "180", "270"} {
		_, err := parseAngle(raw)
		assert.NoError(t, err, raw)
	}
	for _, raw := range []string{"0", "45", "360", "-90", "right"} {
		_, err := parseAngle(raw)
		assert.ErrorIs(t, err, doctoolkit.ErrInvalidAngle, raw)
	}
}

func TestParsePages(t *testing.T) {
	t.Parallel()

	pages, err := parsePages("[3, 1, 3]")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 3}, pages)

	pages, err = parsePages("[]")
	require.NoError(t, err)
	assert.Empty(t, pages)

	_, err = parsePages("[1.5]")
	assert.ErrorIs(t, err, doctoolkit.ErrInvalidPages)
}
