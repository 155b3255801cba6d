package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"github.com/alnah/go-doctoolkit"
)

const (
	contentTypePDF = "application/pdf"
	contentTypeZip = "application/zip"
)

// operation runs a conversion over a received request. Intermediate files it
// creates must be added to set.
type operation func(ctx context.Context, req *request, set *doctoolkit.CleanupSet) (*artifact, error)

// endpoint wires receive, run and send around a single CleanupSet. The set is
// released right away on failure and after the response body on success.
func (s *Server) endpoint(u upload, run operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set := doctoolkit.NewCleanupSet(*hlog.FromRequest(r))
		defer set.Release()

		req, err := s.receive(w, r, u, set)
		if err != nil {
			set.Release()
			s.fail(w, r, err)
			return
		}

		a, err := run(r.Context(), req, set)
		if err != nil {
			set.Release()
			s.fail(w, r, err)
			return
		}
		set.Add(a.path)
		s.send(w, r, a)
	}
}

func single(kind doctoolkit.Kind) upload {
	return upload{kind: kind, minFiles: 1, maxFiles: 1}
}

func (s *Server) officeToPDF(kind doctoolkit.Kind) http.HandlerFunc {
	return s.endpoint(single(kind), func(ctx context.Context, req *request, _ *doctoolkit.CleanupSet) (*artifact, error) {
		out, err := s.tk.OfficeToPDF(ctx, req.files[0].Path)
		if err != nil {
			return nil, err
		}
		return pdfArtifact(out, req, doctoolkit.SuffixToPDF), nil
	})
}

func (s *Server) markdownToPDF() http.HandlerFunc {
	return s.endpoint(single(doctoolkit.KindMarkdown), func(ctx context.Context, req *request, _ *doctoolkit.CleanupSet) (*artifact, error) {
		in := req.files[0]
		out, err := s.tk.MarkdownToPDF(ctx, in.Path, doctoolkit.CleanBaseName(in.OriginalName))
		if err != nil {
			return nil, err
		}
		return pdfArtifact(out, req, doctoolkit.SuffixToPDF), nil
	})
}

func (s *Server) htmlToPDF() http.HandlerFunc {
	return s.endpoint(single(doctoolkit.KindHTML), func(ctx context.Context, req *request, _ *doctoolkit.CleanupSet) (*artifact, error) {
		out, err := s.tk.HTMLToPDF(ctx, req.files[0].Path)
		if err != nil {
			return nil, err
		}
		return pdfArtifact(out, req, doctoolkit.SuffixToPDF), nil
	})
}

func (s *Server) imagesToPDF() http.HandlerFunc {
	u := upload{kind: doctoolkit.KindImage, minFiles: 1}
	return s.endpoint(u, func(ctx context.Context, req *request, _ *doctoolkit.CleanupSet) (*artifact, error) {
		out, err := s.tk.ImagesToPDF(ctx, req.Paths())
		if err != nil {
			return nil, err
		}
		return pdfArtifact(out, req, doctoolkit.SuffixImagesToPDF), nil
	})
}

func (s *Server) convertImage() http.HandlerFunc {
	u := single(doctoolkit.KindImage)
	u.params = map[string]param{"format": formatParam}
	return s.endpoint(u, func(ctx context.Context, req *request, _ *doctoolkit.CleanupSet) (*artifact, error) {
		format, err := doctoolkit.ParseImageFormat(req.Param("format", formatParam.def))
		if err != nil {
			return nil, err
		}
		out, err := s.tk.ConvertImage(ctx, req.files[0].Path, format)
		if err != nil {
			return nil, err
		}
		return &artifact{
			path:        out,
			name:        doctoolkit.DownloadName(req.files[0].OriginalName, doctoolkit.SuffixConverted(format)),
			contentType: format.ContentType(),
		}, nil
	})
}

func (s *Server) pdfToImages() http.HandlerFunc {
	return s.endpoint(single(doctoolkit.KindPDF), func(ctx context.Context, req *request, set *doctoolkit.CleanupSet) (*artifact, error) {
		in := req.files[0]
		pages, err := s.tk.PDFToImages(ctx, in.Path, doctoolkit.CleanBaseName(in.OriginalName))
		if err != nil {
			return nil, err
		}
		set.Add(pages.Dir)
		return s.zipArtifact(pages, req, "images.zip", doctoolkit.SuffixToImages)
	})
}

func (s *Server) mergePDFs() http.HandlerFunc {
	u := upload{kind: doctoolkit.KindPDF, minFiles: 2}
	return s.endpoint(u, func(ctx context.Context, req *request, _ *doctoolkit.CleanupSet) (*artifact, error) {
		out, err := s.tk.MergePDFs(ctx, req.Paths())
		if err != nil {
			return nil, err
		}
		return pdfArtifact(out, req, doctoolkit.SuffixMerged), nil
	})
}

func (s *Server) splitPDF() http.HandlerFunc {
	return s.endpoint(single(doctoolkit.KindPDF), func(ctx context.Context, req *request, set *doctoolkit.CleanupSet) (*artifact, error) {
		in := req.files[0]
		pages, err := s.tk.SplitPDF(ctx, in.Path, doctoolkit.CleanBaseName(in.OriginalName))
		if err != nil {
			return nil, err
		}
		set.Add(pages.Dir)
		return s.zipArtifact(pages, req, "pages.zip", doctoolkit.SuffixSplit)
	})
}

func (s *Server) compressPDF() http.HandlerFunc {
	return s.endpoint(single(doctoolkit.KindPDF), func(ctx context.Context, req *request, _ *doctoolkit.CleanupSet) (*artifact, error) {
		out, err := s.tk.CompressPDF(ctx, req.files[0].Path)
		if err != nil {
			return nil, err
		}
		return pdfArtifact(out, req, doctoolkit.SuffixCompressed), nil
	})
}

func (s *Server) removePages() http.HandlerFunc {
	u := single(doctoolkit.KindPDF)
	u.params = map[string]param{"pages": pagesParam}
	return s.endpoint(u, func(ctx context.Context, req *request, _ *doctoolkit.CleanupSet) (*artifact, error) {
		pages, err := parsePages(req.Param("pages", pagesParam.def))
		if err != nil {
			return nil, err
		}
		out, err := s.tk.RemovePages(ctx, req.files[0].Path, pages)
		if err != nil {
			return nil, err
		}
		return pdfArtifact(out, req, doctoolkit.SuffixPagesRemoved), nil
	})
}

func (s *Server) rotatePDF() http.HandlerFunc {
	u := single(doctoolkit.KindPDF)
	u.params = map[string]param{"angle": angleParam}
	return s.endpoint(u, func(ctx context.Context, req *request, _ *doctoolkit.CleanupSet) (*artifact, error) {
		angle, err := parseAngle(req.Param("angle", angleParam.def))
		if err != nil {
			return nil, err
		}
		out, err := s.tk.RotatePDF(ctx, req.files[0].Path, angle)
		if err != nil {
			return nil, err
		}
		return pdfArtifact(out, req, doctoolkit.SuffixRotated), nil
	})
}

// Endpoint parameters.
var (
	formatParam = param{def: string(doctoolkit.FormatPNG), check: func(v string) error {
		_, err := doctoolkit.ParseImageFormat(v)
		return err
	}}
	pagesParam = param{def: "[]", check: func(v string) error {
		_, err := parsePages(v)
		return err
	}}
	angleParam = param{def: "90", check: func(v string) error {
		_, err := parseAngle(v)
		return err
	}}
)

// parseAngle accepts a clockwise rotation of 90, 180 or 270 degrees.
func parseAngle(raw string) (int, error) {
	angle, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: got %q", doctoolkit.ErrInvalidAngle, raw)
	}
	switch angle {
	case 90, 180, 270:
		return angle, nil
	}
	return 0, fmt.Errorf("%w: got %d", doctoolkit.ErrInvalidAngle, angle)
}

// parsePages decodes a JSON list of 1-based page numbers.
func parsePages(raw string) ([]int, error) {
	var pages []int
	if err := json.Unmarshal([]byte(raw), &pages); err != nil {
		return nil, fmt.Errorf("%w: got %q", doctoolkit.ErrInvalidPages, raw)
	}
	return pages, nil
}

// pdfArtifact names a PDF result after the first uploaded file.
func pdfArtifact(path string, req *request, suffix string) *artifact {
	return &artifact{
		path:        path,
		name:        doctoolkit.DownloadName(req.files[0].OriginalName, suffix),
		contentType: contentTypePDF,
	}
}

// zipArtifact archives a page set in page order.
func (s *Server) zipArtifact(pages *doctoolkit.PageSet, req *request, entry, suffix string) (*artifact, error) {
	zip, err := s.tk.Archive(pages.Paths, entry)
	if err != nil {
		return nil, err
	}
	return &artifact{
		path:        zip,
		name:        doctoolkit.DownloadName(req.files[0].OriginalName, suffix),
		contentType: contentTypeZip,
	}, nil
}
