// Package server exposes the conversion toolkit over HTTP.
//
// Every conversion endpoint accepts multipart/form-data with one or more
// "file" parts and answers with the produced artifact as an attachment.
// Uploads are validated against the endpoint's allow-list before they are
// written to disk, and every file a request creates is deleted once the
// response has been sent, or immediately when the request fails.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/alnah/go-doctoolkit"
)

// DefaultMaxUploadBytes bounds a request body when Options leaves it zero.
const DefaultMaxUploadBytes int64 = 100 << 20

// Options configures a Server.
type Options struct {
	MaxUploadBytes int64    // Whole request body limit; 0 = DefaultMaxUploadBytes
	AllowedOrigins []string // CORS origins; empty = "*"
	EnableHTML     bool     // Register the Markdown and HTML endpoints
	Version        string
}

// Server routes requests to a Toolkit.
type Server struct {
	tk     *doctoolkit.Toolkit
	logger zerolog.Logger
	opts   Options
}

// New returns a Server backed by tk.
func New(tk *doctoolkit.Toolkit, logger zerolog.Logger, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{tk: tk, logger: logger, opts: opts}
}

// Handler builds the router with logging, recovery and CORS middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(hlog.MethodHandler("method"))
	r.Use(hlog.URLHandler("url"))
	r.Use(recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition"},
	}).Handler)

	r.Get("/", s.welcome)
	r.Get("/health", s.health)

	r.Route("/convert", func(r chi.Router) {
		r.Post("/word-to-pdf", s.officeToPDF(doctoolkit.KindWord))
		r.Post("/excel-to-pdf", s.officeToPDF(doctoolkit.KindExcel))
		r.Post("/ppt-to-pdf", s.officeToPDF(doctoolkit.KindPowerPoint))
		if s.opts.EnableHTML {
			r.Post("/markdown-to-pdf", s.markdownToPDF())
			r.Post("/html-to-pdf", s.htmlToPDF())
		}
	})
	r.Post("/text/to-pdf", s.officeToPDF(doctoolkit.KindText))

	r.Route("/image", func(r chi.Router) {
		r.Post("/to-pdf", s.imagesToPDF())
		r.Post("/convert", s.convertImage())
	})

	r.Route("/pdf", func(r chi.Router) {
		r.Post("/to-images", s.pdfToImages())
		r.Post("/merge", s.mergePDFs())
		r.Post("/split", s.splitPDF())
		r.Post("/compress", s.compressPDF())
		r.Post("/remove-pages", s.removePages())
		r.Post("/rotate", s.rotatePDF())
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func (s *Server) welcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "doctoolkit file conversion API",
		"version": s.opts.Version,
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// recoverer turns a handler panic into a logged 500 with the usual JSON
// body. http.ErrAbortHandler is re-raised so net/http can abort the response.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if err, ok := rvr.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rvr)
			}
			hlog.FromRequest(r).Error().
				Interface("panic", rvr).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
