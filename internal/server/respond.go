package server

import (
	"errors"
	"mime"
	"net/http"
	"os"

	"github.com/rs/zerolog/hlog"

	"github.com/alnah/go-doctoolkit"
	"github.com/alnah/go-doctoolkit/internal/hints"
)

// artifact is a produced file and how to present it.
type artifact struct {
	path        string
	name        string
	contentType string
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, doctoolkit.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, doctoolkit.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, doctoolkit.ErrMalformedRequest):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// detailFor returns the message shown to the client. Client errors describe
// the request; server errors only name their kind so no path or renderer
// output leaks.
func detailFor(err error, status int) string {
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	for _, kind := range []error{doctoolkit.ErrCanceled, doctoolkit.ErrNotFound, doctoolkit.ErrConversion, doctoolkit.ErrStorage} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal error"
}

// fail logs err with the request context and writes the JSON error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	event := hlog.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
	}
	var rerr *doctoolkit.RenderError
	if errors.As(err, &rerr) {
		event = event.Strs("command", rerr.Command).Int("exit_code", rerr.ExitCode).Str("stderr", rerr.Stderr)
	}
	if hint := hintFor(err); hint != "" {
		event = event.Str("hint", hint)
	}
	event.Err(err).Int("status", status).Msg("request failed")

	writeDetail(w, status, detailFor(err, status))
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// send streams the artifact as an attachment.
func (s *Server) send(w http.ResponseWriter, r *http.Request, a *artifact) {
	f, err := os.Open(a.path) // #nosec G304 -- generated output path
	if err != nil {
		s.fail(w, r, doctoolkit.ErrStorage)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.fail(w, r, doctoolkit.ErrStorage)
		return
	}

	w.Header().Set("Content-Type", a.contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.name}))
	http.ServeContent(w, r, a.name, info.ModTime(), f)
}

// hintFor returns an operator-facing suggestion for renderer failures.
// Hints are logged only; clients never see them.
func hintFor(err error) string {
	switch {
	case errors.Is(err, doctoolkit.ErrRendererNotFound):
		return hints.ForRendererNotFound()
	case errors.Is(err, doctoolkit.ErrRendererTimeout):
		return hints.ForRendererTimeout()
	case errors.Is(err, doctoolkit.ErrBrowserRender):
		return hints.ForBrowserLaunch(os.Getenv)
	}
	return ""
}
