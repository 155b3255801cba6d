package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/alnah/go-doctoolkit"
)

const (
	fileField     = "file"
	maxFieldBytes = 64 << 10
)

// upload describes what an endpoint accepts.
type upload struct {
	kind     doctoolkit.Kind
	minFiles int
	maxFiles int // 0 = unbounded
	params   map[string]param
}

// param is a form field an endpoint understands. check runs on the raw value
// as soon as the field is read, so a bad value is rejected before any later
// file part is staged.
type param struct {
	def   string
	check func(string) error
}

// validate checks value, or def when value is blank.
func (p param) validate(value string) error {
	if v := strings.TrimSpace(value); v != "" {
		return p.check(v)
	}
	return p.check(p.def)
}

// request is a received, staged upload.
type request struct {
	files  []*doctoolkit.StagedFile
	params map[string]string
}

// Param returns a form value, or def when the field is absent or blank.
func (r *request) Param(name, def string) string {
	if v := strings.TrimSpace(r.params[name]); v != "" {
		return v
	}
	return def
}

// Paths returns the staged paths in upload order.
func (r *request) Paths() []string {
	paths := make([]string, len(r.files))
	for i, f := range r.files {
		paths[i] = f.Path
	}
	return paths
}

// receive streams the multipart body, staging each file part after checking
// it against u. Staged files are added to set as soon as they exist, so the
// caller's release covers partial uploads. File parts beyond maxFiles are
// discarded unread.
func (s *Server) receive(w http.ResponseWriter, r *http.Request, u upload, set *doctoolkit.CleanupSet) (*request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, doctoolkit.ErrNotMultipart
	}

	req := &request{params: make(map[string]string)}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, bodyError(err)
		}

		if err := s.receivePart(part, u, req, set); err != nil {
			_ = part.Close()
			return nil, err
		}
		_ = part.Close()
	}

	// Fields are checked as they arrive; this covers absent ones.
	for name, p := range u.params {
		if _, seen := req.params[name]; !seen {
			if err := p.validate(""); err != nil {
				return nil, err
			}
		}
	}

	if len(req.files) == 0 {
		return nil, doctoolkit.ErrMissingFile
	}
	if len(req.files) < u.minFiles {
		return nil, fmt.Errorf("%w: need at least %d files, got %d", doctoolkit.ErrTooFewFiles, u.minFiles, len(req.files))
	}
	return req, nil
}

func (s *Server) receivePart(part *multipart.Part, u upload, req *request, set *doctoolkit.CleanupSet) error {
	name := part.FormName()
	if name != fileField || part.FileName() == "" {
		if name == "" || name == fileField {
			return nil
		}
		value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
		if err != nil {
			return bodyError(err)
		}
		if len(value) > maxFieldBytes {
			return fmt.Errorf("%w: field %q too long", doctoolkit.ErrMalformedRequest, name)
		}
		if p, ok := u.params[name]; ok {
			if err := p.validate(string(value)); err != nil {
				return err
			}
		}
		req.params[name] = string(value)
		return nil
	}

	if u.maxFiles > 0 && len(req.files) >= u.maxFiles {
		return nil
	}

	filename := part.FileName()
	if !u.kind.Allows(filename, part.Header.Get("Content-Type")) {
		return fmt.Errorf("%w: %q is not a %s (accepted: %s)",
			doctoolkit.ErrUnsupportedType, filename, u.kind, strings.Join(u.kind.Extensions(), ", "))
	}

	body := &bodyReader{r: part}
	staged, err := s.tk.Stage(body, filename)
	if err != nil {
		if body.err != nil {
			return bodyError(body.err)
		}
		return err
	}
	set.Add(staged.Path)
	req.files = append(req.files, staged)
	return nil
}

// bodyError classifies a failure while reading the request body.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", doctoolkit.ErrUploadTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: reading multipart body: %v", doctoolkit.ErrMalformedRequest, err)
}

// bodyReader remembers the first read error so client-side failures can be
// told apart from storage failures.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && b.err == nil {
		b.err = err
	}
	return n, err
}
