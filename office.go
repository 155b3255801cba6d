package doctoolkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/alnah/go-doctoolkit/internal/fileutil"
	"github.com/alnah/go-doctoolkit/internal/process"
)

// Office renderer defaults.
const (
	DefaultRenderTimeout     = 120 * time.Second
	DefaultRenderConcurrency = 1

	// maxCapturedOutput caps the stdout/stderr kept for diagnostics.
	maxCapturedOutput = 64 << 10

	// waitDelay bounds the wait for pipes after the process group is killed.
	waitDelay = 5 * time.Second
)

// officeCandidates lists well-known install locations per platform, checked
// after PATH lookup fails.
var officeCandidates = map[string][]string{
	"windows": {
		`C:\Program Files\LibreOffice\program\soffice.exe`,
		`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
	},
	"darwin": {
		"/Applications/LibreOffice.app/Contents/MacOS/soffice",
		"/opt/homebrew/bin/soffice",
	},
	"linux": {
		"/usr/bin/libreoffice",
		"/usr/bin/soffice",
		"/usr/lib/libreoffice/program/soffice",
		"/opt/libreoffice/program/soffice",
		"/snap/bin/libreoffice",
	},
}

// officeNames are looked up on PATH first.
var officeNames = []string{"soffice", "libreoffice"}

// FindOfficeBinary locates the LibreOffice executable.
// An explicit path wins; otherwise PATH, then platform locations are tried.
func FindOfficeBinary(explicit string) (string, error) {
	if explicit != "" {
		if fileutil.FileExists(explicit) {
			return explicit, nil
		}
		if p, err := exec.LookPath(explicit); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("%w: %s", ErrRendererNotFound, explicit)
	}

	for _, name := range officeNames {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	for _, p := range officeCandidates[runtime.GOOS] {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", ErrRendererNotFound
}

// RenderResult describes a successful office renderer invocation.
type RenderResult struct {
	Output   string // final PDF path in the output directory
	Command  []string
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// DocumentRenderer converts an office document into a PDF inside outDir.
type DocumentRenderer interface {
	Render(ctx context.Context, input, outDir string) (*RenderResult, error)
}

var _ DocumentRenderer = (*OfficeRenderer)(nil)

// OfficeRenderer runs LibreOffice in headless mode, one process per document.
// Each invocation gets a private work directory and user profile so parallel
// runs never share state. The number of concurrent processes is bounded.
type OfficeRenderer struct {
	binary      string
	timeout     time.Duration
	concurrency int
	sem         *semaphore.Weighted
	logger      zerolog.Logger

	once     sync.Once
	resolved string
	findErr  error
}

// OfficeOption configures an OfficeRenderer.
type OfficeOption func(*OfficeRenderer)

// WithOfficeBinary sets the executable path, skipping discovery.
func WithOfficeBinary(path string) OfficeOption {
	return func(r *OfficeRenderer) { r.binary = path }
}

// WithRenderTimeout bounds each renderer process.
func WithRenderTimeout(d time.Duration) OfficeOption {
	return func(r *OfficeRenderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRenderConcurrency sets how many renderer processes may run at once.
func WithRenderConcurrency(n int) OfficeOption {
	return func(r *OfficeRenderer) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithOfficeLogger sets the logger for renderer diagnostics.
func WithOfficeLogger(l zerolog.Logger) OfficeOption {
	return func(r *OfficeRenderer) { r.logger = l }
}

// NewOfficeRenderer creates a renderer. The executable is resolved on first use,
// so a missing LibreOffice only fails office conversions.
func NewOfficeRenderer(opts ...OfficeOption) *OfficeRenderer {
	r := &OfficeRenderer{
		timeout:     DefaultRenderTimeout,
		concurrency: DefaultRenderConcurrency,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sem = semaphore.NewWeighted(int64(r.concurrency))
	return r
}

// Binary returns the resolved executable path.
func (r *OfficeRenderer) Binary() (string, error) {
	r.once.Do(func() {
		r.resolved, r.findErr = FindOfficeBinary(r.binary)
	})
	return r.resolved, r.findErr
}

// Render converts input to PDF and moves the result to outDir under a fresh
// name. Non-zero exit, timeout and missing output all return *RenderError.
func (r *OfficeRenderer) Render(ctx context.Context, input, outDir string) (*RenderResult, error) {
	bin, err := r.Binary()
	if err != nil {
		return nil, err
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: waiting for renderer: %v", ErrCanceled, err)
	}
	defer r.sem.Release(1)

	workDir, err := os.MkdirTemp(outDir, "render-*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating render directory: %v", ErrStorage, err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			r.logger.Warn().Err(err).Str("path", workDir).Msg("render directory cleanup failed")
		}
	}()

	args := []string{
		"-env:UserInstallation=" + profileURL(filepath.Join(workDir, "profile")),
		"--headless",
		"--norestore",
		"--nolockcheck",
		"--convert-to", "pdf",
		"--outdir", workDir,
		input,
	}
	command := append([]string{bin}, args...)

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, args...) // #nosec G204 -- argument vector, no shell
	process.Configure(cmd)
	cmd.WaitDelay = waitDelay
	var stdout, stderr cappedBuffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	fail := func(kind error, exitCode int) (*RenderResult, error) {
		rerr := &RenderError{
			Command:  command,
			ExitCode: exitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      kind,
		}
		r.logger.Error().
			Strs("argv", command).
			Int("exit_code", exitCode).
			Str("stderr", rerr.Stderr).
			Dur("elapsed", elapsed).
			Msg("office render failed")
		return nil, rerr
	}

	if runErr != nil {
		switch {
		case ctx.Err() != nil:
			return nil, fmt.Errorf("%w: %v", ErrCanceled, ctx.Err())
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			return fail(ErrRendererTimeout, -1)
		}
		code := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			code = exitErr.ExitCode()
		}
		return fail(ErrRendererFailed, code)
	}

	produced := filepath.Join(workDir, strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))+".pdf")
	if !fileutil.FileExists(produced) {
		return fail(ErrNoOutput, 0)
	}

	final := filepath.Join(outDir, uuid.NewString()+".pdf")
	if err := fileutil.MoveFile(produced, final); err != nil {
		return nil, fmt.Errorf("%w: moving rendered PDF: %v", ErrStorage, err)
	}

	r.logger.Debug().Str("input", filepath.Base(input)).Dur("elapsed", elapsed).Msg("office render done")

	return &RenderResult{
		Output:   final,
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}, nil
}

// profileURL builds the file URL LibreOffice expects for -env:UserInstallation.
func profileURL(dir string) string {
	p := filepath.ToSlash(dir)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// cappedBuffer keeps the first maxCapturedOutput bytes written to it and
// silently discards the rest.
type cappedBuffer struct {
	buf bytes.Buffer
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := maxCapturedOutput - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
