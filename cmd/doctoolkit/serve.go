package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-doctoolkit"
	"github.com/alnah/go-doctoolkit/internal/config"
	"github.com/alnah/go-doctoolkit/internal/hints"
	"github.com/alnah/go-doctoolkit/internal/server"
)

// runServe parses flags, resolves the configuration and serves until ctx ends.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(&flags.common, flags, env)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log, env.Stderr)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug().Msgf(format, args...)
	}))

	return serve(ctx, cfg, logger, nil)
}

// serve runs the HTTP server and the scratch sweeper until ctx is canceled,
// then shuts down gracefully. When ready is non-nil it receives the bound
// address once the listener is open.
func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger, ready chan<- string) error {
	scratch, err := doctoolkit.NewScratch(cfg.Scratch.Root)
	if err != nil {
		return err
	}

	tk := newToolkit(cfg, scratch, logger)
	defer func() {
		if err := tk.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing renderers")
		}
	}()

	srv := server.New(tk, logger, server.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		EnableHTML:     cfg.Chrome.Enabled,
		Version:        Version,
	})
	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout.D(),
		ReadTimeout:       cfg.Server.ReadTimeout.D(),
		WriteTimeout:      cfg.Server.WriteTimeout.D(),
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	sweeper := doctoolkit.NewSweeper(scratch, cfg.Scratch.Retention.D(), cfg.Scratch.SweepInterval.D(), logger)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(sweepCtx)
	}()

	logger.Info().
		Str("addr", ln.Addr().String()).
		Str("scratch", scratch.Root()).
		Int("workers", tk.Workers()).
		Str("version", Version).
		Msg("listening")
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(ln) }()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("serving: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.D())
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("shutdown: %w", err)
		}
	}

	stopSweep()
	wg.Wait()
	return serveErr
}

// newToolkit wires the renderers and worker pool from cfg.
func newToolkit(cfg *config.Config, scratch *doctoolkit.Scratch, logger zerolog.Logger) *doctoolkit.Toolkit {
	office := doctoolkit.NewOfficeRenderer(
		doctoolkit.WithOfficeBinary(cfg.Renderer.Binary),
		doctoolkit.WithRenderTimeout(cfg.Renderer.Timeout.D()),
		doctoolkit.WithRenderConcurrency(cfg.Renderer.Concurrency),
		doctoolkit.WithOfficeLogger(logger),
	)
	if bin, err := office.Binary(); err != nil {
		logger.Warn().Err(err).Str("hint", hints.ForRendererNotFound()).
			Msg("office renderer unavailable; office conversions will fail")
	} else {
		logger.Debug().Str("binary", bin).Msg("office renderer")
	}

	opts := []doctoolkit.Option{
		doctoolkit.WithLogger(logger),
		doctoolkit.WithWorkers(cfg.Workers),
		doctoolkit.WithOfficeRenderer(office),
		doctoolkit.WithImageDPI(cfg.Images.DPI),
		doctoolkit.WithJPEGQuality(cfg.Images.JPEGQuality),
	}
	if cfg.Chrome.Enabled {
		opts = append(opts, doctoolkit.WithHTMLRenderer(
			doctoolkit.NewChromeRenderer(cfg.Chrome.PoolSize, cfg.Chrome.Timeout.D(), cfg.Chrome.Binary)))
	}
	return doctoolkit.New(scratch, opts...)
}
