package main

import (
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-doctoolkit/internal/config"
)

// Exit codes for the doctoolkit CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage.
const (
	ExitSuccess = 0 // Clean shutdown or successful command
	ExitGeneral = 1 // Runtime failure (listener, scratch, diagnostics)
	ExitUsage   = 2 // Invalid flags, environment or config
)

// ErrUsage marks command-line mistakes.
var ErrUsage = errors.New("usage error")

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) {
		return ExitUsage
	}

	return ExitGeneral
}
