package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	verbose bool
}

// serveFlags holds flags for the serve command. Zero values mean "not set"
// so they never override config or environment.
type serveFlags struct {
	common   commonFlags
	addr     string
	workers  int
	scratch  string
	renderer string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// parseServeFlags parses serve command flags. Positional arguments are rejected.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &serveFlags{}

	fs.StringVar(&f.addr, "addr", "", "listen address (default :8000)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel PDF/image workers (0 = auto)")
	fs.StringVar(&f.scratch, "scratch", "", "scratch directory (default <tmp>/doctoolkit)")
	fs.StringVar(&f.renderer, "renderer", "", "LibreOffice binary (default: discover)")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printServeUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	if f.workers < 0 {
		return nil, fmt.Errorf("%w: --workers must be >= 0", ErrUsage)
	}
	return f, nil
}

// parseCommonFlags parses the flags of commands that only need a config.
func parseCommonFlags(name string, args []string, stderr io.Writer, extra func(*flag.FlagSet)) (*commonFlags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &commonFlags{}
	addCommonFlags(fs, f)
	if extra != nil {
		extra(fs)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}
