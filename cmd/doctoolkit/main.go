package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-doctoolkit"
	"github.com/alnah/go-doctoolkit/internal/config"
	"github.com/alnah/go-doctoolkit/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the process exit code.
// Without a command, or when the first argument is a flag, it serves.
func runMain(args []string, env *Environment) int {
	// A missing .env is normal; any other load failure is reported but not fatal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(env.Stderr, "warning: loading .env: %v\n", err)
	}

	cmd, rest := "serve", args[1:]
	if len(rest) > 0 && len(rest[0]) > 0 && rest[0][0] != '-' {
		cmd, rest = rest[0], rest[1:]
	}

	switch cmd {
	case "serve":
		ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
		defer stop()
		return report(env, runServe(ctx, rest, env))
	case "doctor":
		return runDoctorCmd(rest, env)
	case "config":
		return report(env, runConfigCmd(rest, env))
	case "version":
		fmt.Fprintf(env.Stdout, "doctoolkit %s\n", Version)
		return ExitSuccess
	case "help":
		runHelp(rest, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "unknown command %q\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// report prints err, if any, with a hint and maps it to an exit code.
func report(env *Environment, err error) int {
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(env.Stderr, "error: %s\n", hints.Append(err.Error(), hintFor(err)))
	}
	return exitCodeFor(err)
}

// hintFor returns an actionable suggestion for startup errors, or "".
func hintFor(err error) string {
	var opErr *net.OpError
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		dir, _ := os.UserConfigDir()
		return hints.ForConfigNotFound(dir)
	case errors.Is(err, doctoolkit.ErrStorage):
		return hints.ForScratch()
	case errors.As(err, &opErr) && opErr.Op == "listen":
		return hints.ForListen()
	}
	return ""
}
