package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doctoolkit [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the conversion API (default)")
	fmt.Fprintln(w, "  doctor     Check LibreOffice, Chrome and the scratch directory")
	fmt.Fprintln(w, "  config     Print the effective configuration as YAML")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'doctoolkit help <command>' for details on a specific command.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doctoolkit serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP conversion API until SIGINT or SIGTERM.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <path>       Config file (default: ./doctoolkit.yaml if present)")
	fmt.Fprintln(w, "      --addr <host:port>    Listen address (default :8000)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel PDF/image workers (0 = auto)")
	fmt.Fprintln(w, "      --scratch <dir>       Scratch directory for uploads and outputs")
	fmt.Fprintln(w, "      --renderer <path>     LibreOffice binary (default: discover)")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DOCTOOLKIT_CONFIG, DOCTOOLKIT_ADDR, DOCTOOLKIT_SCRATCH_ROOT, DOCTOOLKIT_RETENTION,")
	fmt.Fprintln(w, "  DOCTOOLKIT_RENDERER_BIN, DOCTOOLKIT_RENDERER_TIMEOUT, DOCTOOLKIT_RENDERER_CONCURRENCY,")
	fmt.Fprintln(w, "  DOCTOOLKIT_CHROME_BIN, DOCTOOLKIT_WORKERS, DOCTOOLKIT_LOG_LEVEL, DOCTOOLKIT_LOG_FORMAT")
	fmt.Fprintln(w, "  A .env file in the working directory is loaded first.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doctoolkit doctor [--json] [-c <path>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the service can run. Exits 1 when errors are found.")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doctoolkit config [-c <path>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after file, environment and defaults are merged.")
}

// runHelp prints help for a command, or the main usage.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}
	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "unknown command %q\n\n", args[0])
		printUsage(env.Stderr)
	}
}
