package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-doctoolkit"
	"github.com/alnah/go-doctoolkit/internal/config"
)

// versionProbeTimeout bounds each "<binary> --version" call.
const versionProbeTimeout = 20 * time.Second

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Office   binaryInfo `json:"office"`
	Chrome   binaryInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// binaryInfo holds external renderer detection results.
type binaryInfo struct {
	Enabled bool   `json:"enabled"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
}

// systemInfo holds system check results.
type systemInfo struct {
	ScratchRoot     string `json:"scratch_root"`
	ScratchWritable bool   `json:"scratch_writable"`
	Workers         int    `json:"workers"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = usage.
func runDoctorCmd(args []string, env *Environment) int {
	var jsonOutput bool
	common, err := parseCommonFlags("doctor", args, env.Stderr, func(fs *flag.FlagSet) {
		fs.BoolVar(&jsonOutput, "json", false, "machine-readable output")
	})
	if err != nil {
		return report(env, err)
	}
	cfg, err := loadConfig(common, nil, env)
	if err != nil {
		return report(env, err)
	}

	result := runDoctor(cfg, env.Getenv)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(cfg *config.Config, getenv func(string) string) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			NoSandbox: getenv("ROD_NO_SANDBOX"),
		},
	}

	checkOffice(result, cfg)
	checkChrome(result, cfg, getenv)
	checkEnvironment(result, getenv)
	checkSystem(result, cfg)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkOffice locates LibreOffice the same way the renderer does.
// A missing office suite is an error: most endpoints depend on it.
func checkOffice(result *doctorResult, cfg *config.Config) {
	result.Office.Enabled = true
	path, err := doctoolkit.FindOfficeBinary(cfg.Renderer.Binary)
	if err != nil {
		result.Errors = append(result.Errors,
			"LibreOffice not found. Install it or set renderer.binary / DOCTOOLKIT_RENDERER_BIN")
		return
	}
	result.Office.Found = true
	result.Office.Path = path
	result.Office.Version = probeVersion(result, "LibreOffice", path)
}

// checkChrome detects Chrome/Chromium when HTML rendering is enabled.
// A missing browser is only a warning: rod can download one on first use.
func checkChrome(result *doctorResult, cfg *config.Config, getenv func(string) string) {
	if !cfg.Chrome.Enabled {
		return
	}
	result.Chrome.Enabled = true

	path := cfg.Chrome.Binary
	if path == "" {
		path = getenv("ROD_BROWSER_BIN")
	}
	if path == "" {
		var found bool
		if path, found = launcher.LookPath(); !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; it will be downloaded on first HTML conversion. Set chrome.binary or ROD_BROWSER_BIN to avoid this")
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Chrome not found at %s", path))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = path
	result.Chrome.Version = probeVersion(result, "Chrome", path)
}

// probeVersion runs "<path> --version", recording a warning on failure.
func probeVersion(result *doctorResult, name, path string) string {
	ctx, cancel := context.WithTimeout(context.Background(), versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output() // #nosec G204 -- operator-configured binary
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get %s version: %v", name, err))
		return ""
	}
	return strings.TrimSpace(string(out))
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Chrome.Enabled && result.Env.Container && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1 if Chrome fails to start")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("DOCTOOLKIT_CONTAINER") == "1" {
		return true, "DOCTOOLKIT_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the scratch area can be created and written.
func checkSystem(result *doctorResult, cfg *config.Config) {
	result.System.Workers = doctoolkit.ResolvePoolSize(cfg.Workers)

	scratch, err := doctoolkit.NewScratch(cfg.Scratch.Root)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Scratch directory unusable: %v", err))
		return
	}
	result.System.ScratchRoot = scratch.Root()

	probe := scratch.OutputPath("doctor", ".tmp")
	if err := os.WriteFile(probe, []byte("probe"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Scratch directory not writable: %s", scratch.Root()))
		return
	}
	_ = os.Remove(probe)
	result.System.ScratchWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "doctoolkit doctor")
	fmt.Fprintln(w)

	printBinary(w, "LibreOffice", r.Office)
	printBinary(w, "Chrome/Chromium", r.Chrome)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.ScratchWritable {
		fmt.Fprintf(w, "  [OK] Scratch directory: %s\n", r.System.ScratchRoot)
	} else {
		fmt.Fprintln(w, "  [ERROR] Scratch directory: not writable")
	}
	fmt.Fprintf(w, "  [OK] Workers: %d\n", r.System.Workers)
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to serve")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printBinary(w io.Writer, name string, b binaryInfo) {
	fmt.Fprintln(w, name)
	switch {
	case !b.Enabled:
		fmt.Fprintln(w, "  [OK] Disabled")
	case b.Found:
		fmt.Fprintf(w, "  [OK] Found at %s\n", b.Path)
		if b.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", b.Version)
		}
	default:
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)
}
