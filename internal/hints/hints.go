// Package hints provides actionable suggestions for common failure scenarios.
// Functions return the bare suggestion; Append formats it for CLI output as
// "\n  hint: <text>".
package hints

import (
	"strings"

	"github.com/alnah/go-doctoolkit/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserLaunch returns hints for Chrome launch or render failures.
// Detects CI/Docker environments and suggests the relevant variables.
func ForBrowserLaunch(getenv func(string) string) string {
	var hints []string

	inCI := getenv("CI") != "" ||
		getenv("GITHUB_ACTIONS") != "" ||
		getenv("GITLAB_CI") != "" ||
		getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" && getenv("DOCTOOLKIT_CHROME_BIN") == "" {
		hints = append(hints, "set DOCTOOLKIT_CHROME_BIN to use an installed Chrome")
	}
	return strings.Join(hints, "; ")
}

// ForRendererNotFound returns a hint for a missing LibreOffice binary.
func ForRendererNotFound() string {
	return "install LibreOffice or set renderer.binary / DOCTOOLKIT_RENDERER_BIN; run 'doctoolkit doctor'"
}

// ForRendererTimeout returns a hint for renderer runs cut off by the timeout.
func ForRendererTimeout() string {
	return "for large documents, raise renderer.timeout or DOCTOOLKIT_RENDERER_TIMEOUT"
}

// ForConfigNotFound returns a hint naming the locations searched when no
// --config is given.
func ForConfigNotFound(userConfigDir string) string {
	hint := "check the --config path or DOCTOOLKIT_CONFIG"
	if userConfigDir != "" {
		hint += "; without either, ./doctoolkit.yaml or " + userConfigDir + "/doctoolkit/config.yaml is used"
	}
	return hint
}

// ForListen returns hints for listener errors.
func ForListen() string {
	return "the address may be in use; choose another with --addr or DOCTOOLKIT_ADDR"
}

// ForScratch returns hints for scratch directory errors.
func ForScratch() string {
	return "check the scratch root exists and is writable, or set --scratch / DOCTOOLKIT_SCRATCH_ROOT"
}

// Append adds hint to msg with consistent formatting. An empty hint leaves
// msg unchanged.
func Append(msg, hint string) string {
	if hint == "" {
		return msg
	}
	return msg + "\n  hint: " + hint
}
