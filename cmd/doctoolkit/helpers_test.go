package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// testEnvironment returns an Environment backed by vars, with captured output.
// DOCTOOLKIT_SCRATCH_ROOT defaults to a test directory so nothing touches the
// real temp tree.
func testEnvironment(t *testing.T, vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	all := map[string]string{"DOCTOOLKIT_SCRATCH_ROOT": t.TempDir()}
	for k, v := range vars {
		all[k] = v
	}

	var stdout, stderr bytes.Buffer
	env := &Environment{
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(k string) string { return all[k] },
		Environ: func() []string {
			out := make([]string, 0, len(all))
			for k, v := range all {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
	return env, &stdout, &stderr
}

// writeConfigFile writes a YAML config into a temp dir and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doctoolkit.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}
