package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestCLI_E2E verifies the built binary functions correctly
func TestCLI_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}

	tmpDir := t.TempDir()
	binName := "parfor"
	if runtime.GOOS == "windows" {
		binName = "parfor.exe"
	}
	binPath := filepath.Join(tmpDir, binName)

	// go test runs in test/e2e; build from the module root.
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/parfor")
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build parfor: %v", err)
	}

	profile := filepath.Join(tmpDir, "calibration.json")

	tests := []struct {
		name     string
		args     []string
		wantOut  string // substring match (case-insensitive)
		wantCode int
	}{
		{
			name:     "Basic Run",
			args:     []string{"-n", "10"},
			wantOut:  "Checksum:  285",
			wantCode: 0,
		},
		{
			name:     "Help",
			args:     []string{"--help"},
			wantOut:  "usage",
			wantCode: 0,
		},
		{
			name:     "All Strategies Comparison",
			args:     []string{"-n", "100000", "--strategy", "all"},
			wantOut:  "All checksums are consistent",
			wantCode: 0,
		},
		{
			name:     "Quiet Mode",
			args:     []string{"-n", "10", "--quiet"},
			wantOut:  "285",
			wantCode: 0,
		},
		{
			name:     "Explain Plan",
			args:     []string{"-n", "1000", "--parallelism", "4", "--explain"},
			wantOut:  "parallel (min 128 <= naive 250)",
			wantCode: 0,
		},
		{
			name:     "Explain Sequential Boundary",
			args:     []string{"-n", "1000", "--parallelism", "8", "--min-partition", "126", "--explain"},
			wantOut:  "sequential (min 126 > naive 125)",
			wantCode: 0,
		},
		{
			name:     "Injected Failure",
			args:     []string{"-n", "1000", "--fail-at", "500"},
			wantOut:  "index 500",
			wantCode: 1,
		},
		{
			name:     "Invalid Executor",
			args:     []string{"--executor", "threads"},
			wantOut:  "unknown executor",
			wantCode: 4,
		},
		{
			name:     "Very Short Timeout",
			args:     []string{"-n", "100000000", "--workload", "primes", "--timeout", "1ms"},
			wantOut:  "",
			wantCode: 2,
		},
		{
			name:     "Empty Range",
			args:     []string{"-n", "0"},
			wantOut:  "Checksum:  0",
			wantCode: 0,
		},
		{
			name:     "Completion",
			args:     []string{"--completion", "bash"},
			wantOut:  "_parfor_completions",
			wantCode: 0,
		},
		{
			name:     "Version Flag",
			args:     []string{"--version"},
			wantOut:  "parfor",
			wantCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--calibration-profile", profile}, tt.args...)
			cmd := exec.Command(binPath, args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			output, err := cmd.CombinedOutput()
			outStr := string(output)

			if tt.wantCode == 0 {
				if err != nil {
					t.Errorf("Command failed unexpectedly: %v\nOutput: %s", err, outStr)
				}
			} else {
				var exitErr *exec.ExitError
				switch {
				case err == nil:
					t.Errorf("Expected exit code %d, but command succeeded.\nOutput: %s", tt.wantCode, outStr)
				case errors.As(err, &exitErr) && exitErr.ExitCode() != tt.wantCode:
					t.Errorf("Exit code = %d, want %d\nOutput: %s", exitErr.ExitCode(), tt.wantCode, outStr)
				}
			}

			if tt.wantOut != "" && !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
				t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
			}
		})
	}
}
