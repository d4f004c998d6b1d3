//go:build integration

package main

import (
	"encoding/json"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skyscout/skyscout-cli/internal/api"
	"github.com/skyscout/skyscout-cli/internal/testutil"
)

var binaryPath string

// TestMain builds the binary before running tests
func TestMain(m *testing.M) {
	binaryPath = filepath.Join(os.TempDir(), "skyscout-test")
	build := exec.Command("go", "build", "-o", binaryPath, ".")
	if err := build.Run(); err != nil {
		os.Exit(1)
	}

	code := m.Run()

	_ = os.Remove(binaryPath)
	os.Exit(code)
}

// runCommand runs the binary against env, which is appended to a minimal
// environment so a developer's own config does not leak in.
func runCommand(t *testing.T, env []string, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append([]string{
		"HOME=" + t.TempDir(),
		"XDG_CACHE_HOME=" + t.TempDir(),
		"CACHE_DISABLED=true",
		"LOG_LEVEL=error",
	}, env...)

	stdout, err := cmd.Output()
	stderr := ""
	exitCode := 0

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			stderr = string(exitErr.Stderr)
		}
	}

	return string(stdout), stderr, exitCode
}

// mockServices serves the places and fare endpoints and returns the env
// pointing the binary at them
func mockServices(t *testing.T) []string {
	t.Helper()
	ms := testutil.NewMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case api.EndpointPlaces:
			_, _ = w.Write([]byte(testutil.SamplePlacesResponse))
		case api.EndpointFares:
			if r.URL.Query().Get("destination") == "TRV" {
				_, _ = w.Write([]byte(testutil.SampleFaresResponse))
				return
			}
			_, _ = w.Write([]byte(testutil.SampleFaresFailureResponse))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	t.Cleanup(ms.Close)
	return []string{"PLACES_BASE_URL=" + ms.URL, "FARES_BASE_URL=" + ms.URL}
}

func TestCLI_Version(t *testing.T) {
	stdout, _, exitCode := runCommand(t, nil, "--version")

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}

	if !strings.Contains(stdout, "skyscout version") {
		t.Errorf("Expected version output, got: %s", stdout)
	}
}

func TestCLI_Help(t *testing.T) {
	stdout, _, exitCode := runCommand(t, nil, "--help")

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}

	if !strings.Contains(stdout, "skyscout is a command-line interface") {
		t.Errorf("Expected help text, got: %s", stdout)
	}

	commands := []string{"places", "fares", "deals", "tui", "cache"}
	for _, cmd := range commands {
		if !strings.Contains(stdout, cmd) {
			t.Errorf("Expected command '%s' in help output", cmd)
		}
	}
}

func TestCLI_PlacesCommand_MissingTerm(t *testing.T) {
	_, _, exitCode := runCommand(t, nil, "places")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for missing term")
	}
}

func TestCLI_PlacesCommand_JSONOutput(t *testing.T) {
	stdout, stderr, exitCode := runCommand(t, mockServices(t), "places", "Del", "--json")

	if exitCode != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", exitCode, stderr)
	}

	var results []map[string]any
	if err := json.Unmarshal([]byte(stdout), &results); err != nil {
		t.Errorf("Expected valid JSON array, got error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 places, got %d", len(results))
	}
}

func TestCLI_FaresCommand_MissingFields(t *testing.T) {
	_, stderr, exitCode := runCommand(t, mockServices(t), "fares", "--from", "DEL")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for missing destination")
	}

	if !strings.Contains(stderr, "Please fill in Origin, Destination, and Departure Date.") {
		t.Errorf("Expected validation message, got: %s", stderr)
	}
}

func TestCLI_FaresCommand_RawJSON(t *testing.T) {
	stdout, stderr, exitCode := runCommand(t, mockServices(t),
		"fares", "--from", "DEL", "--to", "TRV", "--date", "2026-10-18", "--raw-json")

	if exitCode != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", exitCode, stderr)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(stdout), &raw); err != nil {
		t.Errorf("Expected valid raw JSON, got error: %v", err)
	}
	if raw["success"] != true {
		t.Errorf("Expected success envelope, got: %v", raw)
	}
}

func TestCLI_DealsCommand_JSONOutput(t *testing.T) {
	stdout, stderr, exitCode := runCommand(t, mockServices(t), "deals", "--json")

	if exitCode != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", exitCode, stderr)
	}

	var doc struct {
		Prices map[string]float64 `json:"prices"`
		Errors map[string]string  `json:"errors"`
	}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("Expected valid JSON, got error: %v", err)
	}
	if doc.Prices["TRV"] != 4200 {
		t.Errorf("Expected TRV at 4200, got %v", doc.Prices["TRV"])
	}
	if doc.Errors["BOM"] != "Failed to fetch flight data" {
		t.Errorf("Expected BOM failure reason, got %q", doc.Errors["BOM"])
	}
}

func TestCLI_DateFlags(t *testing.T) {
	tests := []struct {
		name     string
		dateFlag string
		ok       bool
	}{
		{"date YYYY-MM-DD", "2026-12-31", true},
		{"date DD.MM.YYYY", "31.12.2026", true},
		{"tomorrow", "tomorrow", true},
		{"invalid", "31/12/2026", false},
	}

	env := mockServices(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, exitCode := runCommand(t, env, "fares", "--from", "DEL", "--to", "TRV", "--date", tt.dateFlag)

			if tt.ok && exitCode != 0 {
				t.Errorf("Expected exit code 0, got %d", exitCode)
			}
			if !tt.ok && exitCode == 0 {
				t.Error("Expected non-zero exit code for invalid date")
			}
		})
	}
}

func TestCLI_InvalidConfig(t *testing.T) {
	_, stderr, exitCode := runCommand(t, []string{"HTTP_TIMEOUT=0s"}, "places", "Del")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for invalid config")
	}
	if !strings.Contains(stderr, "invalid config") {
		t.Errorf("Expected config error, got: %s", stderr)
	}
}

func TestCLI_InvalidCommand(t *testing.T) {
	_, _, exitCode := runCommand(t, nil, "nonexistent")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for invalid command")
	}
}
