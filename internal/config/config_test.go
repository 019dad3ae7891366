// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"amalgam-cli/internal/amalgam"
	"amalgam-cli/internal/issue"
	"amalgam-cli/internal/testutil"
)

// Tests in this file change the working directory or environment and
// therefore do not run in parallel.

// isolate moves the test into an empty working directory and returns load
// options pointing at an empty config directory inside it.
func isolate(t *testing.T) (string, LoadOptions) {
	t.Helper()
	dir := t.TempDir()
	t.Cleanup(testutil.MustChdir(t, dir))
	cfgDir := filepath.Join(dir, "cfg")
	return cfgDir, LoadOptions{ConfigDirPath: cfgDir}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Input != "Masterfile.hpp" {
		t.Errorf("expected default input Masterfile.hpp, got %s", cfg.Input)
	}
	if cfg.Output != "ArgonMaster.hpp" {
		t.Errorf("expected default output ArgonMaster.hpp, got %s", cfg.Output)
	}
	if cfg.MissingInclude != amalgam.MissingEmpty {
		t.Errorf("expected default missing_include empty, got %s", cfg.MissingInclude)
	}
	if cfg.DetectCycles {
		t.Error("expected cycle detection to be off by default")
	}
	if cfg.MaxDepth != 0 {
		t.Errorf("expected unlimited depth by default, got %d", cfg.MaxDepth)
	}
	if len(cfg.SearchPaths) != 0 {
		t.Errorf("expected no search paths, got %v", cfg.SearchPaths)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("expected default color scheme auto, got %s", cfg.UI.ColorScheme)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %s", cfg.Watch.Debounce)
	}
	if len(cfg.Watch.Patterns) == 0 {
		t.Error("expected default watch patterns")
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup only applies on Linux")
	}
	Reset()

	testXDGPath := filepath.Join(t.TempDir(), "xdg")
	defer testutil.MustSetenv(t, "XDG_CONFIG_HOME", testXDGPath)()

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if expected := filepath.Join(testXDGPath, AppName); dir != expected {
		t.Errorf("ConfigDir() = %s, want %s", dir, expected)
	}

	path, err := ConfigFilePath()
	if err != nil {
		t.Fatalf("ConfigFilePath() returned error: %v", err)
	}
	if expected := filepath.Join(testXDGPath, AppName, "config.cue"); path != expected {
		t.Errorf("ConfigFilePath() = %s, want %s", path, expected)
	}
}

func TestConfigDirOverride(t *testing.T) {
	SetConfigDirOverride("/custom/dir")
	defer Reset()

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if dir != "/custom/dir" {
		t.Errorf("ConfigDir() = %s, want /custom/dir", dir)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	_, opts := isolate(t)

	cfg, path, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if path != "" {
		t.Errorf("expected no config path, got %s", path)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("config = %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	cfgDir, opts := isolate(t)
	testutil.WriteTree(t, cfgDir, map[string]string{
		"config.cue": `
input:           "src/all.hpp"
missing_include: "error"
detect_cycles:   true
max_depth:       32
search_paths: ["include", "vendor"]
ui: verbose: true
watch: {
	debounce: "2s"
	ignore: ["**/generated/**"]
}
`,
	})

	cfg, path, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if path != filepath.Join(cfgDir, "config.cue") {
		t.Errorf("path = %s", path)
	}

	if cfg.Input != "src/all.hpp" {
		t.Errorf("Input = %s", cfg.Input)
	}
	if cfg.Output != "ArgonMaster.hpp" {
		t.Errorf("Output should keep its default, got %s", cfg.Output)
	}
	if cfg.MissingInclude != amalgam.MissingError || !cfg.DetectCycles || cfg.MaxDepth != 32 {
		t.Errorf("resolver settings not loaded: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.SearchPaths, []string{"include", "vendor"}) {
		t.Errorf("SearchPaths = %v", cfg.SearchPaths)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose should be true")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Debounce = %s, want 2s", cfg.Watch.Debounce)
	}
	if !reflect.DeepEqual(cfg.Watch.Ignore, []string{"**/generated/**"}) {
		t.Errorf("Watch.Ignore = %v", cfg.Watch.Ignore)
	}

	ro := cfg.ResolverOptions()
	if ro.MissingInclude != amalgam.MissingError || !ro.DetectCycles || ro.MaxDepth != 32 || len(ro.SearchPaths) != 2 {
		t.Errorf("ResolverOptions() = %+v", ro)
	}
}

func TestLoad_LocalFallback(t *testing.T) {
	cfgDir, opts := isolate(t)
	// The working directory is the parent of the (empty) config directory.
	testutil.WriteTree(t, filepath.Dir(cfgDir), map[string]string{
		"config.cue": `output: "flat.hpp"`,
	})

	cfg, path, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if path != "config.cue" {
		t.Errorf("path = %s, want config.cue", path)
	}
	if cfg.Output != "flat.hpp" {
		t.Errorf("Output = %s, want flat.hpp", cfg.Output)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, opts := isolate(t)
	opts.ConfigFilePath = "nope.cue"

	_, _, err := loadWithOptions(context.Background(), opts)
	if err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %T", err)
	}
	if ae.Issue != issue.ConfigLoadFailedId {
		t.Errorf("Issue = %d, want ConfigLoadFailedId", ae.Issue)
	}
}

func TestLoad_InvalidFiles(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{"syntax error", `input: "unterminated`, "custom.cue"},
		{"unknown field", `container_engine: "docker"`, "container_engine"},
		{"bad policy", `missing_include: "skip"`, "missing_include"},
		{"negative depth", `max_depth: -1`, "max_depth"},
		{"bad color scheme", `ui: color_scheme: "neon"`, "color_scheme"},
		{"empty search path", `search_paths: [""]`, "search_paths[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, opts := isolate(t)
			file := filepath.Join(dir, "custom.cue")
			testutil.WriteTree(t, dir, map[string]string{"custom.cue": tt.content})
			opts.ConfigFilePath = file

			_, _, err := loadWithOptions(context.Background(), opts)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should mention %q", err, tt.contains)
			}
		})
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	cfgDir, opts := isolate(t)
	testutil.WriteTree(t, cfgDir, map[string]string{"config.cue": `output: "from-file.hpp"`})
	defer testutil.MustSetenv(t, "AMALGAM_OUTPUT", "from-env.hpp")()
	defer testutil.MustSetenv(t, "AMALGAM_UI_VERBOSE", "true")()

	cfg, _, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Output != "from-env.hpp" {
		t.Errorf("Output = %s, want from-env.hpp", cfg.Output)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose should be overridden by the environment")
	}
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := loadWithOptions(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	cfgDir, opts := isolate(t)

	want := DefaultConfig()
	want.Input = "root.hpp"
	want.MissingInclude = amalgam.MissingError
	want.MaxDepth = 8
	want.SearchPaths = []string{"include"}
	want.UI.ColorScheme = ColorSchemeDark
	want.Watch.Debounce = 250 * time.Millisecond

	testutil.WriteTree(t, cfgDir, map[string]string{"config.cue": GenerateCUE(want)})

	got, _, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("loading generated CUE failed: %v\n%s", err, GenerateCUE(want))
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), AppName)
	SetConfigDirOverride(dir)
	defer Reset()

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() returned error: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), `input:           "Masterfile.hpp"`) {
		t.Errorf("unexpected default config:\n%s", data)
	}

	// An existing file is left alone.
	if err := os.WriteFile(path, []byte(`output: "kept.hpp"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(); err != nil {
		t.Fatalf("second CreateDefaultConfig() returned error: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != `output: "kept.hpp"` {
		t.Errorf("existing config was overwritten: %s", data)
	}
}

func TestProvider_Load(t *testing.T) {
	cfgDir, opts := isolate(t)
	testutil.WriteTree(t, cfgDir, map[string]string{"config.cue": `input: "p.hpp"`})

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Input != "p.hpp" {
		t.Errorf("Input = %s, want p.hpp", cfg.Input)
	}

	path, err := Resolve(context.Background(), opts)
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	if path != filepath.Join(cfgDir, "config.cue") {
		t.Errorf("Resolve() = %s", path)
	}
}
