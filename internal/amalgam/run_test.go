// SPDX-License-Identifier: MPL-2.0

package amalgam

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"amalgam-cli/internal/issue"
	"amalgam-cli/internal/testutil"
)

// Tests in this file change the working directory and must not run in parallel.

func TestRun_DefaultFileNames(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"Masterfile.hpp": "#pragma once\n#include \"core/a.hpp\"\n#include <vector>\n",
		"core/a.hpp":     "#pragma once\nint a;\n",
	})
	defer testutil.MustChdir(t, dir)()

	stats, err := Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	data, err := os.ReadFile(DefaultOutput)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	want := wrapped("Masterfile.hpp", wrapped("core/a.hpp", "int a;\n")+"#include <vector>\n")
	if string(data) != want {
		t.Errorf("output =\n%s\nwant\n%s", data, want)
	}
	if stats.Expansions != 2 || stats.Lines != 2 {
		t.Errorf("Stats = %+v", stats)
	}

	info, err := os.Stat(DefaultOutput)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o044 == 0 {
		t.Errorf("output mode = %v, want group/other readable", info.Mode().Perm())
	}
}

// Include paths are resolved against the working directory, never against
// the directory of the including file.
func TestRun_IncludesRelativeToWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"src/root.h":   "#include \"src/inner.h\"\n#include \"inner.h\"\n",
		"src/inner.h":  "from src\n",
		"inner.h":      "from cwd\n",
		"out/.gitkeep": "",
	})
	defer testutil.MustChdir(t, dir)()

	_, err := Run(context.Background(), RunOptions{Input: "src/root.h", Output: "out/flat.h"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join("out", "flat.h"))
	if err != nil {
		t.Fatal(err)
	}
	want := wrapped("src/root.h", wrapped("src/inner.h", "from src\n")+wrapped("inner.h", "from cwd\n"))
	if string(data) != want {
		t.Errorf("output =\n%s\nwant\n%s", data, want)
	}
}

func TestRun_MissingRootFile(t *testing.T) {
	dir := t.TempDir()
	defer testutil.MustChdir(t, dir)()

	_, err := Run(context.Background(), RunOptions{Input: "absent.hpp", Output: "out.hpp"})
	if err == nil {
		t.Fatal("Run() should fail without a root file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error should wrap fs.ErrNotExist: %v", err)
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error should be *issue.ActionableError, got %T", err)
	}
	if ae.Issue != issue.RootFileNotFoundId {
		t.Errorf("Issue = %d, want RootFileNotFoundId", ae.Issue)
	}
	if _, statErr := os.Stat("out.hpp"); !errors.Is(statErr, fs.ErrNotExist) {
		t.Error("no output should be written")
	}
}

func TestRun_FailureKeepsPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"root.h": "line\n#include \"missing.h\"\n",
		"out.h":  "previous\n",
	})
	defer testutil.MustChdir(t, dir)()

	_, err := Run(context.Background(), RunOptions{
		Input:           "root.h",
		Output:          "out.h",
		ResolverOptions: ResolverOptions{MissingInclude: MissingError},
	})
	if !errors.Is(err, ErrIncludeOpen) {
		t.Fatalf("Run() error = %v, want ErrIncludeOpen", err)
	}

	data, err := os.ReadFile("out.h")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous\n" {
		t.Errorf("previous output was modified: %q", data)
	}

	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestRun_InvalidMissingPolicy(t *testing.T) {
	_, err := Run(context.Background(), RunOptions{
		ResolverOptions: ResolverOptions{MissingInclude: "skip"},
	})
	if !errors.Is(err, ErrInvalidMissingPolicy) {
		t.Errorf("Run() error = %v, want ErrInvalidMissingPolicy", err)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, RunOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRun_OutputDirectoryMissing(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"root.h": "x\n"})
	defer testutil.MustChdir(t, dir)()

	_, err := Run(context.Background(), RunOptions{Input: "root.h", Output: "missing/out.h"})

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("Run() error = %v, want *issue.ActionableError", err)
	}
	if ae.Issue != issue.OutputWriteFailedId {
		t.Errorf("Issue = %d, want OutputWriteFailedId", ae.Issue)
	}
	if ae.Resource != "missing/out.h" {
		t.Errorf("Resource = %s, want missing/out.h", ae.Resource)
	}
}
