// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"
	"testing"

	"amalgam-cli/internal/amalgam"
	"amalgam-cli/internal/config"
)

func TestBannerCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		args  []string
		label string
	}{
		{"begin banner", []string{"banner", "core/vec.hpp"}, "core/vec.hpp"},
		{"end banner", []string{"banner", "--end", "core/vec.hpp"}, "END core/vec.hpp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout, _, err := execute(t, config.DefaultConfig(), tt.args...)
			if err != nil {
				t.Fatalf("execute() error: %v", err)
			}

			want := amalgam.RenderBanner(tt.label)
			got := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
			if len(got) != 3 {
				t.Fatalf("expected 3 lines, got %d: %q", len(got), stdout)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("line %d = %q, want %q", i+1, got[i], want[i])
				}
			}
		})
	}
}

func TestBannerCommand_RequiresLabel(t *testing.T) {
	t.Parallel()

	if _, _, err := execute(t, config.DefaultConfig(), "banner"); err == nil {
		t.Error("banner without labels should fail")
	}
}
