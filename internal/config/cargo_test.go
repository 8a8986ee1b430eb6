// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"

	"github.com/adrytools/rsbundle/internal/testutil"
)

func TestDetectRootName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tree    testutil.Tree
		libRoot string
		want    RootName
	}{
		{
			name:    "package name with dashes",
			tree:    testutil.Tree{"/ws/my-lib/Cargo.toml": "[package]\nname = \"my-lib\"\nversion = \"0.1.0\"\n", "/ws/my-lib/src/lib.rs": ""},
			libRoot: "/ws/my-lib/src",
			want:    "my_lib",
		},
		{
			name:    "lib name wins over package name",
			tree:    testutil.Tree{"/ws/pkg/Cargo.toml": "[package]\nname = \"pkg\"\n\n[lib]\nname = \"algo\"\n", "/ws/pkg/src/lib.rs": ""},
			libRoot: "/ws/pkg/src",
			want:    "algo",
		},
		{
			name:    "manifest inside library root",
			tree:    testutil.Tree{"/ws/crate/Cargo.toml": "[package]\nname = \"inner\"\n", "/ws/crate/math.rs": ""},
			libRoot: "/ws/crate",
			want:    "inner",
		},
		{
			name:    "src directory without manifest",
			tree:    testutil.Tree{"/ws/contest_lib/src/math.rs": ""},
			libRoot: "/ws/contest_lib/src/",
			want:    "contest_lib",
		},
		{
			name:    "plain directory",
			tree:    testutil.Tree{"/ws/adry-library/math.rs": ""},
			libRoot: "/ws/adry-library",
			want:    "adry_library",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fsys := testutil.MemTree(t, "/", tt.tree)
			got, err := DetectRootName(fsys, tt.libRoot)
			if err != nil {
				t.Fatalf("DetectRootName() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectRootName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectRootName_Errors(t *testing.T) {
	t.Parallel()

	t.Run("malformed manifest", func(t *testing.T) {
		t.Parallel()
		fsys := testutil.MemTree(t, "/", testutil.Tree{"/ws/lib/Cargo.toml": "[package\nname = 1\n"})
		if _, err := DetectRootName(fsys, "/ws/lib/src"); err == nil {
			t.Error("expected a TOML parse error")
		}
	})

	t.Run("base name is not an identifier", func(t *testing.T) {
		t.Parallel()
		fsys := testutil.MemTree(t, "/", testutil.Tree{"/ws/1lib/x.rs": ""})
		if _, err := DetectRootName(fsys, "/ws/1lib"); !errors.Is(err, ErrNoRootName) {
			t.Errorf("error = %v, want ErrNoRootName", err)
		}
	})
}

func TestResolveRootName(t *testing.T) {
	t.Parallel()

	fsys := testutil.MemTree(t, "/", testutil.Tree{"/ws/detected/src/a.rs": ""})
	cfg := DefaultConfig()

	if got, err := ResolveRootName("", cfg, fsys, "/ws/detected/src"); err != nil || got != "detected" {
		t.Errorf("detection: got %q, %v", got, err)
	}

	cfg.Library.RootName = "from_config"
	if got, err := ResolveRootName("", cfg, fsys, "/ws/detected/src"); err != nil || got != "from_config" {
		t.Errorf("config: got %q, %v", got, err)
	}

	if got, err := ResolveRootName("from_flag", cfg, fsys, "/ws/detected/src"); err != nil || got != "from_flag" {
		t.Errorf("flag: got %q, %v", got, err)
	}

	if _, err := ResolveRootName("not-valid", cfg, fsys, "/ws/detected/src"); !errors.Is(err, ErrInvalidRootName) {
		t.Errorf("invalid flag: error = %v, want ErrInvalidRootName", err)
	}
}
