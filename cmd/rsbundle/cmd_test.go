// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/adrytools/rsbundle/internal/config"
	"github.com/adrytools/rsbundle/internal/testutil"
	"github.com/adrytools/rsbundle/pkg/types"
)

const mainUsingLibrary = `use adry::math::gcd;
use adry::ds::Fenwick;

fn main() {
    let mut f = Fenwick::new(4);
    f.add(0, gcd(4, 6));
}
`

var library = testutil.Tree{
	"lib/math.rs":       "pub fn gcd(a: i64, b: i64) -> i64 {\n    if b == 0 { a } else { gcd(b, a % b) }\n}\n",
	"lib/ds/mod.rs":     "pub mod fenwick;\npub use self::fenwick::Fenwick;\n",
	"lib/ds/fenwick.rs": "pub struct Fenwick(Vec<i64>);\nimpl Fenwick {\n    pub fn new(n: usize) -> Self { Fenwick(vec![0; n]) }\n    pub fn add(&mut self, _i: usize, _v: i64) {}\n}\n",
	"lib/unused.rs":     "pub fn unused() {}\n",
	"work/main.rs":      mainUsingLibrary,
	"work/plain.rs":     "fn main() {\n    println!(\"hi\");\n}\n",
	"work/missing.rs":   "use adry::graph::Graph;\nfn main() {}\n",
	"work/broken.rs":    "fn main() {\n",
}

// staticConfig is a ConfigProvider that returns a fixed configuration.
type staticConfig struct {
	cfg    *config.Config
	source string
	err    error
}

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Loaded, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &config.Loaded{Config: &cfg, Source: s.source}, nil
}

type runResult struct {
	code   types.ExitCode
	stdout string
	stderr string
}

func runCLI(t *testing.T, provider ConfigProvider, fsys afero.Fs, args ...string) runResult {
	t.Helper()
	if provider == nil {
		provider = staticConfig{cfg: config.DefaultConfig()}
	}
	var stdout, stderr bytes.Buffer
	app, err := NewApp(Dependencies{Config: provider, Fs: fsys, Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatalf("NewApp() error: %v", err)
	}
	code := Run(context.Background(), app, args)
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func libraryFs(t *testing.T) afero.Fs {
	t.Helper()
	return testutil.MemTree(t, "/", library)
}

func TestRun_Bundle(t *testing.T) {
	t.Parallel()

	res := runCLI(t, nil, libraryFs(t), "--root-name", "adry", "--formatter", "none", "/lib", "/work/main.rs")
	if res.code != types.ExitSuccess {
		t.Fatalf("exit = %d, stderr = %q", res.code, res.stderr)
	}

	prefix := mainUsingLibrary + "\n\n// ===== bundled library =====\n\n"
	if !strings.HasPrefix(res.stdout, prefix) {
		t.Fatalf("output should start with the target and separator:\n%s", res.stdout)
	}
	lib := strings.TrimPrefix(res.stdout, prefix)
	for _, want := range []string{"pub mod adry {", "pub mod math {", "pub mod ds {", "pub mod fenwick {", "pub fn gcd"} {
		if !strings.Contains(lib, want) {
			t.Errorf("library missing %q:\n%s", want, lib)
		}
	}
	if strings.Contains(lib, "unused") {
		t.Errorf("library should not contain unreferenced modules:\n%s", lib)
	}
	if strings.Contains(lib, "pub mod fenwick;") {
		t.Errorf("forwarding declaration should be stripped:\n%s", lib)
	}
	if res.stderr != "" {
		t.Errorf("stderr = %q, want empty", res.stderr)
	}
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	first := runCLI(t, nil, libraryFs(t), "--root-name", "adry", "--formatter", "layout", "/lib", "/work/main.rs")
	second := runCLI(t, nil, libraryFs(t), "--root-name", "adry", "--formatter", "layout", "/lib", "/work/main.rs")
	if first.code != 0 || first.stdout != second.stdout {
		t.Errorf("outputs differ or failed (exit %d):\n%s\n---\n%s", first.code, first.stdout, second.stdout)
	}
}

func TestRun_Passthrough(t *testing.T) {
	t.Parallel()

	res := runCLI(t, nil, libraryFs(t), "--root-name", "adry", "/lib", "/work/plain.rs")
	if res.code != types.ExitSuccess {
		t.Fatalf("exit = %d, stderr = %q", res.code, res.stderr)
	}
	if res.stdout != library["work/plain.rs"] {
		t.Errorf("stdout = %q, want the target verbatim", res.stdout)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: nil},
		{name: "one argument", args: []string{"/lib"}},
		{name: "three arguments", args: []string{"/lib", "/work/main.rs", "extra"}},
		{name: "unknown flag", args: []string{"--bogus", "/lib", "/work/main.rs"}},
		{name: "unknown formatter", args: []string{"--formatter", "prettier", "/lib", "/work/main.rs"}},
		{name: "invalid root name", args: []string{"--root-name", "my-lib", "/lib", "/work/main.rs"}},
		{name: "blank target", args: []string{"/lib", " "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := runCLI(t, nil, libraryFs(t), tt.args...)
			if res.code != types.ExitUsage {
				t.Errorf("exit = %d, want %d (stderr %q)", res.code, types.ExitUsage, res.stderr)
			}
			if res.stdout != "" {
				t.Errorf("stdout = %q, want empty", res.stdout)
			}
			assertOneDiagnostic(t, res.stderr)
		})
	}
}

func TestRun_SubcommandNamedDirectoryHint(t *testing.T) {
	t.Parallel()

	fsys := libraryFs(t)
	if err := fsys.MkdirAll("deps", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	res := runCLI(t, nil, fsys, "deps", "main.rs")
	if res.code != types.ExitUsage {
		t.Fatalf("exit = %d, want %d", res.code, types.ExitUsage)
	}
	if !strings.Contains(res.stderr, "write ./deps") {
		t.Errorf("stderr should suggest ./deps: %q", res.stderr)
	}

	res = runCLI(t, nil, libraryFs(t), "deps", "main.rs")
	if res.code != types.ExitUsage || strings.Contains(res.stderr, "write ./") {
		t.Errorf("without a deps directory: exit = %d, stderr = %q", res.code, res.stderr)
	}

	res = runCLI(t, nil, fsys, "watch", "/lib")
	if res.code != types.ExitUsage || strings.Contains(res.stderr, "write ./") {
		t.Errorf("watch has no matching directory: exit = %d, stderr = %q", res.code, res.stderr)
	}
}

func TestRun_FatalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  string
		wantMsg string
	}{
		{name: "missing dependency", target: "/work/missing.rs", wantMsg: "missing dependency adry::graph"},
		{name: "target not found", target: "/work/nope.rs", wantMsg: "cannot read target file /work/nope.rs"},
		{name: "target does not parse", target: "/work/broken.rs", wantMsg: "target file does not parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := runCLI(t, nil, libraryFs(t), "--root-name", "adry", "/lib", tt.target)
			if res.code != types.ExitFailure {
				t.Errorf("exit = %d, want 1", res.code)
			}
			if res.stdout != "" {
				t.Errorf("stdout = %q, want empty", res.stdout)
			}
			assertOneDiagnostic(t, res.stderr)
			if !strings.Contains(res.stderr, tt.wantMsg) {
				t.Errorf("stderr %q should contain %q", res.stderr, tt.wantMsg)
			}
		})
	}
}

func TestRun_VerboseAddsSuggestions(t *testing.T) {
	t.Parallel()

	res := runCLI(t, nil, libraryFs(t), "-v", "--root-name", "adry", "/lib", "/work/missing.rs")
	if res.code != types.ExitFailure {
		t.Fatalf("exit = %d, want 1", res.code)
	}
	for _, want := range []string{"--lenient", "rsbundle explain missing-dependency", "Error chain:"} {
		if !strings.Contains(res.stderr, want) {
			t.Errorf("verbose stderr missing %q:\n%s", want, res.stderr)
		}
	}
}

func TestRun_Lenient(t *testing.T) {
	t.Parallel()

	res := runCLI(t, nil, libraryFs(t), "--lenient", "--root-name", "adry", "--formatter", "none", "/lib", "/work/missing.rs")
	if res.code != types.ExitSuccess {
		t.Fatalf("exit = %d, stderr = %q", res.code, res.stderr)
	}
	if !strings.HasPrefix(res.stdout, library["work/missing.rs"]) {
		t.Errorf("stdout should start with the target:\n%s", res.stdout)
	}
	if !strings.Contains(res.stderr, "adry::graph") {
		t.Errorf("stderr should warn about the skipped module: %q", res.stderr)
	}
}

func TestRun_ConfigDrivesDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Library.RootName = "adry"
	cfg.Bundle.WrapRoot = false
	cfg.Render.Formatter = config.FormatterNone
	cfg.Output.Separator = "// ---- lib ----"

	res := runCLI(t, staticConfig{cfg: cfg}, libraryFs(t), "/lib", "/work/main.rs")
	if res.code != types.ExitSuccess {
		t.Fatalf("exit = %d, stderr = %q", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "\n\n// ---- lib ----\n\n") {
		t.Errorf("configured separator not used:\n%s", res.stdout)
	}
	if strings.Contains(res.stdout, "pub mod adry {") {
		t.Errorf("wrap_root=false should not wrap the library:\n%s", res.stdout)
	}
}

func TestRun_ConfigLoadError(t *testing.T) {
	t.Parallel()

	provider := staticConfig{err: errors.New("rsbundle.cue: bundle.strict: conflicting values\n  more detail")}
	res := runCLI(t, provider, libraryFs(t), "/lib", "/work/main.rs")
	if res.code != types.ExitFailure {
		t.Errorf("exit = %d, want 1", res.code)
	}
	assertOneDiagnostic(t, res.stderr)
}

func TestRun_DetectsRootName(t *testing.T) {
	t.Parallel()

	fsys := testutil.MemTree(t, "/", testutil.Tree{
		"ws/adry/Cargo.toml":  "[package]\nname = \"adry\"\n",
		"ws/adry/src/math.rs": library["lib/math.rs"],
		"work/main.rs":        "use adry::math::gcd;\nfn main() { gcd(1, 2); }\n",
	})
	res := runCLI(t, nil, fsys, "--formatter", "none", "/ws/adry/src", "/work/main.rs")
	if res.code != types.ExitSuccess {
		t.Fatalf("exit = %d, stderr = %q", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "pub mod math {") {
		t.Errorf("library not bundled:\n%s", res.stdout)
	}
}

func TestGetVersionString(t *testing.T) {
	// Not parallel: mutates package-level Version/Commit/BuildDate.
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	t.Cleanup(func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	})

	Version, Commit, BuildDate = "v1.2.3", "abc1234", "2026-01-02T10:00:00Z"
	if got, want := getVersionString(), "v1.2.3 (commit: abc1234, built: 2026-01-02T10:00:00Z)"; got != want {
		t.Errorf("getVersionString() = %q, want %q", got, want)
	}

	Version = "dev"
	if got, want := getVersionString(), "dev (built from source)"; got != want {
		t.Errorf("getVersionString() = %q, want %q", got, want)
	}
}

func TestOneLine(t *testing.T) {
	t.Parallel()

	got := oneLine("a.cue: validation failed:\n  x: bad\n  y: worse\n")
	if want := "a.cue: validation failed:; x: bad; y: worse"; got != want {
		t.Errorf("oneLine() = %q, want %q", got, want)
	}
}

func assertOneDiagnostic(t *testing.T, stderr string) {
	t.Helper()
	lines := strings.Split(strings.TrimRight(stderr, "\n"), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "rsbundle: ") {
		t.Errorf("stderr should be one `rsbundle: ` line, got %q", stderr)
	}
}
