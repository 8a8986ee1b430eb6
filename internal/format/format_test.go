// SPDX-License-Identifier: MPL-2.0

package format

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLayout_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "reindent nested blocks",
			src:  "pub mod a {\npub fn f() -> u8 {\n        1\n  }\n}",
			want: "pub mod a {\n    pub fn f() -> u8 {\n        1\n    }\n}\n",
		},
		{
			name: "closer on same line as else",
			src:  "fn f(x: bool) {\nif x {\n1;\n} else {\n2;\n}\n}\n",
			want: "fn f(x: bool) {\n    if x {\n        1;\n    } else {\n        2;\n    }\n}\n",
		},
		{
			name: "collapse blank lines and trim trailing space",
			src:  "\n\nfn a() {}   \n\n\n\nfn b() {}\n\n\n",
			want: "fn a() {}\n\nfn b() {}\n",
		},
		{
			name: "multi-line string kept verbatim",
			src:  "fn f() {\nlet s = \"line one   \n  line two\n\n\";\n}\n",
			want: "fn f() {\n    let s = \"line one   \n  line two\n\n\";\n}\n",
		},
		{
			name: "block comment continuation kept",
			src:  "mod m {\n/* first\n      second */\nfn g() {}\n}\n",
			want: "mod m {\n    /* first\n      second */\n    fn g() {}\n}\n",
		},
		{
			name: "brackets and parens count",
			src:  "const A: [u8; 2] = [\n1,\n2,\n];\n",
			want: "const A: [u8; 2] = [\n    1,\n    2,\n];\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Layout{}.Format(context.Background(), tt.src)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Format() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestLayout_Idempotent(t *testing.T) {
	t.Parallel()

	src := "pub mod lib {\npub mod math {\npub fn gcd(a: u64, b: u64) -> u64 {\nif b == 0 { a } else { gcd(b, a % b) }\n}\n}\n}\n"
	once, err := Layout{}.Format(context.Background(), src)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	twice, err := Layout{}.Format(context.Background(), once)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if once != twice {
		t.Errorf("Layout is not idempotent:\n%s\nvs\n%s", once, twice)
	}
}

func TestLayout_CustomIndent(t *testing.T) {
	t.Parallel()

	got, err := Layout{Indent: "\t"}.Format(context.Background(), "mod a {\nfn b() {}\n}")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if want := "mod a {\n\tfn b() {}\n}\n"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestLayout_LexError(t *testing.T) {
	t.Parallel()

	_, err := Layout{}.Format(context.Background(), "fn f() { \"unterminated }")
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestNone_Format(t *testing.T) {
	t.Parallel()

	src := "fn   f( ){}"
	got, err := None{}.Format(context.Background(), src)
	if err != nil || got != src {
		t.Errorf("None.Format() = %q, %v", got, err)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "layout", want: "format.Layout"},
		{name: "none", want: "format.None"},
		{name: "RUSTFMT", want: "format.Rustfmt"},
		{name: "prettyplease", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := New(tt.name, "", "")
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormatter) {
					t.Fatalf("expected ErrUnknownFormatter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) error = %v", tt.name, err)
			}
			if got := typeName(f); got != tt.want {
				t.Errorf("New(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestNew_AutoFallsBackToLayout(t *testing.T) {
	t.Parallel()

	f, err := New(NameAuto, "/nonexistent/rustfmt-binary", "")
	if err != nil {
		t.Fatalf("New(auto) error = %v", err)
	}
	if _, ok := f.(Layout); !ok {
		t.Errorf("expected Layout fallback, got %T", f)
	}
}

func TestRustfmt_Format(t *testing.T) {
	t.Parallel()

	path, ok := LookupRustfmt("")
	if !ok {
		t.Skip("rustfmt not found on PATH")
	}

	f := Rustfmt{Path: path}
	got, err := f.Format(context.Background(), "pub mod a { pub fn f( )->u8{1} }\n")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if want := "pub mod a {\n    pub fn f() -> u8 {\n        1\n    }\n}\n"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	_, err = f.Format(context.Background(), "fn f( {")
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for invalid input, got %v", err)
	}
	if !strings.Contains(err.Error(), "rustfmt") {
		t.Errorf("error should mention rustfmt: %v", err)
	}
}

func TestRustfmt_MissingBinary(t *testing.T) {
	t.Parallel()

	_, err := Rustfmt{Path: "/nonexistent/rustfmt-binary"}.Format(context.Background(), "fn f() {}")
	var rfErr *RustfmtError
	if !errors.As(err, &rfErr) {
		t.Fatalf("expected *RustfmtError, got %v", err)
	}
}

func typeName(f Formatter) string {
	switch f.(type) {
	case Layout:
		return "format.Layout"
	case None:
		return "format.None"
	case Rustfmt:
		return "format.Rustfmt"
	default:
		return "unknown"
	}
}
