// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrytools/rsbundle/internal/bundle"
	"github.com/adrytools/rsbundle/internal/config"
	"github.com/adrytools/rsbundle/internal/format"
	"github.com/adrytools/rsbundle/internal/testutil"
	"github.com/adrytools/rsbundle/pkg/rustsyntax"
)

// chainLength is the number of generated library modules. Module i uses
// module i+1, so bundling m00 pulls in all of them.
const chainLength = 40

// sampleModule is a representative competitive-programming library module.
const sampleModule = `//! Segment tree over a monoid.
use std::ops::Range;

/// Associative operation with identity.
pub trait Monoid {
    type S: Clone;
    fn e() -> Self::S;
    fn op(a: &Self::S, b: &Self::S) -> Self::S;
}

#[derive(Clone, Debug)]
pub struct SegTree<M: Monoid> {
    n: usize,
    d: Vec<M::S>,
}

impl<M: Monoid> SegTree<M> {
    pub fn new(n: usize) -> Self {
        let n = n.next_power_of_two();
        SegTree { n, d: vec![M::e(); 2 * n] }
    }

    pub fn set(&mut self, mut p: usize, x: M::S) {
        p += self.n;
        self.d[p] = x;
        while p > 1 {
            p >>= 1;
            self.d[p] = M::op(&self.d[2 * p], &self.d[2 * p + 1]);
        }
    }

    pub fn prod(&self, r: Range<usize>) -> M::S {
        let (mut l, mut r) = (r.start + self.n, r.end + self.n);
        let (mut sl, mut sr) = (M::e(), M::e());
        while l < r {
            if l & 1 == 1 { sl = M::op(&sl, &self.d[l]); l += 1; }
            if r & 1 == 1 { r -= 1; sr = M::op(&self.d[r], &sr); }
            l >>= 1;
            r >>= 1;
        }
        M::op(&sl, &sr)
    }
}

macro_rules! impl_sum {
    ($t:ty) => {
        impl Monoid for $t { type S = $t; fn e() -> $t { 0 } fn op(a: &$t, b: &$t) -> $t { a + b } }
    };
}
impl_sum!(i64);
impl_sum!(u64);

const NAME: &str = "seg } tree";
static RAW: &str = r#"{ "not": "code" }"#;
`

// chainLibrary returns a library of chainLength modules plus a target that
// uses the first one.
func chainLibrary() testutil.Tree {
	tree := testutil.Tree{
		"work/main.rs": "use adry::m00::f00;\n\nfn main() {\n    println!(\"{}\", f00(1));\n}\n",
	}
	for i := range chainLength {
		var src strings.Builder
		src.WriteString(sampleModule)
		src.WriteString("\n")
		if i+1 < chainLength {
			fmt.Fprintf(&src, "use crate::m%02d::f%02d;\n\n", i+1, i+1)
		}
		fmt.Fprintf(&src, "pub fn f%02d(x: u64) -> u64 {\n", i)
		if i+1 < chainLength {
			fmt.Fprintf(&src, "    f%02d(x) + %d\n", i+1, i)
		} else {
			src.WriteString("    x\n")
		}
		src.WriteString("}\n")
		tree[fmt.Sprintf("lib/m%02d.rs", i)] = src.String()
	}
	return tree
}

func newBundler(b *testing.B, formatter format.Formatter) *bundle.Bundler {
	b.Helper()
	fs := testutil.MemTree(b, "/", chainLibrary())
	bundler, err := bundle.New(fs, bundle.Options{
		RootName:  "adry",
		Strict:    true,
		WrapRoot:  true,
		Formatter: formatter,
	}, nil)
	if err != nil {
		b.Fatalf("bundle.New failed: %v", err)
	}
	return bundler
}

// BenchmarkLex benchmarks tokenizing a library module.
func BenchmarkLex(b *testing.B) {
	b.SetBytes(int64(len(sampleModule)))
	for b.Loop() {
		if _, err := rustsyntax.Lex(sampleModule); err != nil {
			b.Fatalf("Lex failed: %v", err)
		}
	}
}

// BenchmarkParseFile benchmarks the item-level parse of a library module.
func BenchmarkParseFile(b *testing.B) {
	b.SetBytes(int64(len(sampleModule)))
	for b.Loop() {
		if _, err := rustsyntax.ParseFile(sampleModule); err != nil {
			b.Fatalf("ParseFile failed: %v", err)
		}
	}
}

// BenchmarkPlan benchmarks closure discovery across the generated chain.
func BenchmarkPlan(b *testing.B) {
	bundler := newBundler(b, nil)
	ctx := context.Background()

	for b.Loop() {
		plan, err := bundler.Plan(ctx, "/lib", "/work/main.rs")
		if err != nil {
			b.Fatalf("Plan failed: %v", err)
		}
		if got := len(plan.Closure.Modules); got != chainLength {
			b.Fatalf("closure has %d modules, want %d", got, chainLength)
		}
	}
}

// BenchmarkBundle benchmarks the full pipeline without formatting.
func BenchmarkBundle(b *testing.B) {
	bundler := newBundler(b, format.None{})
	ctx := context.Background()

	for b.Loop() {
		if _, err := bundler.Bundle(ctx, "/lib", "/work/main.rs"); err != nil {
			b.Fatalf("Bundle failed: %v", err)
		}
	}
}

// BenchmarkBundleLayout benchmarks the full pipeline with the built-in
// formatter, which re-lexes the whole output.
func BenchmarkBundleLayout(b *testing.B) {
	bundler := newBundler(b, format.Layout{})
	ctx := context.Background()

	for b.Loop() {
		if _, err := bundler.Bundle(ctx, "/lib", "/work/main.rs"); err != nil {
			b.Fatalf("Bundle failed: %v", err)
		}
	}
}

// BenchmarkLayoutFormat benchmarks formatting a large rendered library.
func BenchmarkLayoutFormat(b *testing.B) {
	src := strings.Repeat("pub mod m {\n"+sampleModule+"}\n", 20)
	ctx := context.Background()
	b.SetBytes(int64(len(src)))

	for b.Loop() {
		if _, err := (format.Layout{}).Format(ctx, src); err != nil {
			b.Fatalf("Format failed: %v", err)
		}
	}
}

// BenchmarkConfigLoad benchmarks CUE validation and the Viper merge of a
// project configuration file.
func BenchmarkConfigLoad(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, config.LocalConfigFileName)
	cfg := config.DefaultConfig()
	cfg.Library.RootName = "adry"
	if err := os.WriteFile(path, []byte(config.GenerateCUE(cfg)), 0o644); err != nil {
		b.Fatalf("write config: %v", err)
	}
	provider := config.NewProvider()
	opts := config.LoadOptions{ConfigFilePath: path, ConfigDirPath: dir, WorkDir: dir}
	ctx := context.Background()

	for b.Loop() {
		if _, err := provider.Load(ctx, opts); err != nil {
			b.Fatalf("Load failed: %v", err)
		}
	}
}
