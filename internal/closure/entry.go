// SPDX-License-Identifier: MPL-2.0

package closure

import (
	"github.com/adrytools/rsbundle/pkg/modpath"
	"github.com/adrytools/rsbundle/pkg/rustsyntax"
)

// EntryPoints returns the sorted, distinct library leaf references of a target
// file: every use-tree leaf, nested declarations included, whose first segment
// is rootName. With scanPaths, qualified paths such as `lib::math::gcd(a, b)`
// are collected too. An empty result means the target does not use the
// library.
func EntryPoints(file *rustsyntax.File, rootName string, scanPaths bool) []modpath.Path {
	var leaves []modpath.Path
	for _, decl := range file.Uses() {
		for _, leaf := range decl.Leaves() {
			if leaf.First() == rootName {
				leaves = append(leaves, leaf)
			}
		}
	}
	if scanPaths {
		for _, ref := range file.PathRefs(rootName) {
			leaves = append(leaves, ref.Path)
		}
	}
	return modpath.Unique(leaves)
}

// ModuleKeys maps leaves to their distinct module keys in sorted order.
// Leaves without a loadable key are dropped.
func ModuleKeys(leaves []modpath.Path) []modpath.Path {
	keys := make([]modpath.Path, 0, len(leaves))
	for _, leaf := range leaves {
		if key, ok := leaf.ModuleKey(); ok {
			keys = append(keys, key)
		}
	}
	return modpath.Unique(keys)
}
