// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// CargoManifestName is the Cargo manifest file name.
const CargoManifestName = "Cargo.toml"

// ErrNoRootName is returned when no root name can be derived.
var ErrNoRootName = errors.New("cannot determine library root name")

// cargoManifest holds the parts of Cargo.toml that name the library crate.
type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Lib struct {
		Name string `toml:"name"`
	} `toml:"lib"`
}

// crateName returns `[lib] name`, else `[package] name` with dashes mapped
// to underscores.
func (m cargoManifest) crateName() string {
	if m.Lib.Name != "" {
		return m.Lib.Name
	}
	return strings.ReplaceAll(m.Package.Name, "-", "_")
}

// ReadCargoName decodes the crate name from a Cargo.toml. It returns an empty
// name without error when the manifest does not exist.
func ReadCargoName(fsys afero.Fs, path string) (RootName, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	return RootName(m.crateName()), nil
}

// DetectRootName derives the root name from the library layout: the crate
// name in the Cargo.toml next to libRoot (or in libRoot itself), then the
// base name of libRoot, or of its parent when libRoot is a `src` directory.
func DetectRootName(fsys afero.Fs, libRoot string) (RootName, error) {
	clean := filepath.Clean(libRoot)
	if abs, err := filepath.Abs(clean); err == nil {
		clean = abs
	}
	parent := filepath.Dir(clean)

	for _, dir := range []string{parent, clean} {
		name, err := ReadCargoName(fsys, filepath.Join(dir, CargoManifestName))
		if err != nil {
			return "", err
		}
		if name != "" {
			return name, nil
		}
	}

	base := filepath.Base(clean)
	if base == "src" {
		base = filepath.Base(parent)
	}
	name := RootName(strings.ReplaceAll(base, "-", "_"))
	if valid, _ := name.IsValid(); !valid || name == "" {
		return "", fmt.Errorf("%w from %s", ErrNoRootName, libRoot)
	}
	return name, nil
}

// ResolveRootName picks the root name from the flag, then the config, then
// the library layout.
func ResolveRootName(flag string, cfg *Config, fsys afero.Fs, libRoot string) (RootName, error) {
	name := RootName(flag)
	if name == "" && cfg != nil {
		name = cfg.Library.RootName
	}
	if name == "" {
		return DetectRootName(fsys, libRoot)
	}
	if valid, errs := name.IsValid(); !valid {
		return "", errs[0]
	}
	return name, nil
}
