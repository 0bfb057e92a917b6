// Package composer reads the Composer files of a PHP project.
//
// Only the parts foxy needs are modeled: the root composer.json, the local
// repository in vendor/composer/installed.json (both the Composer 2 object
// form and the Composer 1 list form) and composer.lock.
package composer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/foxy/pkg/errors"
)

// PluginName is the Composer package that marks a dependency as carrying
// assets when required.
const PluginName = "php-forge/foxy"

// Package is a Composer package as found in composer.json, installed.json or
// composer.lock.
type Package struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Type        string            `json:"type,omitempty"`
	License     Licenses          `json:"license,omitempty"`
	Require     map[string]string `json:"require,omitempty"`
	RequireDev  map[string]string `json:"require-dev,omitempty"`
	Extra       map[string]any    `json:"extra,omitempty"`
	Config      map[string]any    `json:"config,omitempty"`
	InstallPath string            `json:"install-path,omitempty"`

	// Dir is the absolute install directory, set by LoadInstalled.
	// Empty for packages without files (metapackages).
	Dir string `json:"-"`
}

// Licenses accepts both the string and the list form of "license".
type Licenses []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *Licenses) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = nil
		} else {
			*l = Licenses{single}
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// Requires reports whether the package requires name, in require or
// require-dev.
func (p *Package) Requires(name string) bool {
	if _, ok := p.Require[name]; ok {
		return true
	}
	_, ok := p.RequireDev[name]
	return ok
}

// BranchAlias returns the alias declared in extra.branch-alias for version.
func (p *Package) BranchAlias(version string) (string, bool) {
	aliases, ok := p.Extra["branch-alias"].(map[string]any)
	if !ok {
		return "", false
	}
	alias, ok := aliases[version].(string)
	return alias, ok
}

// Root is the project's own composer.json.
type Root struct {
	Package
	Path string `json:"-"`
}

// VendorDir returns config.vendor-dir, or "vendor".
func (r *Root) VendorDir() string {
	if dir, ok := r.Config["vendor-dir"].(string); ok && dir != "" {
		return dir
	}
	return "vendor"
}

// LoadRoot reads composer.json from dir.
func LoadRoot(dir string) (*Root, error) {
	path := filepath.Join(dir, "composer.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
	}

	root := &Root{Path: path}
	if err := json.Unmarshal(data, &root.Package); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	return root, nil
}

// installedFile is the Composer 2 layout of installed.json.
type installedFile struct {
	Packages []Package `json:"packages"`
}

// LoadInstalled returns the packages installed in vendorDir, in file order.
// A missing installed.json yields no packages.
func LoadInstalled(vendorDir string) ([]Package, error) {
	composerDir := filepath.Join(vendorDir, "composer")
	path := filepath.Join(composerDir, "installed.json")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}

	var pkgs []Package
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(data, &pkgs)
	} else {
		var file installedFile
		err = json.Unmarshal(data, &file)
		pkgs = file.Packages
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}

	for i := range pkgs {
		p := &pkgs[i]
		if err := errors.ValidateComposerPackageName(p.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPackage, err, "parse %s", path)
		}
		switch {
		case p.Type == "metapackage":
		case p.InstallPath != "":
			p.Dir = absPath(filepath.Join(composerDir, filepath.FromSlash(p.InstallPath)))
		default:
			p.Dir = absPath(filepath.Join(vendorDir, filepath.FromSlash(p.Name)))
		}
	}
	return pkgs, nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Lock is composer.lock.
type Lock struct {
	Packages    []Package `json:"packages"`
	PackagesDev []Package `json:"packages-dev"`
}

// ReadLock parses composer.lock content.
func ReadLock(data []byte) (*Lock, error) {
	var lock Lock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse composer.lock")
	}
	return &lock, nil
}
