// Package asset merges Composer asset dependencies into the root asset
// manifest and drives the JavaScript asset managers that install them.
//
// Every Composer package that ships assets is mirrored as a local "mock"
// package and referenced from the root package.json under the
// "@composer-asset/" scope:
//
//	"dependencies": {
//	    "@composer-asset/foo--bar": "file:./vendor/foxy/composer-asset/foo/bar"
//	}
//
// [Package] owns those entries: it adds new ones, keeps the ones already
// installed and removes the ones no longer required. Entries outside the
// scope belong to the user and are never touched.
package asset

import (
	"path"
	"strings"

	"github.com/matzehuels/foxy/pkg/composer"
	"github.com/matzehuels/foxy/pkg/errors"
	"github.com/matzehuels/foxy/pkg/manifest"
)

// Prefix is the scope of dependencies synthesized from Composer packages.
const Prefix = "@composer-asset/"

// Manifest sections holding dependencies.
const (
	SectionDependencies    = "dependencies"
	SectionDevDependencies = "devDependencies"
)

// Name returns the asset dependency name of a Composer package:
// "foo/bar" becomes "@composer-asset/foo--bar".
func Name(composerName string) string {
	return Prefix + strings.ReplaceAll(composerName, "/", "--")
}

// Dependency is an asset dependency and the relative, slash-separated path
// of its manifest (or its locator, for installed dependencies).
type Dependency struct {
	Name string
	Path string
}

// Dependencies is an ordered set of dependencies keyed by name.
// The zero value is empty and ready to use.
type Dependencies struct {
	items []Dependency
}

// NewDependencies returns a set holding deps, later duplicates replacing
// earlier ones.
func NewDependencies(deps ...Dependency) *Dependencies {
	d := &Dependencies{}
	for _, dep := range deps {
		d.Set(dep.Name, dep.Path)
	}
	return d
}

// Len returns the number of dependencies.
func (d *Dependencies) Len() int {
	return len(d.items)
}

// All returns the dependencies in order.
func (d *Dependencies) All() []Dependency {
	return append([]Dependency(nil), d.items...)
}

// Names returns the dependency names in order.
func (d *Dependencies) Names() []string {
	names := make([]string, len(d.items))
	for i, dep := range d.items {
		names[i] = dep.Name
	}
	return names
}

// Get returns the path of name.
func (d *Dependencies) Get(name string) (string, bool) {
	for _, dep := range d.items {
		if dep.Name == name {
			return dep.Path, true
		}
	}
	return "", false
}

// Set adds name or replaces its path in place.
func (d *Dependencies) Set(name, path string) {
	for i := range d.items {
		if d.items[i].Name == name {
			d.items[i].Path = path
			return
		}
	}
	d.items = append(d.items, Dependency{Name: name, Path: path})
}

// Delete removes name.
func (d *Dependencies) Delete(name string) {
	for i, dep := range d.items {
		if dep.Name == name {
			d.items = append(d.items[:i], d.items[i+1:]...)
			return
		}
	}
}

// Package is the root asset manifest being merged.
type Package struct {
	file *manifest.File
	doc  *manifest.Object
}

// NewPackage wraps an already decoded manifest. The dependency sections
// must be objects; an empty list is accepted as an empty object.
func NewPackage(file *manifest.File, doc *manifest.Object) (*Package, error) {
	name := "asset manifest"
	if file != nil {
		name = file.Path()
	}
	for _, section := range []string{SectionDependencies, SectionDevDependencies} {
		v, ok := doc.Get(section)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case *manifest.Object:
		case []any:
			if len(t) != 0 {
				return nil, errors.New(errors.ErrCodeInvalidManifest, "%s: %q must be an object", name, section)
			}
			doc.Set(section, manifest.NewObject())
		default:
			return nil, errors.New(errors.ErrCodeInvalidManifest, "%s: %q must be an object", name, section)
		}
	}
	return &Package{file: file, doc: doc}, nil
}

// LoadPackage reads the manifest in file, or starts an empty one when the
// file does not exist, and applies the license of root.
func LoadPackage(file *manifest.File, root *composer.Root) (*Package, error) {
	doc := manifest.NewObject()
	if file.Exists() {
		var err error
		if doc, err = file.Read(); err != nil {
			return nil, err
		}
	}

	p, err := NewPackage(file, doc)
	if err != nil {
		return nil, err
	}
	if root != nil {
		p.injectLicense(root.License)
	}
	return p, nil
}

// Doc returns the manifest.
func (p *Package) Doc() *manifest.Object {
	return p.doc
}

// Write saves the manifest in the layout of the original file.
func (p *Package) Write() error {
	return p.file.Write(p.doc)
}

// InstalledDependencies returns the dependencies under Prefix, with their
// locators, in manifest order.
func (p *Package) InstalledDependencies() *Dependencies {
	installed := &Dependencies{}
	deps, ok := p.doc.Object(SectionDependencies)
	if !ok {
		return installed
	}
	for _, name := range deps.Keys() {
		if !strings.HasPrefix(name, Prefix) {
			continue
		}
		locator, _ := deps.String(name)
		installed.Set(name, locator)
	}
	return installed
}

// AddNew adds every dependency of deps that is not installed yet as a
// "file:./<dir>" locator, then sorts both dependency sections by key. It
// returns the names that were already installed, in the order of deps.
func (p *Package) AddNew(deps *Dependencies) []string {
	installed := p.InstalledDependencies()
	var existing []string

	for _, dep := range deps.items {
		if _, ok := installed.Get(dep.Name); ok {
			existing = append(existing, dep.Name)
			continue
		}
		p.section(SectionDependencies).Set(dep.Name, "file:./"+path.Dir(dep.Path))
	}

	p.sortSection(SectionDependencies)
	p.sortSection(SectionDevDependencies)
	return existing
}

// RemoveUnused deletes the installed dependencies under Prefix that are not
// in deps. Other dependencies are left alone.
func (p *Package) RemoveUnused(deps *Dependencies) {
	section, ok := p.doc.Object(SectionDependencies)
	if !ok {
		return
	}
	for _, name := range p.InstalledDependencies().Names() {
		if _, keep := deps.Get(name); !keep {
			section.Delete(name)
		}
	}
}

// injectLicense copies the first license of the root package into the
// manifest when it has none. A proprietary license marks the manifest
// private instead.
func (p *Package) injectLicense(licenses composer.Licenses) {
	if p.doc.Has("license") || len(licenses) == 0 {
		return
	}
	if licenses[0] == "proprietary" {
		if !p.doc.Has("private") {
			p.doc.Set("private", true)
		}
		return
	}
	p.doc.Set("license", licenses[0])
}

// section returns the named section, creating it when absent.
func (p *Package) section(name string) *manifest.Object {
	if obj, ok := p.doc.Object(name); ok {
		return obj
	}
	obj := manifest.NewObject()
	p.doc.Set(name, obj)
	return obj
}

func (p *Package) sortSection(name string) {
	if obj, ok := p.doc.Object(name); ok {
		obj.SortKeys()
	}
}
