package composer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/foxy/pkg/errors"
	"github.com/matzehuels/foxy/pkg/manifest"
)

// Activation enables or disables foxy for packages whose name matches
// Pattern. Patterns wrapped in slashes ("/^acme\//i") are regular
// expressions; everything else is a glob over the whole name.
type Activation struct {
	Pattern string
	Enabled bool
}

// ParseActivations reads the enable-packages option. It accepts an object
// mapping patterns to booleans, or a list of patterns meaning true. Entries
// of any other shape are ignored.
func ParseActivations(v any) []Activation {
	var out []Activation
	switch t := v.(type) {
	case *manifest.Object:
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			if b, ok := val.(bool); ok {
				out = append(out, Activation{Pattern: k, Enabled: b})
			}
		}
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, Activation{Pattern: s, Enabled: true})
			}
		}
	}
	return out
}

// Match reports whether name matches the activation pattern. Invalid
// patterns never match.
//
// Globs match the name as a flat string, so "*" also matches "/":
// "*" enables every package and "*-theme" matches "acme/ui-theme".
func (a Activation) Match(name string) bool {
	if re := phpRegexp(a.Pattern); re != nil {
		return re.MatchString(name)
	}
	ok, err := doublestar.Match(flattenPath(a.Pattern), flattenPath(name))
	return err == nil && ok
}

// pathPlaceholder stands in for "/" so doublestar sees a single segment.
const pathPlaceholder = "\uE000"

func flattenPath(s string) string {
	return strings.ReplaceAll(s, "/", pathPlaceholder)
}

// phpRegexp compiles a "/expr/flags" pattern. It returns nil when pattern is
// not delimited that way or does not compile.
func phpRegexp(pattern string) *regexp.Regexp {
	if len(pattern) < 2 || pattern[0] != '/' {
		return nil
	}
	end := strings.LastIndexByte(pattern, '/')
	if end == 0 {
		return nil
	}
	expr, flags := pattern[1:end], pattern[end+1:]

	var goFlags string
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's', 'U':
			goFlags += string(f)
		case 'u', 'x', 'D':
		default:
			return nil
		}
	}
	if goFlags != "" {
		expr = "(?" + goFlags + ")" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	return re
}

// projectActivation returns the first activation matching name.
func projectActivation(name string, activations []Activation) (enabled, found bool) {
	for _, a := range activations {
		if a.Match(name) {
			return a.Enabled, true
		}
	}
	return false, false
}

// IsAsset reports whether foxy handles the assets of p.
//
// A project activation set to false always wins. Otherwise the package is
// an asset package when its extra.foxy is true, when it requires the foxy
// plugin, or when a project activation enables it.
func IsAsset(p *Package, activations []Activation) bool {
	enabled, found := projectActivation(p.Name, activations)
	if found && !enabled {
		return false
	}
	if extra, ok := p.Extra["foxy"].(bool); ok && extra {
		return true
	}
	if p.Requires(PluginName) {
		return true
	}
	return found && enabled
}

// AssetPath returns the absolute, slash-separated path of the asset
// manifest (filename) of p, or false when p carries no assets or the file
// does not exist.
//
// A package may move its manifest into a sub directory with
// config.foxy.root-package-json-dir in its own composer.json.
func AssetPath(p *Package, activations []Activation, filename string) (string, bool) {
	if !IsAsset(p, activations) || p.Dir == "" {
		return "", false
	}

	dir := p.Dir
	sub, err := rootPackageJSONDir(filepath.Join(dir, "composer.json"))
	if err != nil {
		return "", false
	}
	if sub != "" {
		dir = filepath.Join(dir, filepath.FromSlash(sub))
	}

	path := filepath.Join(dir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return filepath.ToSlash(absPath(path)), true
}

// rootPackageJSONDir reads config.foxy.root-package-json-dir from a
// package's composer.json. The directory must stay inside the package.
func rootPackageJSONDir(composerJSON string) (string, error) {
	data, err := os.ReadFile(composerJSON)
	if err != nil {
		return "", nil
	}
	var doc struct {
		Config struct {
			Foxy struct {
				RootPackageJSONDir any `json:"root-package-json-dir"`
			} `json:"foxy"`
		} `json:"config"`
	}
	if json.Unmarshal(data, &doc) != nil {
		return "", nil
	}
	dir, _ := doc.Config.Foxy.RootPackageJSONDir.(string)
	if dir == "" {
		return "", nil
	}
	if err := errors.ValidatePath(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// FormatPackage prepares the copied asset manifest doc of p for merging: the
// name becomes assetName and, when doc has no version, one is derived from
// the Composer version of p.
func FormatPackage(p *Package, assetName string, doc *manifest.Object) *manifest.Object {
	doc.Set("name", assetName)

	if !doc.Has("version") {
		version := p.Version
		if strings.HasPrefix(version, "dev-") {
			if alias, ok := p.BranchAlias(version); ok {
				version = alias
			}
		}
		doc.Set("version", formatVersion(strings.ReplaceAll(version, "-dev", "")))
	}
	return doc
}

// formatVersion turns a Composer version into a three-segment version,
// replacing wildcards with 0.
func formatVersion(version string) string {
	version = strings.NewReplacer("x", "0", "X", "0", "*", "0").Replace(version)
	parts := strings.Split(version, ".")
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return strings.Join(parts[:3], ".")
}
