package config

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/matzehuels/foxy/pkg/errors"
	"github.com/matzehuels/foxy/pkg/manifest"
)

// ProjectFile is the name of the optional project-level config file.
const ProjectFile = "foxy.toml"

// BuildOptions controls where Build looks for configuration.
type BuildOptions struct {
	ProjectDir   string           // Directory holding composer.json; defaults to "."
	ComposerHome string           // Global Composer directory; defaults to ComposerHome(env)
	VendorDir    string           // Used for the composer-asset-dir default; defaults to "vendor"
	Env          Env              // Environment snapshot; defaults to the process environment
	Logger       *log.Logger      // Nil means log.Default()
	Defaults     *manifest.Object // Nil means Defaults(VendorDir)
}

// Build merges every configuration source of a project into a Config.
// Sources are merged key by key, later ones winning:
//
//   - config.foxy of $COMPOSER_HOME/composer.json
//   - config.foxy of $COMPOSER_HOME/config.json
//   - config.foxy of the project composer.json
//   - the project foxy.toml
//
// Variables from a project .env file are added to the environment snapshot
// unless the snapshot already defines them.
func Build(opts BuildOptions) (*Config, error) {
	if opts.ProjectDir == "" {
		opts.ProjectDir = "."
	}
	if opts.VendorDir == "" {
		opts.VendorDir = "vendor"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Env == nil {
		opts.Env = OSEnv()
	}
	if opts.Defaults == nil {
		opts.Defaults = Defaults(opts.VendorDir)
	}

	env, err := withDotEnv(opts.Env, filepath.Join(opts.ProjectDir, ".env"))
	if err != nil {
		return nil, err
	}

	home := opts.ComposerHome
	if home == "" {
		home = ComposerHome(env)
	}

	var paths []string
	if home != "" {
		paths = append(paths, filepath.Join(home, "composer.json"), filepath.Join(home, "config.json"))
	}
	paths = append(paths, filepath.Join(opts.ProjectDir, "composer.json"))

	var sources []*manifest.Object
	for _, path := range paths {
		obj, err := readComposerSection(path)
		if err != nil {
			return nil, err
		}
		if obj != nil {
			opts.Logger.Debug("loading foxy config", "file", path)
			sources = append(sources, obj)
		}
	}

	obj, err := ReadProjectFile(filepath.Join(opts.ProjectDir, ProjectFile))
	if err != nil {
		return nil, err
	}
	if obj != nil {
		opts.Logger.Debug("loading foxy config", "file", ProjectFile)
		sources = append(sources, obj)
	}

	merged := manifest.NewObject()
	for _, src := range sources {
		for _, k := range src.Keys() {
			v, _ := src.Get(k)
			merged.Set(k, v)
		}
	}

	return New(merged, opts.Defaults, env)
}

// OSEnv returns a snapshot of the process environment.
func OSEnv() Env {
	env := make(Env)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// ComposerHome returns the global Composer directory: $COMPOSER_HOME when
// set, otherwise the platform default.
func ComposerHome(env Env) string {
	if home := env["COMPOSER_HOME"]; home != "" {
		return home
	}

	if runtime.GOOS == "windows" {
		if appData := env["APPDATA"]; appData != "" {
			return filepath.Join(appData, "Composer")
		}
		return ""
	}

	userHome := env["HOME"]
	if userHome == "" {
		return ""
	}
	legacy := filepath.Join(userHome, ".composer")
	if info, err := os.Stat(legacy); err == nil && info.IsDir() {
		return legacy
	}
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "composer")
	}
	return filepath.Join(userHome, ".config", "composer")
}

// withDotEnv returns env extended with the variables of the .env file at
// path. Variables already present in env win.
func withDotEnv(env Env, path string) (Env, error) {
	vars, err := godotenv.Read(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return env, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	merged := make(Env, len(env)+len(vars))
	for k, v := range vars {
		merged[k] = v
	}
	for k, v := range env {
		merged[k] = v
	}
	return merged, nil
}

// readComposerSection returns the config.foxy object of a Composer JSON
// file, or nil when the file or the section does not exist.
func readComposerSection(path string) (*manifest.Object, error) {
	f := manifest.NewFile(path)
	if !f.Exists() {
		return nil, nil
	}

	doc, err := f.Read()
	if err != nil {
		return nil, err
	}

	composerConfig, ok := doc.Object("config")
	if !ok {
		return nil, nil
	}
	foxy, ok := composerConfig.Object("foxy")
	if !ok {
		return nil, nil
	}
	return foxy, nil
}

// ReadProjectFile reads a foxy.toml file into an Object, keeping the key
// order of the file. A missing file yields nil without error.
func ReadProjectFile(path string) (*manifest.Object, error) {
	data := make(map[string]any)
	md, err := toml.DecodeFile(path, &data)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	order := make(map[string]int)
	for i, key := range md.Keys() {
		order[key.String()] = i
	}
	return tomlObject(data, nil, order), nil
}

// SetProjectValue sets key in the foxy.toml file at path, creating the file
// when needed. Other keys are kept.
func SetProjectValue(path, key string, value any) error {
	data := make(map[string]any)
	if _, err := toml.DecodeFile(path, &data); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	data[key] = value

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return f.Close()
}

// tomlObject converts a decoded TOML table into an Object, ordering keys as
// they appear in the file.
func tomlObject(table map[string]any, prefix toml.Key, order map[string]int) *manifest.Object {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keyIndex(prefix, keys[i], order) < keyIndex(prefix, keys[j], order)
	})

	obj := manifest.NewObject()
	for _, k := range keys {
		obj.Set(k, tomlValue(table[k], append(prefix[:len(prefix):len(prefix)], k), order))
	}
	return obj
}

func keyIndex(prefix toml.Key, k string, order map[string]int) int {
	full := append(prefix[:len(prefix):len(prefix)], k)
	if i, ok := order[full.String()]; ok {
		return i
	}
	return len(order)
}

func tomlValue(v any, key toml.Key, order map[string]int) any {
	switch t := v.(type) {
	case map[string]any:
		return tomlObject(t, key, order)
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = tomlObject(e, key, order)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = tomlValue(e, key, order)
		}
		return out
	case int64:
		return json.Number(strconv.FormatInt(t, 10))
	case float64:
		return json.Number(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return v
	}
}
