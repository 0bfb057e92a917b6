// Package config resolves foxy options.
//
// Options are string keys such as "manager" or "manager-timeout". A value is
// looked up in this order:
//
//  1. The environment variable FOXY__<KEY>, with dashes turned into
//     underscores and the key upper-cased (manager-bin → FOXY__MANAGER_BIN).
//  2. The merged configuration built by [Build].
//  3. The caller's default, or the package default when the caller has none.
//
// Environment values are coerced: quotes are trimmed, then the value is read
// as a boolean (true, false, 1, 0, yes, no, y, n), an integer, or JSON when it
// starts with "{" or "[". Anything else stays a string. Resolved environment
// values are memoized for the life of the Config.
//
// Keys starting with "manager-" may hold an object keyed by asset manager
// name; such values resolve to the entry of the active manager:
//
//	[manager-version]
//	npm = ">=7.0.0"
//	yarn = ">=1.22.0"
//
// Values use the same representation as package manifest: *manifest.Object
// for objects, []any for lists, json.Number for numbers, and string or bool.
package config

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/matzehuels/foxy/pkg/errors"
	"github.com/matzehuels/foxy/pkg/manifest"
)

// EnvPrefix prefixes every environment variable read by Config.
const EnvPrefix = "FOXY__"

// Well-known option keys.
const (
	KeyEnabled          = "enabled"
	KeyManager          = "manager"
	KeyManagerVersion   = "manager-version"
	KeyManagerBin       = "manager-bin"
	KeyManagerOptions   = "manager-options"
	KeyManagerTimeout   = "manager-timeout"
	KeyComposerAssetDir = "composer-asset-dir"
	KeyRootPackageDir   = "root-package-dir"
	KeyRunAssetManager  = "run-asset-manager"
	KeyFallbackAsset    = "fallback-asset"
	KeyFallbackComposer = "fallback-composer"
	KeyEnablePackages   = "enable-packages"
)

const (
	managerKeyPrefix = "manager-"
	assetDirSuffix   = "foxy/composer-asset/"
)

// Env is a snapshot of environment variables.
type Env map[string]string

// Config holds the merged options of a project.
// It is safe for concurrent use.
type Config struct {
	values   *manifest.Object
	defaults *manifest.Object
	env      Env
	manager  string

	mu    sync.Mutex
	cache map[string]any
}

// New returns a Config over values and defaults, reading overrides from env.
// Either object may be nil. The FOXY__ variables of known keys are checked
// up front: invalid JSON is reported as INVALID_CONFIG instead of being
// guessed. Variables of keys foxy never reads are ignored.
func New(values, defaults *manifest.Object, env Env) (*Config, error) {
	if values == nil {
		values = manifest.NewObject()
	}
	if defaults == nil {
		defaults = manifest.NewObject()
	}

	c := &Config{
		values:   values,
		defaults: defaults,
		env:      env,
		cache:    make(map[string]any),
	}

	for _, obj := range []*manifest.Object{Defaults(""), defaults, values} {
		for _, key := range obj.Keys() {
			name := EnvName(key)
			raw, ok := env[name]
			if !ok {
				continue
			}
			if _, err := convertEnvValue(raw, name); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Defaults returns the package defaults. vendorDir is used to derive the
// composer-asset-dir default.
func Defaults(vendorDir string) *manifest.Object {
	versions := manifest.NewObject()
	versions.Set("npm", ">=5.0.0")
	versions.Set("pnpm", ">=7.0.0")
	versions.Set("yarn", ">=1.0.0")
	versions.Set("bun", ">=1.0.0")

	d := manifest.NewObject()
	d.Set(KeyEnabled, true)
	d.Set(KeyManager, "")
	d.Set(KeyManagerVersion, versions)
	d.Set(KeyManagerBin, nil)
	d.Set(KeyManagerOptions, nil)
	d.Set("manager-install-options", nil)
	d.Set("manager-update-options", nil)
	d.Set(KeyManagerTimeout, json.Number("0"))
	d.Set(KeyComposerAssetDir, strings.TrimSuffix(vendorDir, "/")+"/"+assetDirSuffix)
	d.Set(KeyRootPackageDir, nil)
	d.Set(KeyRunAssetManager, true)
	d.Set(KeyFallbackAsset, true)
	d.Set(KeyFallbackComposer, true)
	d.Set(KeyEnablePackages, manifest.NewObject())
	return d
}

// WithManager returns a view of c that resolves manager-* objects for the
// named asset manager instead of the configured one.
func (c *Config) WithManager(name string) *Config {
	return &Config{
		values:   c.values,
		defaults: c.defaults,
		env:      c.env,
		manager:  name,
		cache:    make(map[string]any),
	}
}

// Get returns the value of key, or nil when it is not set anywhere.
func (c *Config) Get(key string) any {
	return c.GetOr(key, nil)
}

// GetOr returns the value of key, or def when it is not set. A nil def falls
// back to the package default for key.
func (c *Config) GetOr(key string, def any) any {
	if v, ok := c.envValue(key); ok {
		return c.byManager(key, v, def)
	}

	fallback := def
	if fallback == nil {
		if v, ok := c.defaults.Get(key); ok {
			fallback = v
		}
	}
	fallback = c.byManager(key, fallback, def)

	if v, ok := c.values.Get(key); ok {
		return c.byManager(key, v, fallback)
	}
	return fallback
}

// String returns key as a string. Numbers are formatted; other types yield
// def.
func (c *Config) String(key, def string) string {
	switch v := c.GetOr(key, nil).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return def
}

// Bool returns key as a boolean, or def when it is not one.
func (c *Config) Bool(key string, def bool) bool {
	if v, ok := c.GetOr(key, nil).(bool); ok {
		return v
	}
	return def
}

// Int returns key as an integer, or def when it is not one.
func (c *Config) Int(key string, def int) int {
	switch v := c.GetOr(key, nil).(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Object returns key as an object, or nil when it is not one.
func (c *Config) Object(key string) *manifest.Object {
	obj, _ := c.GetOr(key, nil).(*manifest.Object)
	return obj
}

// ActionOptions returns the manager-<action>-options value, e.g.
// "manager-install-options" for action "install".
func (c *Config) ActionOptions(action string) string {
	return c.String(managerKeyPrefix+action+"-options", "")
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// envValue returns the coerced environment override of key.
func (c *Config) envValue(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.cache[key]; ok {
		return v, true
	}

	name := EnvName(key)
	raw, ok := c.env[name]
	if !ok {
		return nil, false
	}

	// Known keys are validated in New; others fall back to the raw string.
	v, err := convertEnvValue(raw, name)
	if err != nil {
		v = raw
	}
	c.cache[key] = v
	return v, true
}

// byManager resolves an object value of a manager-* key to the entry of the
// active manager, or def when that manager has no entry.
func (c *Config) byManager(key string, value, def any) any {
	obj, ok := value.(*manifest.Object)
	if !ok || !strings.HasPrefix(key, managerKeyPrefix) {
		return value
	}

	manager := c.manager
	if manager == "" {
		manager, _ = c.GetOr(KeyManager, "").(string)
	}
	if v, ok := obj.Get(manager); ok {
		return v
	}
	return def
}

func convertEnvValue(raw, name string) (any, error) {
	value := strings.TrimSpace(strings.Trim(strings.Trim(raw, "'"), `"`))

	if b, ok := parseBool(value); ok {
		return b, nil
	}
	if isInteger(value) {
		if n, err := strconv.Atoi(value); err == nil {
			return json.Number(strconv.Itoa(n)), nil
		}
	}
	if strings.HasPrefix(value, "{") || strings.HasPrefix(value, "[") {
		v, err := manifest.Decode([]byte(value))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "the %q environment variable isn't a valid JSON", name)
		}
		return v, nil
	}
	return value, nil
}

func parseBool(s string) (value, ok bool) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "y":
		return true, true
	case "false", "0", "no", "n":
		return false, true
	}
	return false, false
}

func isInteger(s string) bool {
	digits := strings.TrimLeft(s, "-")
	if digits == "" || len(s)-len(digits) > 1 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
