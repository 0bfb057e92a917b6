// Package fallback snapshots project files before a solve and puts them
// back when the asset manager fails.
//
// Both fallbacks follow the same two-step protocol: Save before anything is
// touched, Restore after a failed run. Restore is a no-op when its config
// switch (fallback-asset or fallback-composer) is off.
package fallback

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/foxy/pkg/composer"
	"github.com/matzehuels/foxy/pkg/config"
	"github.com/matzehuels/foxy/pkg/errors"
	"github.com/matzehuels/foxy/pkg/process"
)

// LockFile is the Composer lock file name.
const LockFile = "composer.lock"

// Asset restores the root asset manifest.
type Asset struct {
	cfg    *config.Config
	path   string
	logger *log.Logger

	original []byte
	saved    bool
}

// NewAsset returns a fallback for the asset manifest at path.
func NewAsset(cfg *config.Config, path string, logger *log.Logger) *Asset {
	if logger == nil {
		logger = log.Default()
	}
	return &Asset{cfg: cfg, path: path, logger: logger}
}

// Save snapshots the manifest. A missing manifest is remembered as such.
func (a *Asset) Save() error {
	a.original, a.saved = nil, false

	info, err := os.Stat(a.path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	data, err := os.ReadFile(a.path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "snapshot %s", a.path)
	}
	a.original, a.saved = data, true
	return nil
}

// Restore removes the manifest and writes the snapshot back, if any.
func (a *Asset) Restore(context.Context) error {
	if !a.cfg.Bool(config.KeyFallbackAsset, true) {
		return nil
	}

	a.logger.Info("Fallback to previous state for the Asset package")
	if err := os.RemoveAll(a.path); err != nil {
		return err
	}
	if !a.saved {
		return nil
	}
	return os.WriteFile(a.path, a.original, 0644)
}

// ComposerOptions holds the collaborators of a Composer fallback.
type ComposerOptions struct {
	Config    *config.Config
	Executor  process.Executor
	Dir       string // Project directory holding composer.lock
	VendorDir string // Absolute or relative to Dir
	Binary    string // Composer binary; defaults to "composer"
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *log.Logger
}

// Composer restores the Composer lock file and the installed packages.
type Composer struct {
	opts ComposerOptions

	lock     []byte
	packages int
}

// NewComposer returns a Composer fallback.
func NewComposer(opts ComposerOptions) *Composer {
	if opts.Binary == "" {
		opts.Binary = "composer"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Composer{opts: opts}
}

// Save snapshots composer.lock. An unreadable or invalid lock counts as no
// lock.
func (c *Composer) Save() error {
	c.lock, c.packages = nil, 0

	data, err := os.ReadFile(c.lockPath())
	if err != nil {
		return nil
	}
	lock, err := composer.ReadLock(data)
	if err != nil {
		c.opts.Logger.Debug("ignoring composer lock", "err", err)
		return nil
	}
	c.lock, c.packages = data, len(lock.Packages)
	return nil
}

// Restore writes the saved lock back and reinstalls it without scripts.
// Without a saved lock holding packages, the vendor directory is removed
// instead.
func (c *Composer) Restore(ctx context.Context) error {
	if !c.opts.Config.Bool(config.KeyFallbackComposer, true) {
		return nil
	}

	c.opts.Logger.Info("Fallback to previous state for Composer")
	if c.lock != nil {
		if err := os.WriteFile(c.lockPath(), c.lock, 0644); err != nil {
			return err
		}
	}

	if c.packages == 0 {
		return os.RemoveAll(c.vendorDir())
	}

	res, err := c.opts.Executor.Run(ctx, process.Command{
		Dir:    c.opts.Dir,
		Name:   c.opts.Binary,
		Args:   []string{"install", "--no-scripts", "--no-interaction"},
		Stdout: c.opts.Stdout,
		Stderr: c.opts.Stderr,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return errors.Wrap(errors.ErrCodeProcessFailed,
			&errors.ExitError{Command: c.opts.Binary + " install", ExitCode: res.ExitCode},
			"restore composer packages")
	}
	return nil
}

func (c *Composer) lockPath() string {
	return filepath.Join(c.opts.Dir, LockFile)
}

func (c *Composer) vendorDir() string {
	dir := c.opts.VendorDir
	if dir == "" {
		dir = "vendor"
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.opts.Dir, dir)
}
