package asset

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/foxy/pkg/composer"
	"github.com/matzehuels/foxy/pkg/config"
	"github.com/matzehuels/foxy/pkg/errors"
	"github.com/matzehuels/foxy/pkg/manifest"
	"github.com/matzehuels/foxy/pkg/observability"
	"github.com/matzehuels/foxy/pkg/process"
	foxysemver "github.com/matzehuels/foxy/pkg/semver"
)

// PackageFile is the manifest every asset manager reads.
const PackageFile = "package.json"

// nodeModules is the install directory shared by all asset managers.
const nodeModules = "node_modules"

// Restorer puts files back into their state before a failed run.
type Restorer interface {
	Restore(ctx context.Context) error
}

// Options holds the collaborators of a Manager.
type Options struct {
	Config    *config.Config
	Executor  process.Executor
	Converter foxysemver.Converter // Nil means foxysemver.NewConverter()
	Fallback  Restorer             // Restored when the manager fails; may be nil
	Dir       string               // Project directory; defaults to "."
	Stdout    io.Writer            // Output of install and update runs
	Stderr    io.Writer
	Logger    *log.Logger // Nil means log.Default()
}

// Manager runs one asset manager for a project.
type Manager struct {
	variant   Variant
	cfg       *config.Config
	exec      process.Executor
	converter foxysemver.Converter
	fallback  Restorer
	dir       string
	stdout    io.Writer
	stderr    io.Writer
	logger    *log.Logger
	updatable bool

	versionOnce sync.Once
	version     string
}

// NewManager returns a Manager for variant. Manager-specific options
// (manager-bin, manager-version, ...) resolve for variant's name.
func NewManager(variant Variant, opts Options) *Manager {
	if opts.Converter == nil {
		opts.Converter = foxysemver.NewConverter()
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Manager{
		variant:   variant,
		cfg:       opts.Config.WithManager(variant.Name()),
		exec:      opts.Executor,
		converter: opts.Converter,
		fallback:  opts.Fallback,
		dir:       opts.Dir,
		stdout:    opts.Stdout,
		stderr:    opts.Stderr,
		logger:    opts.Logger.With("manager", variant.Name()),
		updatable: true,
	}
}

// Managers returns a Manager for every supported variant, in detection order.
func Managers(opts Options) []*Manager {
	variants := Variants()
	managers := make([]*Manager, len(variants))
	for i, v := range variants {
		managers[i] = NewManager(v, opts)
	}
	return managers
}

// Name returns the manager name.
func (m *Manager) Name() string {
	return m.variant.Name()
}

// PackageFile returns the manifest file name the manager reads.
func (m *Manager) PackageFile() string {
	return PackageFile
}

// SetFallback sets the restorer used when a run fails.
func (m *Manager) SetFallback(r Restorer) {
	m.fallback = r
}

// SetUpdatable chooses between update (true) and install runs.
func (m *Manager) SetUpdatable(updatable bool) {
	m.updatable = updatable
}

// PackageDir returns the directory holding package.json, node_modules and
// the lock file: root-package-dir when configured, the project otherwise.
func (m *Manager) PackageDir() string {
	dir := m.cfg.String(config.KeyRootPackageDir, "")
	if dir == "" {
		return m.dir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(m.dir, dir)
}

// Version returns the converted version reported by the manager binary, or
// false when the binary is not available. The binary is asked once.
func (m *Manager) Version(ctx context.Context) (string, bool) {
	m.versionOnce.Do(func() {
		res, err := m.exec.Run(ctx, m.command("version", m.variant.VersionArgs(), nil, nil))
		if err != nil || res.ExitCode != 0 {
			m.logger.Debug("version unavailable", "code", res.ExitCode, "err", err)
			return
		}
		if out := strings.TrimSpace(res.Output); out != "" {
			m.version = m.converter.Convert(out)
		}
	})
	return m.version, m.version != ""
}

// IsAvailable reports whether the manager binary answers --version.
func (m *Manager) IsAvailable(ctx context.Context) bool {
	_, ok := m.Version(ctx)
	return ok
}

// HasLockFile reports whether the manager's lock file exists.
func (m *Manager) HasLockFile() bool {
	return fileExists(filepath.Join(m.PackageDir(), m.variant.LockFile()))
}

// IsInstalled reports whether dependencies were installed before:
// node_modules and package.json exist, plus the lock file for managers that
// always write one.
func (m *Manager) IsInstalled() bool {
	dir := m.PackageDir()
	info, err := os.Stat(filepath.Join(dir, nodeModules))
	if err != nil || !info.IsDir() || !fileExists(filepath.Join(dir, PackageFile)) {
		return false
	}
	if _, ok := m.variant.(lockedVariant); ok {
		return m.HasLockFile()
	}
	return true
}

// IsUpdatable reports whether Run would update rather than install.
func (m *Manager) IsUpdatable(ctx context.Context) bool {
	return m.updatable && m.IsInstalled() && m.isValidForUpdate(ctx)
}

func (m *Manager) isValidForUpdate(ctx context.Context) bool {
	checked, ok := m.variant.(checkedVariant)
	if !ok {
		return true
	}
	version, _ := m.Version(ctx)
	args := checked.CheckArgs(version)
	if args == nil {
		return true
	}
	res, err := m.exec.Run(ctx, m.command("check", args, nil, nil))
	return err == nil && res.ExitCode == 0
}

// Validate checks that the manager binary is available and that its version
// satisfies manager-version.
func (m *Manager) Validate(ctx context.Context) error {
	version, ok := m.Version(ctx)
	if !ok {
		return errors.New(errors.ErrCodeManagerUnavailable, "the binary of %q must be installed", m.Name())
	}

	constraint := m.cfg.String(config.KeyManagerVersion, "")
	if constraint == "" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid %s constraint %q", config.KeyManagerVersion, constraint)
	}
	// Pre-release managers satisfy plain constraints, as Composer's do.
	c.IncludePrerelease = true
	v, err := semver.NewVersion(version)
	if err != nil || !c.Check(v) {
		return errors.New(errors.ErrCodeManagerVersion,
			"the installed %s version %q doesn't match with the constraint version %q", m.Name(), version, constraint)
	}
	return nil
}

// AddDependencies merges deps into the project's package.json: stale
// Composer assets are removed, new ones added, and the file is written.
func (m *Manager) AddDependencies(root *composer.Root, deps *Dependencies) (*Package, error) {
	file := manifest.NewFile(filepath.Join(m.PackageDir(), PackageFile))
	pkg, err := LoadPackage(file, root)
	if err != nil {
		return nil, err
	}

	pkg.RemoveUnused(deps)
	existing := pkg.AddNew(deps)

	if _, ok := m.variant.(reinstallingVariant); ok {
		for _, name := range existing {
			if err := os.RemoveAll(filepath.Join(m.PackageDir(), nodeModules, filepath.FromSlash(name))); err != nil {
				return nil, err
			}
		}
	}

	m.logger.Info("Merging Composer dependencies in the asset package")
	if err := pkg.Write(); err != nil {
		return nil, err
	}
	return pkg, nil
}

// Run installs or updates the asset dependencies and returns the exit code
// of the manager. A failed run restores the fallback first.
func (m *Manager) Run(ctx context.Context) (int, error) {
	if !m.cfg.Bool(config.KeyRunAssetManager, true) {
		return 0, nil
	}

	dir := m.PackageDir()
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return 0, errors.New(errors.ErrCodeInvalidPath, "the root package directory %q doesn't exist", dir)
	}

	version, _ := m.Version(ctx)
	action, args := "install", m.variant.InstallArgs(version)
	if m.IsUpdatable(ctx) {
		action, args = "update", m.variant.UpdateArgs(version)
	}

	if action == "update" {
		m.logger.Info("Updating " + m.Name() + " dependencies")
	} else {
		m.logger.Info("Installing " + m.Name() + " dependencies")
	}

	cmd := m.command(action, args, m.stdout, m.stderr)
	cmd.Timeout = time.Duration(m.cfg.Int(config.KeyManagerTimeout, 0)) * time.Second

	hooks := observability.Manager()
	hooks.OnCommand(ctx, m.Name(), action, cmd.String())
	res, err := m.exec.Run(ctx, cmd)
	hooks.OnExit(ctx, m.Name(), action, res.ExitCode, res.Duration, err)

	if (err != nil || res.ExitCode > 0) && m.fallback != nil {
		if rerr := m.fallback.Restore(ctx); rerr != nil {
			m.logger.Warn("fallback failed", "err", rerr)
		}
	}
	return res.ExitCode, err
}

// command builds "<bin> <args> <manager-options> <manager-<action>-options>".
func (m *Manager) command(action string, args []string, stdout, stderr io.Writer) process.Command {
	bin := filepath.FromSlash(m.cfg.String(config.KeyManagerBin, m.Name()))

	all := append([]string(nil), args...)
	all = append(all, strings.Fields(m.cfg.String(config.KeyManagerOptions, ""))...)
	all = append(all, strings.Fields(m.cfg.ActionOptions(action))...)

	return process.Command{
		Dir:    m.PackageDir(),
		Name:   bin,
		Args:   all,
		Stdout: stdout,
		Stderr: stderr,
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
