// Package solver runs the foxy workflow after Composer installed or updated
// the PHP dependencies.
//
// A solve mirrors every asset-carrying Composer package as a mock package
// under composer-asset-dir, merges those mock packages into the root
// package.json and runs the asset manager:
//
//	vendor/acme/ui/package.json
//	    -> vendor/foxy/composer-asset/acme/ui/package.json
//	    -> "@composer-asset/acme--ui": "file:./vendor/foxy/composer-asset/acme/ui"
package solver

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/foxy/pkg/asset"
	"github.com/matzehuels/foxy/pkg/composer"
	"github.com/matzehuels/foxy/pkg/config"
	"github.com/matzehuels/foxy/pkg/errors"
	"github.com/matzehuels/foxy/pkg/manifest"
	"github.com/matzehuels/foxy/pkg/observability"
)

// Options holds the collaborators of a Solver.
type Options struct {
	Config           *config.Config
	Manager          *asset.Manager
	Root             *composer.Root
	Dir              string             // Project directory; defaults to "."
	Packages         []composer.Package // Installed packages; nil means read vendor/composer/installed.json
	ComposerFallback asset.Restorer     // Restored when the asset manager fails; may be nil
	Concurrency      int                // Mock packages staged at once; defaults to GOMAXPROCS
	Logger           *log.Logger
}

// Solver merges Composer asset packages into the root asset manifest and
// runs the asset manager.
type Solver struct {
	opts Options
}

// New returns a Solver.
func New(opts Options) *Solver {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Solver{opts: opts}
}

// Solve runs one solve. With updatable set the asset manager updates its
// dependencies when it can, otherwise it installs them.
func (s *Solver) Solve(ctx context.Context, updatable bool) error {
	cfg := s.opts.Config
	if !cfg.Bool(config.KeyEnabled, true) {
		s.opts.Logger.Debug("foxy is disabled")
		return nil
	}

	runID := uuid.NewString()
	logger := s.opts.Logger.With("run", runID[:8])
	hooks := observability.Solve()

	vendorDir := s.resolve(s.opts.Root.VendorDir())
	packages := s.opts.Packages
	if packages == nil {
		var err error
		if packages, err = composer.LoadInstalled(vendorDir); err != nil {
			return err
		}
	}

	assetDir := s.resolve(cfg.String(config.KeyComposerAssetDir, path.Join(s.opts.Root.VendorDir(), "foxy/composer-asset")))
	hooks.OnPreSolve(ctx, runID, assetDir, len(packages))
	if err := os.RemoveAll(assetDir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "clean %s", assetDir)
	}

	assets, err := s.stage(ctx, assetDir, packages)
	if err != nil {
		return err
	}
	hooks.OnGetAssets(ctx, runID, assetDir, assets)
	logger.Debug("collected asset packages", "count", assets.Len())

	m := s.opts.Manager
	m.SetUpdatable(updatable)
	if _, err := m.AddDependencies(s.opts.Root, assets); err != nil {
		return err
	}

	start := time.Now()
	code, err := m.Run(ctx)
	hooks.OnPostSolve(ctx, runID, assetDir, code, time.Since(start), err)
	if err != nil {
		return err
	}

	if code > 0 {
		if s.opts.ComposerFallback != nil {
			if rerr := s.opts.ComposerFallback.Restore(ctx); rerr != nil {
				logger.Warn("composer fallback failed", "err", rerr)
			}
		}
		return errors.Wrap(errors.ErrCodeProcessFailed,
			&errors.ExitError{Command: m.Name(), ExitCode: code},
			"the asset manager ended with an error")
	}
	return nil
}

// stage writes one mock package per asset package and returns the asset
// dependencies, in package order, keyed by asset name with the path of the
// mock manifest relative to the asset manager's directory.
func (s *Solver) stage(ctx context.Context, assetDir string, packages []composer.Package) (*asset.Dependencies, error) {
	activations := composer.ParseActivations(s.opts.Config.Get(config.KeyEnablePackages))
	baseDir := s.opts.Manager.PackageDir()

	slots := make([]*asset.Dependency, len(packages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i := range packages {
		p := &packages[i]
		source, ok := composer.AssetPath(p, activations, asset.PackageFile)
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dep, err := stageMock(p, filepath.FromSlash(source), assetDir, baseDir)
			if err != nil {
				return err
			}
			slots[i] = dep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	deps := asset.NewDependencies()
	for _, dep := range slots {
		if dep != nil {
			deps.Set(dep.Name, dep.Path)
		}
	}
	return deps, nil
}

// stageMock copies the asset manifest of p to <assetDir>/<vendor>/<name>/
// and rewrites its name and version.
func stageMock(p *composer.Package, source, assetDir, baseDir string) (*asset.Dependency, error) {
	if err := errors.ValidateComposerPackageName(p.Name); err != nil {
		return nil, err
	}
	name := asset.Name(p.Name)
	target := filepath.Join(assetDir, filepath.FromSlash(p.Name), filepath.Base(source))

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", source)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create mock package of %s", p.Name)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "copy %s", source)
	}

	file := manifest.NewFile(target)
	doc, err := file.Read()
	if err != nil {
		return nil, err
	}
	if err := file.Write(composer.FormatPackage(p, name, doc)); err != nil {
		return nil, err
	}

	rel, err := relativePath(baseDir, target)
	if err != nil {
		return nil, err
	}
	return &asset.Dependency{Name: name, Path: rel}, nil
}

// relativePath returns target relative to base, slash-separated.
func relativePath(base, target string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "%s is not reachable from %s", target, base)
	}
	return filepath.ToSlash(rel), nil
}

func (s *Solver) resolve(dir string) string {
	dir = filepath.FromSlash(dir)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(s.opts.Dir, dir)
}
