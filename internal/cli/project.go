package cli

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/foxy/pkg/asset"
	"github.com/matzehuels/foxy/pkg/composer"
	"github.com/matzehuels/foxy/pkg/config"
)

// project is a loaded PHP project: its composer.json and merged foxy config.
type project struct {
	dir  string
	root *composer.Root
	cfg  *config.Config
}

// loadProject reads composer.json from the working directory and builds the
// project configuration.
func (c *CLI) loadProject(ctx context.Context) (*project, error) {
	dir, err := filepath.Abs(c.workDir)
	if err != nil {
		return nil, err
	}

	root, err := composer.LoadRoot(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Build(config.BuildOptions{
		ProjectDir: dir,
		VendorDir:  root.VendorDir(),
		Env:        c.env(),
		Logger:     loggerFromContext(ctx),
	})
	if err != nil {
		return nil, err
	}
	return &project{dir: dir, root: root, cfg: cfg}, nil
}

// managers returns a Manager per supported asset manager for p.
func (c *CLI) managers(ctx context.Context, p *project) []*asset.Manager {
	return asset.Managers(asset.Options{
		Config:   p.cfg,
		Executor: c.Executor,
		Dir:      p.dir,
		Stdout:   c.Stdout,
		Stderr:   c.Stderr,
		Logger:   loggerFromContext(ctx),
	})
}

// findManager returns the asset manager called name, or the configured one,
// or the one detected in the project.
func (c *CLI) findManager(ctx context.Context, p *project, name string) (*asset.Manager, error) {
	if name == "" {
		name = p.cfg.String(config.KeyManager, "")
	}
	return asset.NewFinder(c.managers(ctx, p)...).Find(ctx, name)
}
