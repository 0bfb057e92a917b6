package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foxy/pkg/asset"
	"github.com/matzehuels/foxy/pkg/config"
	"github.com/matzehuels/foxy/pkg/errors"
	"github.com/matzehuels/foxy/pkg/fallback"
	"github.com/matzehuels/foxy/pkg/process"
	"github.com/matzehuels/foxy/pkg/solver"
)

// solveOptions holds flags shared by install and update.
type solveOptions struct {
	manager     string
	composer    bool
	composerBin string
	updatable   bool
}

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	opts := solveOptions{}
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the assets of the Composer packages",
		Long: `Install merges the asset packages of the installed Composer packages into
package.json and runs the asset manager's install command.

Run it after "composer install", or pass --composer to let foxy run Composer
first. When the asset manager fails, package.json and the Composer packages
are restored to their previous state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd.Context(), opts)
		},
	}
	addSolveFlags(cmd, &opts)
	return cmd
}

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	opts := solveOptions{updatable: true}
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the assets of the Composer packages",
		Long: `Update works like install but lets the asset manager update its
dependencies when they are already installed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd.Context(), opts)
		},
	}
	addSolveFlags(cmd, &opts)
	return cmd
}

func addSolveFlags(cmd *cobra.Command, opts *solveOptions) {
	addManagerFlag(cmd, &opts.manager, "asset manager to use (npm, pnpm, yarn, bun)")
	cmd.Flags().BoolVar(&opts.composer, "composer", false, "run Composer before solving the assets")
	cmd.Flags().StringVar(&opts.composerBin, "composer-bin", defaultComposerBin, "Composer binary")
}

// runSolve runs the whole workflow: detect the manager, save the fallbacks,
// validate the manager, optionally run Composer, then solve.
func (c *CLI) runSolve(ctx context.Context, opts solveOptions) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	p, err := c.loadProject(ctx)
	if err != nil {
		return err
	}
	if !p.cfg.Bool(config.KeyEnabled, true) {
		if opts.composer {
			if err := c.runComposer(ctx, p.dir, opts); err != nil {
				return err
			}
		}
		printInfo("Foxy is disabled")
		return nil
	}

	m, err := c.findManager(ctx, p, opts.manager)
	if err != nil {
		return err
	}
	ctx = withManager(ctx, m.Name())
	logger = loggerFromContext(ctx)
	logger.Debug("using asset manager", "dir", m.PackageDir())

	assetFallback := fallback.NewAsset(p.cfg, filepath.Join(m.PackageDir(), asset.PackageFile), logger)
	composerFallback := fallback.NewComposer(fallback.ComposerOptions{
		Config:    p.cfg,
		Executor:  c.Executor,
		Dir:       p.dir,
		VendorDir: p.root.VendorDir(),
		Binary:    opts.composerBin,
		Stdout:    c.Stdout,
		Stderr:    c.Stderr,
		Logger:    logger,
	})
	if err := assetFallback.Save(); err != nil {
		return err
	}
	if err := composerFallback.Save(); err != nil {
		return err
	}
	m.SetFallback(assetFallback)

	if err := m.Validate(ctx); err != nil {
		return err
	}

	if opts.composer {
		if err := c.runComposer(ctx, p.dir, opts); err != nil {
			return err
		}
	}

	s := solver.New(solver.Options{
		Config:           p.cfg,
		Manager:          m,
		Root:             p.root,
		Dir:              p.dir,
		ComposerFallback: composerFallback,
		Logger:           logger,
	})
	if err := s.Solve(ctx, opts.updatable); err != nil {
		return err
	}

	version, _ := m.Version(ctx)
	prog.done("Solved assets", "updatable", opts.updatable)
	if !p.cfg.Bool(config.KeyRunAssetManager, true) {
		printWarning("package.json is merged but %s did not run (run-asset-manager is off)", m.Name())
		return nil
	}
	printSuccess("Assets are up to date")
	printDetail("%s %s in %s", m.Name(), version, m.PackageDir())
	return nil
}

// runComposer runs "composer install" or "composer update" in dir.
func (c *CLI) runComposer(ctx context.Context, dir string, opts solveOptions) error {
	action := "install"
	if opts.updatable {
		action = "update"
	}

	res, err := c.Executor.Run(ctx, process.Command{
		Dir:    dir,
		Name:   opts.composerBin,
		Args:   []string{action, "--no-interaction"},
		Stdout: c.Stdout,
		Stderr: c.Stderr,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return errors.Wrap(errors.ErrCodeProcessFailed,
			&errors.ExitError{Command: opts.composerBin + " " + action, ExitCode: res.ExitCode},
			"composer %s failed", action)
	}
	return nil
}
