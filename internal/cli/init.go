package cli

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/foxy/pkg/asset"
	"github.com/matzehuels/foxy/pkg/config"
	"github.com/matzehuels/foxy/pkg/errors"
)

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var manager string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Choose the asset manager of the project and write foxy.toml",
		Long: `Init records the asset manager of the project in foxy.toml. Without
--manager, an interactive list shows the installed managers and their
versions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir, err := filepath.Abs(c.workDir)
			if err != nil {
				return err
			}

			if manager == "" {
				item, err := c.pickManager(ctx, dir)
				if err != nil {
					return err
				}
				if item == nil {
					printInfo("No asset manager selected")
					return nil
				}
				manager = item.Name
			} else if _, ok := asset.LookupVariant(manager); !ok {
				return errors.New(errors.ErrCodeManagerNotFound, "the asset manager %q doesn't exist", manager)
			}

			path := filepath.Join(dir, config.ProjectFile)
			if err := config.SetProjectValue(path, config.KeyManager, manager); err != nil {
				return err
			}

			printSuccess("Using %s", StyleHighlight.Render(manager))
			printFile(path)
			printNextStep("Install the assets", "foxy install")
			return nil
		},
	}

	addManagerFlag(cmd, &manager, "asset manager to use (npm, pnpm, yarn, bun)")
	return cmd
}

// pickManager shows the asset manager picker and returns the selection, or
// nil when the user quit.
func (c *CLI) pickManager(ctx context.Context, dir string) (*ManagerItem, error) {
	items, err := c.managerItems(ctx, dir)
	if err != nil {
		return nil, err
	}

	final, err := tea.NewProgram(NewManagerListModel(items), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}
	model, ok := final.(ManagerListModel)
	if !ok {
		return nil, nil
	}
	return model.Selected, nil
}

// managerItems probes every supported asset manager in dir.
func (c *CLI) managerItems(ctx context.Context, dir string) ([]ManagerItem, error) {
	cfg, err := config.Build(config.BuildOptions{
		ProjectDir: dir,
		Env:        c.env(),
		Logger:     loggerFromContext(ctx),
	})
	if err != nil {
		return nil, err
	}

	spinner := c.newSpinner(ctx, "Looking for asset managers...")
	spinner.Start()

	managers := asset.Managers(asset.Options{
		Config:   cfg,
		Executor: c.Executor,
		Dir:      dir,
		Logger:   loggerFromContext(ctx),
	})
	items := make([]ManagerItem, len(managers))
	found := 0
	for i, m := range managers {
		spinner.SetMessage("Probing %s...", m.Name())
		version, _ := m.Version(ctx)
		items[i] = ManagerItem{Name: m.Name(), Version: version, LockFile: m.HasLockFile()}
		if version != "" {
			found++
		}
	}

	if found == 0 {
		spinner.StopWithWarning("No asset manager installed")
	} else {
		spinner.StopWithSuccess("Found %d of %d asset managers", found, len(items))
	}
	return items, nil
}
