package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/foxy/pkg/config"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var manager string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that the asset manager is installed in a supported version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := c.loadProject(ctx)
			if err != nil {
				return err
			}

			spinner := c.newSpinner(ctx, "Detecting asset manager...")
			spinner.Start()
			m, err := c.findManager(ctx, p, manager)
			if err != nil {
				spinner.StopWithError("No usable asset manager")
				return err
			}
			spinner.SetMessage("Checking %s version...", m.Name())
			if err := m.Validate(ctx); err != nil {
				spinner.StopWithError("Invalid asset manager %s", m.Name())
				return err
			}

			version, _ := m.Version(ctx)
			constraint := p.cfg.WithManager(m.Name()).String(config.KeyManagerVersion, "")
			if m.IsInstalled() {
				spinner.StopWithSuccess("%s %s is valid", m.Name(), version)
			} else {
				spinner.StopWithWarning("%s %s is valid, assets are not installed yet", m.Name(), version)
			}
			printKeyValue("constraint", orNone(constraint))
			printKeyValue("directory", m.PackageDir())
			printKeyValue("lock file", yesNo(m.HasLockFile()))
			printKeyValue("installed", yesNo(m.IsInstalled()))
			return nil
		},
	}

	addManagerFlag(cmd, &manager, "asset manager to check (npm, pnpm, yarn, bun)")
	return cmd
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
