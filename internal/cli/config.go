package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foxy/pkg/manifest"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved foxy configuration",
	}

	cmd.AddCommand(c.configGetCommand())

	return cmd
}

// configGetCommand creates the "config get" subcommand.
func (c *CLI) configGetCommand() *cobra.Command {
	var manager string

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the resolved value of a key as JSON",
		Long: `Print the value of a key after merging the global and project Composer
config, foxy.toml, the defaults and FOXY__* environment variables.

Keys holding one value per asset manager (manager-version, manager-bin, ...)
resolve for the configured manager, or for --manager when given.`,
		Example: `  foxy config get manager-version
  foxy config get manager-bin --manager yarn`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadProject(cmd.Context())
			if err != nil {
				return err
			}

			cfg := p.cfg
			if manager != "" {
				cfg = cfg.WithManager(manager)
			}

			data, err := manifest.Encode(cfg.Get(args[0]))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	addManagerFlag(cmd, &manager, "resolve manager-* keys for this asset manager")
	return cmd
}
