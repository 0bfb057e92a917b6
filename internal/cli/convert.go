package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foxy/pkg/semver"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var showInput bool

	cmd := &cobra.Command{
		Use:   "convert <version>...",
		Short: "Convert npm semver ranges to Composer constraints",
		Example: `  foxy convert "^1.2.3" "1.0.0 - 2.0.0" "1.x || >=2.5.0"
  foxy convert --show-input "~1.2.0-beta.1"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := semver.NewConverter()
			out := cmd.OutOrStdout()
			for _, v := range args {
				converted := conv.Convert(v)
				if showInput {
					fmt.Fprintf(out, "%s\t%s\n", v, converted)
					continue
				}
				fmt.Fprintln(out, converted)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showInput, "show-input", false, "print each input next to its conversion")
	return cmd
}
