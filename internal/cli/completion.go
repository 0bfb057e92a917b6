package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foxy/pkg/asset"
)

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for foxy. Asset manager names are
completed for --manager.

Bash:
  $ source <(foxy completion bash)

Zsh:
  $ foxy completion zsh > "${fpath[1]}/_foxy"

Fish:
  $ foxy completion fish > ~/.config/fish/completions/foxy.fish

PowerShell:
  PS> foxy completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// addManagerFlag registers --manager/-m on cmd with completion of the
// supported asset managers.
func addManagerFlag(cmd *cobra.Command, target *string, usage string) {
	cmd.Flags().StringVarP(target, "manager", "m", "", usage)
	_ = cmd.RegisterFlagCompletionFunc("manager", completeManagers)
}

// completeManagers lists the asset managers with their lock file as
// description.
func completeManagers(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	variants := asset.Variants()
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = fmt.Sprintf("%s\tuses %s", v.Name(), v.LockFile())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
