package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foxy/internal/cli"
	foxyerrors "github.com/matzehuels/foxy/pkg/errors"
	"github.com/matzehuels/foxy/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	hooks := cli.NewLogHooks(c.Logger)
	observability.SetSolveHooks(hooks)
	observability.SetManagerHooks(hooks)

	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := cli.LogInfo
		if verbose {
			level = cli.LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// exitCode passes the status of a failed asset manager through.
func exitCode(err error) int {
	var exit *foxyerrors.ExitError
	if errors.As(err, &exit) && exit.ExitCode > 0 {
		return exit.ExitCode
	}
	return 1
}
