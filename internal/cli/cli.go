// Package cli implements the foxy command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/foxy/pkg/buildinfo"
	"github.com/matzehuels/foxy/pkg/config"
	"github.com/matzehuels/foxy/pkg/process"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "foxy"

	// defaultComposerBin is the Composer binary used by --composer runs and
	// the Composer fallback.
	defaultComposerBin = "composer"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger   *log.Logger
	Executor process.Executor
	Env      config.Env // Nil means the process environment
	Stdout   io.Writer  // Output of the asset manager and Composer
	Stderr   io.Writer

	workDir string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	logger := newLogger(w, level)
	return &CLI{
		Logger:   logger,
		Executor: process.NewExecutor(logger),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Foxy installs the assets of Composer packages with npm, pnpm, yarn or bun",
		Long:         `Foxy merges the package.json of every Composer package that ships assets into the project's package.json and runs the JavaScript asset manager, so PHP and JavaScript dependencies are installed in one step.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.workDir, "working-dir", "d", ".", "project directory holding composer.json")

	// Register all subcommands
	root.AddCommand(c.installCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// versionCommand creates the version command.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), appName+" "+buildinfo.String())
			return err
		},
	}
}

// env returns the environment snapshot used for configuration.
func (c *CLI) env() config.Env {
	if c.Env != nil {
		return c.Env
	}
	return config.OSEnv()
}
