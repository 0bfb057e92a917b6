// Package cli implements the foxy command-line interface.
//
// Foxy lets Composer packages ship JavaScript assets: their package.json files
// are mirrored as local packages, merged into the project's package.json and
// installed with npm, pnpm, yarn or bun. The CLI is built using cobra and
// logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - install, update: Merge the Composer asset packages and run the asset manager
//   - validate: Check the asset manager binary and its version constraint
//   - convert: Convert npm semver ranges to Composer constraints
//   - config get: Print a resolved configuration value
//   - init: Choose the asset manager and write foxy.toml
//   - version, completion: Build information and shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context; once an asset manager is chosen, entries
// carry a manager=<name> field.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger: timestamps as "15:04:05.00", debug
// entries only with --verbose.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step of a command, such as solving the assets, and
// logs it once finished.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time, rounded
// to the millisecond:
//
//	14:32:01.45 INFO Solved assets manager=npm elapsed=1.234s
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx. The root command does this for every
// subcommand, so fallbacks, the solver and the asset manager all log through
// the CLI's logger.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// withManager returns a context whose logger tags every entry with the
// asset manager in use.
func withManager(ctx context.Context, manager string) context.Context {
	return withLogger(ctx, loggerFromContext(ctx).With("manager", manager))
}
