package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/foxy/pkg/observability"
)

// LogHooks reports solve and asset manager events to a logger.
// Register it in main with observability.SetSolveHooks and
// observability.SetManagerHooks.
type LogHooks struct {
	logger *log.Logger
}

var (
	_ observability.SolveHooks   = (*LogHooks)(nil)
	_ observability.ManagerHooks = (*LogHooks)(nil)
)

// NewLogHooks returns hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnPreSolve(_ context.Context, runID, assetDir string, packages int) {
	h.logger.Debug("solve started", "run", shortID(runID), "packages", packages, "assets", assetDir)
}

func (h *LogHooks) OnGetAssets(_ context.Context, runID, _ string, assets observability.AssetSet) {
	h.logger.Debug("asset packages collected", "run", shortID(runID), "count", len(assets.Names()))
}

func (h *LogHooks) OnPostSolve(_ context.Context, runID, _ string, exitCode int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Warn("solve failed", "run", shortID(runID), "err", err)
		return
	}
	h.logger.Debug("solve finished", "run", shortID(runID), "code", exitCode, "duration", duration.Round(time.Millisecond))
}

func (h *LogHooks) OnCommand(_ context.Context, manager, action, cmdline string) {
	h.logger.Debug("running asset manager", "manager", manager, "action", action, "cmd", cmdline)
}

func (h *LogHooks) OnExit(_ context.Context, manager, action string, exitCode int, duration time.Duration, err error) {
	switch {
	case err != nil:
		h.logger.Error("asset manager failed", "manager", manager, "action", action, "err", err)
	case exitCode != 0:
		h.logger.Warn("asset manager exited", "manager", manager, "action", action, "code", exitCode)
	default:
		h.logger.Debug("asset manager finished", "manager", manager, "action", action, "duration", duration.Round(time.Millisecond))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
