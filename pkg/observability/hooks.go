// Package observability provides hooks into the solve workflow.
//
// This package lets embedders watch or extend a solve without foxy depending
// on their code. Hooks are registered once at startup; library packages call
// them at fixed points of the workflow.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the registry never
// imports the packages that call it. Solve payloads that callers may edit are
// passed through the small [AssetSet] interface for the same reason.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSolveHooks(&mySolveHooks{})
//	    observability.SetManagerHooks(&myManagerHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Solve().OnPreSolve(ctx, runID, assetDir, len(packages))
//	// ... stage mock packages ...
//	observability.Solve().OnGetAssets(ctx, runID, assetDir, assets)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Solve Hooks
// =============================================================================

// AssetSet is the ordered set of asset dependencies collected by a solve,
// keyed by asset package name with the relative path of its package.json as
// value. Hooks may add, replace or remove entries before they are merged into
// the root manifest.
type AssetSet interface {
	Names() []string
	Get(name string) (string, bool)
	Set(name, path string)
	Delete(name string)
}

// SolveHooks receives events from the solve workflow.
type SolveHooks interface {
	// OnPreSolve runs before the asset directory is wiped.
	OnPreSolve(ctx context.Context, runID, assetDir string, packages int)

	// OnGetAssets runs after mock packages are staged and may edit assets.
	OnGetAssets(ctx context.Context, runID, assetDir string, assets AssetSet)

	// OnPostSolve runs after the asset manager returned.
	OnPostSolve(ctx context.Context, runID, assetDir string, exitCode int, duration time.Duration, err error)
}

// =============================================================================
// Manager Hooks
// =============================================================================

// ManagerHooks receives events from asset manager invocations.
type ManagerHooks interface {
	// OnCommand records a command about to run.
	OnCommand(ctx context.Context, manager, action, cmdline string)

	// OnExit records the outcome of a command.
	OnExit(ctx context.Context, manager, action string, exitCode int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSolveHooks is a no-op implementation of SolveHooks.
type NoopSolveHooks struct{}

func (NoopSolveHooks) OnPreSolve(context.Context, string, string, int)       {}
func (NoopSolveHooks) OnGetAssets(context.Context, string, string, AssetSet) {}
func (NoopSolveHooks) OnPostSolve(context.Context, string, string, int, time.Duration, error) {
}

// NoopManagerHooks is a no-op implementation of ManagerHooks.
type NoopManagerHooks struct{}

func (NoopManagerHooks) OnCommand(context.Context, string, string, string) {}
func (NoopManagerHooks) OnExit(context.Context, string, string, int, time.Duration, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	solveHooks   SolveHooks   = NoopSolveHooks{}
	managerHooks ManagerHooks = NoopManagerHooks{}
	hooksMu      sync.RWMutex
)

// SetSolveHooks registers custom solve hooks.
// This should be called once at application startup before any solve.
func SetSolveHooks(h SolveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		solveHooks = h
	}
}

// SetManagerHooks registers custom asset manager hooks.
func SetManagerHooks(h ManagerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		managerHooks = h
	}
}

// Solve returns the registered solve hooks.
func Solve() SolveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return solveHooks
}

// Manager returns the registered asset manager hooks.
func Manager() ManagerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return managerHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	solveHooks = NoopSolveHooks{}
	managerHooks = NoopManagerHooks{}
}
