// Package pkg provides the libraries behind foxy, the bridge between
// Composer packages and JavaScript asset managers.
//
// # Overview
//
// Composer packages may ship a package.json. After Composer installed the PHP
// dependencies, foxy mirrors each of those manifests as a local "mock"
// package, references the mock packages from the project's package.json and
// runs npm, pnpm, yarn or bun. The pkg directory is organized into:
//
//  1. [solver] - The solve workflow tying everything together
//  2. [asset] - Root manifest merging, asset managers and their detection
//  3. [composer] - composer.json, installed.json and composer.lock models
//  4. [config] - Option merging and FOXY__* environment overrides
//  5. [semver] - npm semver range to Composer constraint conversion
//  6. [manifest] - Ordered JSON documents written in their original layout
//  7. [fallback] - Restoring package.json and Composer state after a failure
//  8. [process], [observability], [errors], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The data flow of one solve:
//
//	vendor/composer/installed.json
//	         ↓
//	    [composer] package (asset packages and their package.json)
//	         ↓
//	    [solver] package (mock packages under composer-asset-dir)
//	         ↓
//	    [asset] package (merge into package.json, run the asset manager)
//	         ↓
//	    node_modules + lock file
//
// # Quick Start
//
//	cfg, _ := config.Build(config.BuildOptions{ProjectDir: dir})
//	root, _ := composer.LoadRoot(dir)
//	m := asset.NewManager(asset.Npm{}, asset.Options{
//	    Config:   cfg,
//	    Executor: process.NewExecutor(nil),
//	    Dir:      dir,
//	})
//	err := solver.New(solver.Options{Config: cfg, Manager: m, Root: root, Dir: dir}).
//	    Solve(ctx, false)
package pkg
