package asset

import (
	"github.com/Masterminds/semver/v3"
)

// Variant describes the command line of one asset manager.
type Variant interface {
	// Name is the manager name and its default binary.
	Name() string

	// LockFile is the lock file the manager writes next to package.json.
	LockFile() string

	VersionArgs() []string
	InstallArgs(version string) []string
	UpdateArgs(version string) []string
}

// lockedVariant is implemented by variants that only count as installed
// once their lock file exists.
type lockedVariant interface {
	requiresLockFile()
}

// checkedVariant is implemented by variants that must pass a check command
// before an update. CheckArgs returns nil when no check is needed.
type checkedVariant interface {
	CheckArgs(version string) []string
}

// reinstallingVariant is implemented by variants that do not pick up
// changes of a file: dependency already in node_modules. Such dependencies
// are removed from node_modules before the manager runs.
type reinstallingVariant interface {
	reinstallsExisting()
}

// Variants returns all supported asset managers, in detection order.
func Variants() []Variant {
	return []Variant{Npm{}, Pnpm{}, Yarn{}, Bun{}}
}

// LookupVariant returns the variant called name.
func LookupVariant(name string) (Variant, bool) {
	for _, v := range Variants() {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}

// Npm is the npm asset manager.
type Npm struct{}

func (Npm) Name() string                { return "npm" }
func (Npm) LockFile() string            { return "package-lock.json" }
func (Npm) VersionArgs() []string       { return []string{"--version"} }
func (Npm) InstallArgs(string) []string { return []string{"install"} }
func (Npm) UpdateArgs(string) []string  { return []string{"update"} }
func (Npm) reinstallsExisting()         {}

// Pnpm is the pnpm asset manager.
type Pnpm struct{}

func (Pnpm) Name() string                { return "pnpm" }
func (Pnpm) LockFile() string            { return "pnpm-lock.yaml" }
func (Pnpm) VersionArgs() []string       { return []string{"--version"} }
func (Pnpm) InstallArgs(string) []string { return []string{"install"} }
func (Pnpm) UpdateArgs(string) []string  { return []string{"update"} }
func (Pnpm) requiresLockFile()           {}

// Bun is the bun asset manager.
type Bun struct{}

func (Bun) Name() string                { return "bun" }
func (Bun) LockFile() string            { return "bun.lockb" }
func (Bun) VersionArgs() []string       { return []string{"--version"} }
func (Bun) InstallArgs(string) []string { return []string{"install"} }
func (Bun) UpdateArgs(string) []string  { return []string{"update"} }
func (Bun) requiresLockFile()           {}

// Yarn is the yarn asset manager. Yarn 2 and later ("berry") renamed
// upgrade to up and dropped --non-interactive and check.
type Yarn struct{}

func (Yarn) Name() string          { return "yarn" }
func (Yarn) LockFile() string      { return "yarn.lock" }
func (Yarn) VersionArgs() []string { return []string{"--version"} }
func (Yarn) requiresLockFile()     {}

func (Yarn) InstallArgs(version string) []string {
	return interactive([]string{"install"}, version)
}

func (Yarn) UpdateArgs(version string) []string {
	if isYarnBerry(version) {
		return []string{"up"}
	}
	return interactive([]string{"upgrade"}, version)
}

func (Yarn) CheckArgs(version string) []string {
	if isYarnBerry(version) {
		return nil
	}
	return interactive([]string{"check"}, version)
}

func interactive(args []string, version string) []string {
	if isYarnBerry(version) {
		return args
	}
	return append(args, "--non-interactive")
}

var yarnBerry = semver.MustParse("2.0.0")

// isYarnBerry reports whether version is yarn 2 or later. Unknown versions
// count as yarn 1.
func isYarnBerry(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return !v.LessThan(yarnBerry)
}
