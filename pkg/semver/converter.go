// Package semver converts asset-ecosystem version strings into Composer
// version constraints.
//
// Asset managers report versions in npm's semver dialect ("1.2.3-beta.2",
// "v10.2.4", "1.x", "20170124.1.1"). Composer's constraint parser expects
// "1.2.3-beta2" style stabilities and has no notion of date versions with
// dotted minor parts, so every detected version is funnelled through a
// Converter before it is compared with the configured constraint.
//
// Conversion is total: any input produces some output and no error is ever
// returned. Unrecognised input comes back unchanged.
package semver

import (
	"strings"
)

// Converter converts an asset version into a Composer version.
type Converter interface {
	Convert(version string) string
}

// SemverConverter is the Converter for npm-style semantic versions.
type SemverConverter struct{}

// NewConverter returns the default Converter.
func NewConverter() Converter {
	return SemverConverter{}
}

// Convert converts version into a Composer-compatible version string.
//
// An empty version converts to "*" and the literal "latest" to
// "default || *". Otherwise a single leading lowercase letter (other than the
// "dev-" branch prefix) is set aside, the rest goes through date conversion,
// metadata conversion and wildcard collapsing, and the letter is put back.
func (SemverConverter) Convert(version string) string {
	switch version {
	case "":
		return "*"
	case "latest":
		return "default || *"
	}

	version = strings.ReplaceAll(version, "–", "-")

	prefix := ""
	if c := version[0]; c >= 'a' && c <= 'z' && !strings.HasPrefix(version, "dev-") {
		prefix = version[:1]
		version = version[1:]
	}

	version = ConvertDateVersion(version)
	version = ConvertVersionMetadata(version)
	version = CleanWildcard(version)

	return prefix + version
}

var _ Converter = SemverConverter{}
