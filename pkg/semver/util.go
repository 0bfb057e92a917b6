package semver

import (
	"regexp"
	"strings"
)

var (
	// numericCore matches one to three dot-separated numeric or wildcard segments.
	numericCore = `((?:[0-9]+|x|\*)|(?:[0-9]+|x|\*)\.(?:[0-9]+|x|\*)|(?:[0-9]+|x|\*)\.(?:[0-9]+|x|\*)\.(?:[0-9]+|x|\*))`

	metadataPattern  = regexp.MustCompile(`(?i)^` + numericCore + `([a-z]+|[-+][a-z]+|[-+][0-9]+)`)
	qualifierPattern = regexp.MustCompile(`[0-9]+\.[0-9]+|[0-9]+|\.[0-9]+$`)
	datePattern      = regexp.MustCompile(`^\d{7,}\.`)
	stabilityPattern = regexp.MustCompile(`^[a-z]+`)
)

// ConvertDateVersion rewrites date versions such as "20170124.1.1" into a
// single minor component ("20170124.001001") so Composer can order them.
// The minor and revision numbers are zero-padded to three digits each. A
// suffix trailing the last numeric part ("-beta") is kept.
func ConvertDateVersion(version string) string {
	if !datePattern.MatchString(version) {
		return version
	}

	major, tail, _ := strings.Cut(version, ".")
	minorPart, revisionPart, hasRevision := strings.Cut(tail, ".")

	minor, rest := leadingNumber(minorPart)
	revision := "000"
	if hasRevision {
		revision, rest = leadingNumber(revisionPart)
	}
	if strings.HasPrefix(rest, ".") {
		rest = ""
	}

	return major + "." + minor + revision + rest
}

// ConvertVersionMetadata converts npm prerelease and build metadata into a
// Composer stability suffix: "1.2.3-rc.2" becomes "1.2.3-RC.2" and
// "1.2.3+build2012" becomes "1.2.3-patch2012". Dev stabilities never carry a
// number; every other stability defaults to 1. Versions without metadata are
// returned unchanged.
func ConvertVersionMetadata(version string) string {
	m := metadataPattern.FindStringSubmatch(version)
	if m == nil {
		return version
	}

	core := m[1]
	end := strings.ToLower(version[len(core):])
	if strings.HasPrefix(end, "-") || strings.HasPrefix(end, "+") {
		end = end[1:]
	}

	raw := stabilityPattern.FindString(end)
	end = end[len(raw):]

	stability, numbered := matchStability(normalizeStability(raw))
	converted := core + "-" + stability

	if numbered {
		qualifier := qualifierPattern.FindString(end)
		if qualifier == "" {
			qualifier = "1"
		}
		converted += qualifier
	}

	return converted
}

// CleanWildcard collapses repeated wildcard segments: "1.x.x.x" becomes "1.x".
func CleanWildcard(version string) string {
	for strings.Contains(version, ".x.x") {
		version = strings.ReplaceAll(version, ".x.x", ".x")
	}
	return version
}

// normalizeStability maps a raw npm stability token to a Composer stability.
func normalizeStability(stability string) string {
	stability = strings.ToLower(stability)

	switch stability {
	case "a":
		return "alpha"
	case "b", "pre":
		return "beta"
	case "build":
		return "patch"
	case "rc":
		return "RC"
	case "dev", "snapshot":
		return "dev"
	default:
		return stability
	}
}

// matchStability narrows a normalized stability to the set Composer accepts
// and reports whether it takes a trailing number.
func matchStability(stability string) (string, bool) {
	switch stability {
	case "dev":
		return "dev", false
	case "alpha", "beta", "RC":
		return stability, true
	default:
		return "patch", true
	}
}

// leadingNumber splits s into its leading decimal number, zero-padded to at
// least three digits, and whatever follows it. A missing number counts as 0.
func leadingNumber(s string) (string, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}

	digits := strings.TrimLeft(s[:i], "0")
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}

	return digits, s[i:]
}
