package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// Package names become directories under the composer asset directory, so
// anything that could escape it is rejected:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// composerPackageNameRegex matches "vendor/name" Composer package names.
var composerPackageNameRegex = regexp.MustCompile(`^[a-z0-9]([_.-]?[a-z0-9]+)*/[a-z0-9](([_.]|-{1,2})?[a-z0-9]+)*$`)

// ValidateComposerPackageName validates a Composer "vendor/name" package name.
func ValidateComposerPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !composerPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid Composer package name: %q", name)
	}

	return nil
}

// ValidatePath validates a slash-separated path relative to the project.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No ".." segments
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
