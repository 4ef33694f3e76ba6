// Package stringutil provides string sanitization helpers.
package stringutil

import (
	"regexp"
	"strings"
)

// maxFileNameLength bounds sanitized names so job display names of any
// length produce a filesystem-safe file name.
const maxFileNameLength = 120

// fileNameUnsafePattern matches runs of characters that are not safe in
// file names. Word characters, dots and dashes are kept; everything else
// (spaces, slashes, unicode punctuation) collapses to a single underscore.
var fileNameUnsafePattern = regexp.MustCompile(`[^\w.-]+`)

// SanitizeFileName converts an arbitrary display name into a
// filesystem-safe name bounded to 120 characters. Returns the empty
// string when nothing safe remains; callers are expected to substitute
// their own default.
//
// Examples:
//
//	SanitizeFileName("build / test (ubuntu)")  // returns "build_test_ubuntu"
//	SanitizeFileName("lint")                   // returns "lint"
//	SanitizeFileName("🎉🎉")                    // returns ""
func SanitizeFileName(name string) string {
	sanitized := fileNameUnsafePattern.ReplaceAllString(strings.TrimSpace(name), "_")
	sanitized = strings.Trim(sanitized, "_")
	if len(sanitized) > maxFileNameLength {
		sanitized = sanitized[:maxFileNameLength]
	}
	return sanitized
}
