package kioskcontent

import (
	"path"
	"regexp"
	"strings"
)

// allowedExtensions is the set of upload extensions every asset store
// accepts, compared case-insensitively.
var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"pdf":  {},
	"svg":  {},
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// AllowedFile reports whether the filename carries an allowed extension.
func AllowedFile(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(name[idx+1:])]
	return ok
}

// SanitizeFilename reduces a client-supplied filename to a filesystem-safe
// stored name: path components are stripped, anything outside
// [A-Za-z0-9_.-] becomes an underscore, and leading dots and dashes are
// trimmed so the result can never escape the store root or hide as a
// dotfile. Two different inputs may sanitize to the same stored name; the
// store overwrites on collision. Trimming can strip the extension of a
// name like ".png", so stores validate the sanitized name, not the input.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".-")
	return name
}

// BaseTitle derives the default attachment title from an uploaded filename:
// the base name with its extension stripped.
func BaseTitle(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name
}
