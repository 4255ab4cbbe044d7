package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdfbench/pdfbench/pkg/constants"
)

// invalidFileNameChars matches characters that are unsafe in file names
// across the supported platforms.
var invalidFileNameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// SanitizeFileName creates a safe file name from an arbitrary base name:
// path components are stripped, invalid characters removed, spaces replaced
// with underscores, and the result truncated preserving the extension.
func SanitizeFileName(baseName string) string {
	baseName = filepath.Base(baseName)
	safe := invalidFileNameChars.ReplaceAllString(baseName, "")
	safe = strings.ReplaceAll(safe, " ", "_")

	if len(safe) > constants.MaxSafeFileNameLength {
		ext := filepath.Ext(safe)
		name := strings.TrimSuffix(safe, ext)
		keep := constants.MaxSafeFileNameLength - len(ext) - 1
		if keep < 1 {
			keep = 1
		}
		safe = name[:keep] + ext
	}
	return safe
}

// FileStem returns the base name of path without its extension.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, constants.DefaultDirPermission)
}

// TruncateString shortens s to at most max bytes, appending an ellipsis
// marker when truncation happened.
func TruncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
