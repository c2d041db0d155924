package utils

import (
	"regexp"
	"strings"

	"github.com/mrlokans/readlater/internal/entities"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns an entry title into a file name that is valid on
// common filesystems and safe to link from markdown notes.
func SanitizeFilename(filename string) string {
	// Remove invalid filename characters
	filename = invalidFilenameChars.ReplaceAllString(filename, "")

	// Replace newlines/tabs with spaces
	filename = whitespaceChars.ReplaceAllString(filename, " ")

	// Collapse multiple spaces
	filename = multipleSpaces.ReplaceAllString(filename, " ")

	// Trim whitespace
	filename = strings.TrimSpace(filename)

	// Characters with a meaning inside markdown links
	filename = strings.ReplaceAll(filename, "#", "")
	filename = strings.ReplaceAll(filename, "[", "(")
	filename = strings.ReplaceAll(filename, "]", ")")

	// Limit length (most filesystems support 255, but leave room for extension)
	if len(filename) > 200 {
		filename = strings.TrimSpace(filename[:200])
	}

	// Ensure it's not empty
	if filename == "" {
		filename = entities.UntitledPlaceholder
	}

	return filename
}
