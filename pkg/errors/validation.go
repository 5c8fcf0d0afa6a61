package errors

import (
	"path/filepath"
	"strings"
)

// ValidateUploadFilename validates the filename of an uploaded tree.
// Only plain ".json" basenames are accepted, matching the file picker filter.
func ValidateUploadFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidFile, "upload filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\\x00") {
		return New(ErrCodeInvalidFile, "upload filename cannot contain path separators")
	}

	if !strings.EqualFold(filepath.Ext(filename), ".json") {
		return New(ErrCodeInvalidFile, "upload must be a .json file, got %q", filename)
	}

	return nil
}
