package queue

import (
	"path/filepath"
	"strings"
)

// ProcessedSuffix replaces the input extension on the sibling that receives
// the transformed content.
const ProcessedSuffix = ".processed"

// MetadataSuffix is appended to the full input name to derive the status
// record sibling.
const MetadataSuffix = ".meta"

// ProcessedPath returns the sibling path that receives the transformed
// content for the input at path.
func ProcessedPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ProcessedSuffix
}

// MetadataPath returns the sibling path holding the status record for the
// input at path.
func MetadataPath(path string) string {
	return path + MetadataSuffix
}
