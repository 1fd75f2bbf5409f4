package transform

import (
	"fmt"
	"os"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Upper returns the Unicode-aware uppercase form of content.
func Upper(content []byte) []byte {
	return cases.Upper(language.Und).Bytes(content)
}

// WriteFileAtomic writes data to path via a temp sibling and rename, so the
// destination never holds a partial write.
func WriteFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
