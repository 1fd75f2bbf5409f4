package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRead marks failures reading the source file.
	ErrRead = errors.New("read failure")
	// ErrWrite marks failures writing the processed sibling.
	ErrWrite = errors.New("write failure")
	// ErrRelocate marks failures moving files into the output directory.
	ErrRelocate = errors.New("relocation failure")
	// ErrMetadata marks failures creating or updating the metadata record.
	ErrMetadata = errors.New("metadata failure")
)

// Wrap builds an error message that includes step context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above; a nil marker leaves the error
// untagged and Kind reports it as internal.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		if err != nil {
			return fmt.Errorf("%s: %w", detail, err)
		}
		return errors.New(detail)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps a wrapped step error back to its taxonomy label for logs and
// journal rows.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRead):
		return "read"
	case errors.Is(err, ErrWrite):
		return "write"
	case errors.Is(err, ErrRelocate):
		return "relocate"
	case errors.Is(err, ErrMetadata):
		return "metadata"
	default:
		return "internal"
	}
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "step failure"
	}
	return strings.Join(parts, ": ")
}
