package transform_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hopper/internal/transform"
)

func TestUpper(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"ascii", "hello", "HELLO"},
		{"mixed", "Hello, World 42!", "HELLO, WORLD 42!"},
		{"already upper", "HELLO", "HELLO"},
		{"empty", "", ""},
		{"sharp s expands", "straße", "STRASSE"},
		{"accented", "école", "ÉCOLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := string(transform.Upper([]byte(tc.in))); got != tc.want {
				t.Fatalf("Upper(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.processed")

	if err := transform.WriteFileAtomic(path, []byte("HELLO")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "HELLO" {
		t.Fatalf("output content = %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("leftover temp file %q", entry.Name())
		}
	}
}

func TestWriteFileAtomicOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.processed")
	if err := os.WriteFile(path, []byte("OLD"), 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}

	if err := transform.WriteFileAtomic(path, []byte("NEW")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "NEW" {
		t.Fatalf("output content = %q", got)
	}
}

func TestWriteFileAtomicMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "a.processed")
	if err := transform.WriteFileAtomic(path, []byte("X")); err == nil {
		t.Fatal("expected error when parent directory does not exist")
	}
}
