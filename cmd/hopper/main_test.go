package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"hopper/internal/config"
	"hopper/internal/journal"
)

func writeTestConfig(t *testing.T) (string, *config.Config) {
	t.Helper()

	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
input_dir = %q
output_dir = %q
log_dir = %q

[processing]
workers = 2
poll_timeout_ms = 50
`,
		filepath.Join(base, "input"),
		filepath.Join(base, "processed"),
		filepath.Join(base, "logs"),
	)

	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return configPath, cfg
}

func runCLI(t *testing.T, configPath string, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	out, _, err := runCLI(t, configPath, []string{"config", "validate"})
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+configPath)
	requireContains(t, out, "Configuration valid")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, configPath, []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, configPath, []string{"config", "init", "--path", target}); err == nil {
		t.Fatal("expected init over existing file to fail without --overwrite")
	}

	if _, _, err := runCLI(t, configPath, []string{"config", "init", "--path", target, "--overwrite"}); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestGenerateWritesFiles(t *testing.T) {
	configPath, cfg := writeTestConfig(t)

	out, _, err := runCLI(t, configPath, []string{"generate", "3"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	requireContains(t, out, "Created 3 test files in "+cfg.Paths.InputDir)

	entries, err := os.ReadDir(cfg.Paths.InputDir)
	if err != nil {
		t.Fatalf("read input dir: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 files in input dir, found %d", len(entries))
	}
	namePattern := regexp.MustCompile(`^test_\d+_\d+\.txt$`)
	for _, entry := range entries {
		if !namePattern.MatchString(entry.Name()) {
			t.Fatalf("unexpected generated file name %q", entry.Name())
		}
	}
}

func TestGenerateRejectsInvalidCount(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	_, _, err := runCLI(t, configPath, []string{"generate", "nope"})
	if err == nil {
		t.Fatal("expected invalid count to fail")
	}
	requireContains(t, err.Error(), `invalid count "nope"`)
}

func TestJournalListAndClearCommands(t *testing.T) {
	configPath, cfg := writeTestConfig(t)
	ctx := context.Background()

	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	aPath := filepath.Join(cfg.Paths.InputDir, "a.txt")
	bPath := filepath.Join(cfg.Paths.InputDir, "b.txt")
	if _, err := store.RecordDiscovered(ctx, aPath); err != nil {
		t.Fatalf("record a.txt: %v", err)
	}
	if _, err := store.RecordDiscovered(ctx, bPath); err != nil {
		t.Fatalf("record b.txt: %v", err)
	}
	if err := store.MarkFailed(ctx, bPath, "simulated failure"); err != nil {
		t.Fatalf("mark b.txt failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close journal: %v", err)
	}

	out, _, err := runCLI(t, configPath, []string{"journal", "list"})
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	requireContains(t, out, "a.txt")
	requireContains(t, out, "b.txt")
	requireContains(t, out, "failed")
	requireContains(t, out, "simulated failure")

	out, _, err = runCLI(t, configPath, []string{"journal", "list", "--status", "failed"})
	if err != nil {
		t.Fatalf("journal list --status failed: %v", err)
	}
	requireContains(t, out, "b.txt")
	if strings.Contains(out, "a.txt") {
		t.Fatalf("status filter leaked pending entry:\n%s", out)
	}

	_, _, err = runCLI(t, configPath, []string{"journal", "list", "--status", "bogus"})
	if err == nil {
		t.Fatal("expected unknown status to fail")
	}
	requireContains(t, err.Error(), `unknown status "bogus"`)

	out, _, err = runCLI(t, configPath, []string{"journal", "clear", "--failed"})
	if err != nil {
		t.Fatalf("journal clear --failed: %v", err)
	}
	requireContains(t, out, "Removed 1 failed entries")

	out, _, err = runCLI(t, configPath, []string{"journal", "list"})
	if err != nil {
		t.Fatalf("journal list after clear: %v", err)
	}
	requireContains(t, out, "a.txt")
	if strings.Contains(out, "b.txt") {
		t.Fatalf("cleared entry still listed:\n%s", out)
	}

	_, _, err = runCLI(t, configPath, []string{"journal", "clear", "--failed", "--completed"})
	if err == nil {
		t.Fatal("expected mutually exclusive flags to fail")
	}

	out, _, err = runCLI(t, configPath, []string{"journal", "clear"})
	if err != nil {
		t.Fatalf("journal clear: %v", err)
	}
	requireContains(t, out, "Removed 1 entries")

	out, _, err = runCLI(t, configPath, []string{"journal", "list"})
	if err != nil {
		t.Fatalf("journal list on empty journal: %v", err)
	}
	requireContains(t, out, "Journal is empty")
}

func TestStatusReportsStoppedDaemon(t *testing.T) {
	configPath, cfg := writeTestConfig(t)

	out, _, err := runCLI(t, configPath, []string{"status"})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Daemon:            not running")
	requireContains(t, out, "Input directory:   "+cfg.Paths.InputDir)
	requireContains(t, out, "Metrics endpoint:  disabled")
	requireContains(t, out, "STATUS")
	requireContains(t, out, "total")
}
