package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"imgutil/internal/config"
	"imgutil/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	srcDir     string
	dstDir     string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("IMGUTIL_NTFY_TOPIC", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		srcDir:     filepath.Join(base, "src"),
		dstDir:     filepath.Join(base, "dst"),
	}
	if err := os.MkdirAll(env.srcDir, 0o755); err != nil {
		t.Fatalf("mkdir src: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[batch]
workers = %d

[history]
enabled = %t

[notifications]
ntfy_topic = %q

[logging]
level = "error"
`,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Batch.Workers,
		cfg.History.Enabled,
		cfg.Notifications.NtfyTopic,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) writeImages(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		testsupport.WriteImage(t, filepath.Join(e.srcDir, name), 40, 20)
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
