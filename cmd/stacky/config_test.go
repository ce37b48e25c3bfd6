package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Test helpers.

// hermeticEnv points XDG_CONFIG_HOME at an empty directory so a
// developer's real global config never leaks into a test.
func hermeticEnv(t *testing.T) []string {
	t.Helper()

	return []string{"XDG_CONFIG_HOME=" + t.TempDir()}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	dir := filepath.Dir(path)

	err := os.MkdirAll(dir, 0o750)
	if err != nil {
		t.Fatalf("failed to create dir %s: %v", dir, err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// Tests for defaults and file loading.

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, sources, err := LoadConfig(dir, "", Config{}, false, hermeticEnv(t))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Prompt != "stacky" {
		t.Errorf("Prompt = %q, want %q", cfg.Prompt, "stacky")
	}

	if cfg.DefaultHandle != "main" {
		t.Errorf("DefaultHandle = %q, want %q", cfg.DefaultHandle, "main")
	}

	if sources.Global != "" || sources.Project != "" {
		t.Errorf("sources = %+v, want none", sources)
	}
}

func TestLoadConfig_ProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{"prompt": "work", "default_handle": "scratch"}`)

	cfg, sources, err := LoadConfig(dir, "", Config{}, false, hermeticEnv(t))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Prompt != "work" {
		t.Errorf("Prompt = %q, want %q", cfg.Prompt, "work")
	}

	if cfg.DefaultHandle != "scratch" {
		t.Errorf("DefaultHandle = %q, want %q", cfg.DefaultHandle, "scratch")
	}

	if sources.Project != filepath.Join(dir, ConfigFileName) {
		t.Errorf("sources.Project = %q, want project file path", sources.Project)
	}
}

func TestLoadConfig_ProjectFileWithComments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{
		// Session defaults for this project.
		"prompt": "demo",
	}`)

	cfg, _, err := LoadConfig(dir, "", Config{}, false, hermeticEnv(t))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Prompt != "demo" {
		t.Errorf("Prompt = %q, want %q", cfg.Prompt, "demo")
	}
}

func TestLoadConfig_PartialFileKeepsOtherDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{"history_file": "/tmp/h"}`)

	cfg, _, err := LoadConfig(dir, "", Config{}, false, hermeticEnv(t))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.HistoryFile != "/tmp/h" {
		t.Errorf("HistoryFile = %q, want %q", cfg.HistoryFile, "/tmp/h")
	}

	if cfg.Prompt != "stacky" {
		t.Errorf("Prompt = %q, want default %q", cfg.Prompt, "stacky")
	}

	if cfg.DefaultHandle != "main" {
		t.Errorf("DefaultHandle = %q, want default %q", cfg.DefaultHandle, "main")
	}
}

func TestLoadConfig_GlobalFile(t *testing.T) {
	t.Parallel()

	xdgDir := t.TempDir()
	writeFile(t, filepath.Join(xdgDir, "stacky", "config.json"), `{"prompt": "global"}`)

	dir := t.TempDir()

	cfg, sources, err := LoadConfig(dir, "", Config{}, false, []string{"XDG_CONFIG_HOME=" + xdgDir})
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Prompt != "global" {
		t.Errorf("Prompt = %q, want %q", cfg.Prompt, "global")
	}

	if sources.Global == "" {
		t.Error("sources.Global is empty, want global config path")
	}
}

// Tests for precedence.

func TestLoadConfig_ProjectOverridesGlobal(t *testing.T) {
	t.Parallel()

	xdgDir := t.TempDir()
	writeFile(t, filepath.Join(xdgDir, "stacky", "config.json"), `{"prompt": "global"}`)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{"prompt": "project"}`)

	cfg, _, err := LoadConfig(dir, "", Config{}, false, []string{"XDG_CONFIG_HOME=" + xdgDir})
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Prompt != "project" {
		t.Errorf("Prompt = %q, want %q", cfg.Prompt, "project")
	}
}

func TestLoadConfig_ExplicitFileReplacesProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{"prompt": "project"}`)
	writeFile(t, filepath.Join(dir, "explicit.json"), `{"prompt": "explicit"}`)

	cfg, sources, err := LoadConfig(dir, "explicit.json", Config{}, false, hermeticEnv(t))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Prompt != "explicit" {
		t.Errorf("Prompt = %q, want %q", cfg.Prompt, "explicit")
	}

	if sources.Project != filepath.Join(dir, "explicit.json") {
		t.Errorf("sources.Project = %q, want explicit file path", sources.Project)
	}
}

func TestLoadConfig_CLIOverridesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{"prompt": "from-file"}`)

	cfg, _, err := LoadConfig(dir, "", Config{Prompt: "from-cli"}, true, hermeticEnv(t))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Prompt != "from-cli" {
		t.Errorf("Prompt = %q, want %q", cfg.Prompt, "from-cli")
	}
}

// Tests for config errors.

func TestLoadConfig_ExplicitFileNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, _, err := LoadConfig(dir, "nonexistent.json", Config{}, false, hermeticEnv(t))
	if !errors.Is(err, errConfigFileNotFound) {
		t.Fatalf("LoadConfig() error = %v, want errConfigFileNotFound", err)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{invalid json}`)

	_, _, err := LoadConfig(dir, "", Config{}, false, hermeticEnv(t))
	if !errors.Is(err, errConfigInvalid) {
		t.Fatalf("LoadConfig() error = %v, want errConfigInvalid", err)
	}
}

func TestLoadConfig_ExplicitlyEmptyDefaultHandle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `{"default_handle": ""}`)

	_, _, err := LoadConfig(dir, "", Config{}, false, hermeticEnv(t))
	if !errors.Is(err, errDefaultHandleEmpty) {
		t.Fatalf("LoadConfig() error = %v, want errDefaultHandleEmpty", err)
	}
}

// Tests for formatting.

func TestFormatConfig_RendersSnakeCaseFields(t *testing.T) {
	t.Parallel()

	text, err := FormatConfig(DefaultConfig())
	if err != nil {
		t.Fatalf("FormatConfig() failed: %v", err)
	}

	if !strings.Contains(text, `"default_handle": "main"`) {
		t.Errorf("FormatConfig() = %q, want it to contain default_handle", text)
	}
}
