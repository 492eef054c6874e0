package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "tlboot.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	if cfg.Mirror != want.Mirror {
		t.Fatalf("mirror = %q, want %q", cfg.Mirror, want.Mirror)
	}
	if cfg.ArchiveName != want.ArchiveName {
		t.Fatalf("archive name = %q, want %q", cfg.ArchiveName, want.ArchiveName)
	}
	if len(cfg.InstallRoots) != 2 {
		t.Fatalf("install roots = %v", cfg.InstallRoots)
	}
	if cfg.FetchRetries != want.FetchRetries {
		t.Fatalf("fetch retries = %d", cfg.FetchRetries)
	}
}

func TestLoadAppliesDefaultsToPartialYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tlboot.yaml")
	contents := "mirror: https://mirror.internal/tlnet\nlink_dir: /opt/bin\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mirror != "https://mirror.internal/tlnet" {
		t.Fatalf("mirror = %q", cfg.Mirror)
	}
	if cfg.LinkDir != "/opt/bin" {
		t.Fatalf("link dir = %q", cfg.LinkDir)
	}
	if cfg.EntryPoint != "tex" {
		t.Fatalf("entry point = %q, want default", cfg.EntryPoint)
	}
	if cfg.PathTool != "tlmgr" {
		t.Fatalf("path tool = %q, want default", cfg.PathTool)
	}
}

func TestLoadAllowsZeroRetries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tlboot.yaml")
	contents := "fetch_retries: 0\nfetch_retry_wait_s: 0\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FetchRetries != 0 {
		t.Fatalf("fetch retries = %d, want explicit 0 preserved", cfg.FetchRetries)
	}
	if cfg.FetchRetryWaitS != 0 {
		t.Fatalf("fetch retry wait = %d, want explicit 0 preserved", cfg.FetchRetryWaitS)
	}
}

func TestLoadNegativeRetriesFallBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tlboot.yaml")
	if err := os.WriteFile(path, []byte("fetch_retries: -1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FetchRetries != Default().FetchRetries {
		t.Fatalf("fetch retries = %d, want default", cfg.FetchRetries)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tlboot.yaml")
	if err := os.WriteFile(path, []byte("mirror: [broken\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted malformed yaml")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvMirror, "https://env.example/tlnet")
	t.Setenv(EnvChecksum, "abc123")
	t.Setenv(EnvInstallRoot, "/srv/texlive")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Mirror != "https://env.example/tlnet" {
		t.Fatalf("mirror = %q", cfg.Mirror)
	}
	if cfg.Checksum != "abc123" {
		t.Fatalf("checksum = %q", cfg.Checksum)
	}
	if cfg.InstallRoots[0] != "/srv/texlive" {
		t.Fatalf("install roots = %v, want env root first", cfg.InstallRoots)
	}
	if len(cfg.InstallRoots) != 3 {
		t.Fatalf("install roots = %v, want env root prepended to defaults", cfg.InstallRoots)
	}
}

func TestApplyEnvLeavesUnsetFields(t *testing.T) {
	t.Setenv(EnvMirror, "")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Mirror != Default().Mirror {
		t.Fatalf("mirror = %q, want default preserved", cfg.Mirror)
	}
}
