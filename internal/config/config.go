package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the immutable bootstrap policy: mirrors, archive naming, the
// installation profile, candidate roots, and fallback behaviour. It is
// resolved once per invocation and passed through the pipeline.
type Config struct {
	Mirror        string `yaml:"mirror"`
	ArchiveMirror string `yaml:"archive_mirror"`
	ArchiveName   string `yaml:"archive_name"`
	CacheBuster   string `yaml:"cache_buster"`

	// Profile is the installer profile file handed to install-tl. The
	// bootstrap only requires that it exists; its contents belong to the
	// vendor installer.
	Profile string `yaml:"profile"`

	// Checksum is the expected sha256 of the installer archive. Empty skips
	// verification.
	Checksum string `yaml:"checksum"`

	InstallRoots []string `yaml:"install_roots"`
	LinkDir      string   `yaml:"link_dir"`
	EntryPoint   string   `yaml:"entry_point"`
	PathTool     string   `yaml:"path_tool"`

	FetchRetries    int `yaml:"fetch_retries"`
	FetchRetryWaitS int `yaml:"fetch_retry_wait_s"`

	ScanRoot  string `yaml:"scan_root"`
	ScanDepth int    `yaml:"scan_depth"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Mirror:          "https://mirror.ctan.org/systems/texlive/tlnet",
		ArchiveMirror:   "https://ftp.math.utah.edu/pub/tex/historic/systems/texlive",
		ArchiveName:     "install-tl-unx.tar.gz",
		CacheBuster:     "0",
		Profile:         "texlive.profile",
		InstallRoots:    []string{"/usr/local/texlive", "/opt/texlive"},
		LinkDir:         "/usr/local/bin",
		EntryPoint:      "tex",
		PathTool:        "tlmgr",
		FetchRetries:    3,
		FetchRetryWaitS: 2,
		ScanRoot:        "/",
		ScanDepth:       6,
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures fields fall back to the baseline when the YAML omits
// them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Mirror == "" {
		c.Mirror = defaults.Mirror
	}
	if c.ArchiveMirror == "" {
		c.ArchiveMirror = defaults.ArchiveMirror
	}
	if c.ArchiveName == "" {
		c.ArchiveName = defaults.ArchiveName
	}
	if c.CacheBuster == "" {
		c.CacheBuster = defaults.CacheBuster
	}
	if c.Profile == "" {
		c.Profile = defaults.Profile
	}
	if len(c.InstallRoots) == 0 {
		c.InstallRoots = append([]string{}, defaults.InstallRoots...)
	}
	if c.LinkDir == "" {
		c.LinkDir = defaults.LinkDir
	}
	if c.EntryPoint == "" {
		c.EntryPoint = defaults.EntryPoint
	}
	if c.PathTool == "" {
		c.PathTool = defaults.PathTool
	}
	// Load unmarshals over the defaults, so a zero here is an explicit
	// setting (single-attempt fetch, no pause); only negatives fall back.
	if c.FetchRetries < 0 {
		c.FetchRetries = defaults.FetchRetries
	}
	if c.FetchRetryWaitS < 0 {
		c.FetchRetryWaitS = defaults.FetchRetryWaitS
	}
	if c.ScanRoot == "" {
		c.ScanRoot = defaults.ScanRoot
	}
	if c.ScanDepth <= 0 {
		c.ScanDepth = defaults.ScanDepth
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
