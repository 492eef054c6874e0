package config

import "os"

// Environment variables recognised for parity with the original container
// build scripts. Applied after the YAML layer and before flags.
const (
	EnvMirror        = "TL_MIRROR"
	EnvArchiveMirror = "TL_ARCHIVE_MIRROR"
	EnvArchiveName   = "TL_INSTALL_ARCHIVE"
	EnvCacheBuster   = "TL_CACHE_BUSTER"
	EnvProfile       = "TL_PROFILE"
	EnvWorkdir       = "TL_WORKDIR"
	EnvChecksum      = "TL_CHECKSUM"
	EnvInstallRoot   = "TL_INSTALL_ROOT"
	EnvLinkDir       = "TL_LINK_DIR"
)

// ApplyEnv overrides configuration fields from the environment. An install
// root override is prepended so it is searched before the built-in roots.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvMirror); v != "" {
		c.Mirror = v
	}
	if v := os.Getenv(EnvArchiveMirror); v != "" {
		c.ArchiveMirror = v
	}
	if v := os.Getenv(EnvArchiveName); v != "" {
		c.ArchiveName = v
	}
	if v := os.Getenv(EnvCacheBuster); v != "" {
		c.CacheBuster = v
	}
	if v := os.Getenv(EnvProfile); v != "" {
		c.Profile = v
	}
	if v := os.Getenv(EnvChecksum); v != "" {
		c.Checksum = v
	}
	if v := os.Getenv(EnvLinkDir); v != "" {
		c.LinkDir = v
	}
	if v := os.Getenv(EnvInstallRoot); v != "" {
		c.InstallRoots = append([]string{v}, c.InstallRoots...)
	}
}

// WorkdirFromEnv returns the workdir override, if any.
func WorkdirFromEnv() string {
	return os.Getenv(EnvWorkdir)
}
