package cli

import (
	"github.com/spf13/cobra"

	"tlboot/internal/config"
)

var (
	mirrorFlag        string
	archiveMirrorFlag string
	archiveNameFlag   string
	cacheBusterFlag   string
	checksumFlag      string
	profileFlag       string
	linkDirFlag       string
	installRootsFlag  []string
	entryPointFlag    string
)

// bindSourceFlags registers the flags shared by every command that resolves a
// release source.
func bindSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mirrorFlag, "mirror", "", "Mirror for the current release")
	cmd.Flags().StringVar(&archiveMirrorFlag, "archive-mirror", "", "Mirror for historic releases")
	cmd.Flags().StringVar(&archiveNameFlag, "archive-name", "", "Installer archive filename")
	cmd.Flags().StringVar(&cacheBusterFlag, "cache-buster", "", "Token appended to download URLs to bypass layered build caches")
	cmd.Flags().StringVar(&checksumFlag, "checksum", "", "Expected sha256 of the installer archive (empty skips verification)")
}

// bindInstallFlags registers the flags controlling installation and PATH
// registration.
func bindInstallFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&profileFlag, "profile", "", "Installation profile passed to install-tl")
	cmd.Flags().StringVar(&linkDirFlag, "link-dir", "", "Directory for manual symlinks (must be on PATH)")
	cmd.Flags().StringArrayVar(&installRootsFlag, "install-root", nil, "Candidate installation root (repeatable; searched before defaults)")
	cmd.Flags().StringVar(&entryPointFlag, "entry-point", "", "Executable used to verify the toolchain is reachable")
}

// applyFlagOverrides copies explicitly-set flag values into the config; flags
// win over the YAML and environment layers.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("mirror") {
		cfg.Mirror = mirrorFlag
	}
	if flags.Changed("archive-mirror") {
		cfg.ArchiveMirror = archiveMirrorFlag
	}
	if flags.Changed("archive-name") {
		cfg.ArchiveName = archiveNameFlag
	}
	if flags.Changed("cache-buster") {
		cfg.CacheBuster = cacheBusterFlag
	}
	if flags.Changed("checksum") {
		cfg.Checksum = checksumFlag
	}
	if flags.Changed("profile") {
		cfg.Profile = profileFlag
	}
	if flags.Changed("link-dir") {
		cfg.LinkDir = linkDirFlag
	}
	if flags.Changed("install-root") {
		cfg.InstallRoots = append(append([]string{}, installRootsFlag...), cfg.InstallRoots...)
	}
	if flags.Changed("entry-point") {
		cfg.EntryPoint = entryPointFlag
	}
}
