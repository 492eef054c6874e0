package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tlboot/internal/config"
	"tlboot/internal/paths"
)

var (
	workdirFlag string
	outputJSON  bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tlboot",
		Short: "TeX Live bootstrap CLI",
	}

	cmd.PersistentFlags().StringVar(&workdirFlag, "workdir", "", "Working directory for installer files and logs")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newGetInstallerCmd())
	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newVerifyCmd())

	return cmd
}

// resolveConfig layers the bootstrap policy: defaults, then the optional
// tlboot.yaml in the workdir, then TL_* environment values, then flags the
// user explicitly set.
func resolveConfig(cmd *cobra.Command) (config.Config, paths.BootstrapPaths, error) {
	pp, err := paths.Resolve(workdirFlag, config.WorkdirFromEnv(), "")
	if err != nil {
		return config.Config{}, paths.BootstrapPaths{}, err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return config.Config{}, paths.BootstrapPaths{}, err
	}
	cfg.ApplyEnv()
	applyFlagOverrides(cmd, &cfg)

	pp.ArchiveFile = filepath.Join(pp.Workdir, cfg.ArchiveName)
	return cfg, pp, nil
}
