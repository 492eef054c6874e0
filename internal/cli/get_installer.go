package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"tlboot/internal/bootstrap"
	"tlboot/internal/release"
)

var (
	getOutputFlag string
	getForceFlag  bool
)

func newGetInstallerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get-installer <version>",
		Aliases: []string{"get_installer"},
		Short:   "Download the installer archive for a release",
		Args:    cobra.ExactArgs(1),
		RunE:    runGetInstaller,
	}

	bindSourceFlags(cmd)
	cmd.Flags().StringVar(&getOutputFlag, "output", "", "Destination path for the downloaded archive")
	cmd.Flags().BoolVar(&getForceFlag, "force", false, "Re-download even if a usable archive exists")

	return cmd
}

func runGetInstaller(cmd *cobra.Command, args []string) error {
	spec, err := release.Parse(args[0])
	if err != nil {
		return err
	}

	cfg, pp, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := pp.EnsureWorkdir(); err != nil {
		return err
	}

	dest := pp.ArchiveFile
	if getOutputFlag != "" {
		dest = getOutputFlag
	}

	pipeline := bootstrap.New(cfg, pp, nil, nil)
	src := pipeline.Resolve(spec)
	if err := pipeline.FetchInstaller(cmd.Context(), spec, dest, getForceFlag); err != nil {
		return err
	}

	if outputJSON {
		payload := struct {
			Version string `json:"version"`
			URL     string `json:"url"`
			Path    string `json:"path"`
		}{
			Version: spec.String(),
			URL:     src.InstallerURL,
			Path:    dest,
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Downloaded %s installer to %s\n", spec, dest)
	return nil
}
