package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"tlboot/internal/bootstrap"
	"tlboot/internal/logx"
	"tlboot/internal/release"
)

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <version>",
		Short: "Install a release and make its binaries reachable on PATH",
		Args:  cobra.ExactArgs(1),
		RunE:  runInstall,
	}

	bindSourceFlags(cmd)
	bindInstallFlags(cmd)

	return cmd
}

func runInstall(cmd *cobra.Command, args []string) error {
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

	logger, closer, err := logx.New(pp)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Printf("tlboot install: version=%s workdir=%s", spec, pp.Workdir)

	pipeline := bootstrap.New(cfg, pp, logger, nil)
	outcome, runErr := pipeline.Install(cmd.Context(), spec)

	if writeErr := writeInstallResult(cmd, outcome); writeErr != nil {
		return writeErr
	}
	if runErr != nil {
		return fmt.Errorf("install %s: %w", spec, runErr)
	}
	return nil
}

func writeInstallResult(cmd *cobra.Command, outcome bootstrap.Outcome) error {
	if outputJSON {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	writeInstallTable(cmd, outcome)
	return nil
}

func writeInstallTable(cmd *cobra.Command, outcome bootstrap.Outcome) {
	bold := lipgloss.NewStyle().Bold(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faint := lipgloss.NewStyle().Faint(true)

	switch outcome.State {
	case bootstrap.StateVerified:
		cmd.Println(green.Render("✓") + " " + bold.Render("verified") + ": toolchain reachable on PATH")
	case bootstrap.StateRegisteredViaTool:
		cmd.Println(green.Render("✓") + " " + bold.Render("registered") + " via path tool")
	case bootstrap.StateRegisteredViaLinks:
		cmd.Println(green.Render("✓") + " " + bold.Render("registered") + " via manual links")
	case bootstrap.StateFailed:
		cmd.Println(red.Render("✗") + " " + bold.Render("failed"))
	}

	cmd.Println(faint.Render("  version: " + outcome.Version))
	if outcome.BinDir != "" {
		cmd.Println(faint.Render("  bin dir: " + outcome.BinDir))
	}
	if outcome.Reason != "" {
		cmd.Println(red.Render("  reason: " + outcome.Reason))
	}
}
