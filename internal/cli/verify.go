package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"tlboot/internal/expose"
	"tlboot/internal/release"
	"tlboot/internal/runner"
)

var verifyStrict bool

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [version]",
		Short: "Check whether the toolchain is reachable on PATH",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runVerify,
	}

	bindInstallFlags(cmd)
	cmd.Flags().BoolVar(&verifyStrict, "strict", false, "fail when the toolchain is not reachable")

	return cmd
}

type verifyReport struct {
	EntryPoint string `json:"entry_point"`
	Reachable  bool   `json:"reachable"`
	Candidate  string `json:"candidate,omitempty"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	spec := release.Spec{Latest: true}
	if len(args) == 1 {
		var err error
		spec, err = release.Parse(args[0])
		if err != nil {
			return err
		}
	}

	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	run := runner.CmdRunner{}
	verifier := expose.NewVerifier(run, cfg.EntryPoint, nil)
	report := verifyReport{EntryPoint: cfg.EntryPoint}
	report.Reachable = verifier.Check(cmd.Context())

	if !report.Reachable {
		locator := expose.NewLocator(expose.SearchRoots(cfg.InstallRoots), cfg.EntryPoint, run, cfg.PathTool, nil)
		locator.ScanRoot = cfg.ScanRoot
		locator.ScanDepth = cfg.ScanDepth
		if dir, lerr := locator.Locate(cmd.Context(), spec); lerr == nil {
			report.Candidate = dir
		}
	}

	if outputJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
	} else {
		writeVerifyReport(cmd, report)
	}

	if verifyStrict && !report.Reachable {
		return errors.New("toolchain not reachable: " + cfg.EntryPoint)
	}
	return nil
}

func writeVerifyReport(cmd *cobra.Command, report verifyReport) {
	bold := lipgloss.NewStyle().Bold(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faint := lipgloss.NewStyle().Faint(true)

	if report.Reachable {
		cmd.Println(green.Render("✓") + " " + bold.Render(report.EntryPoint) + " reachable on PATH")
		return
	}

	cmd.Println(red.Render("✗") + " " + bold.Render(report.EntryPoint) + " not reachable")
	if report.Candidate != "" {
		cmd.Println(faint.Render("  installed binaries found at " + report.Candidate))
		cmd.Println(faint.Render("  run `tlboot install` to register them"))
	}
}
