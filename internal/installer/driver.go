// Package installer drives the vendor install-tl script non-interactively.
// The vendor tool is authoritative for what gets installed; the driver only
// checks preconditions and the exit status.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tlboot/internal/paths"
	"tlboot/internal/release"
	"tlboot/internal/runner"
)

var (
	// ErrProfileMissing reports an installation profile that does not exist.
	ErrProfileMissing = errors.New("install profile missing")
	// ErrInstallerMissing reports a workdir without an install-tl script.
	ErrInstallerMissing = errors.New("installer missing")
	// ErrInstallationFailed reports a non-zero installer exit.
	ErrInstallationFailed = errors.New("installation failed")
)

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Driver invokes install-tl through the command runner.
type Driver struct {
	Runner runner.Runner
	Logger Logger
	// Perl is the interpreter used to run the installer script.
	Perl string
}

func New(r runner.Runner, logger Logger) *Driver {
	if r == nil {
		r = runner.CmdRunner{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Driver{Runner: r, Logger: logger, Perl: "perl"}
}

// Locate finds the install-tl script inside an extracted workdir. The archive
// expands into a dated install-tl-YYYYMMDD directory; container builds that
// strip components leave the script at the top level.
func Locate(workdir string) (string, error) {
	candidates := []string{
		filepath.Join(workdir, "install-tl"),
		filepath.Join(workdir, "install-tl", "install-tl"),
	}
	matches, _ := filepath.Glob(filepath.Join(workdir, "install-tl-*", "install-tl"))
	candidates = append(candidates, matches...)

	for _, candidate := range candidates {
		if ok, _ := paths.FileExists(candidate); ok {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: install-tl not found under %s", ErrInstallerMissing, workdir)
}

// Run executes the installer against the given profile and source. The
// installer's combined output is teed into logPath for diagnosis; only the
// exit status is interpreted.
func (d *Driver) Run(ctx context.Context, installerPath, profile, logPath string, src release.Source) error {
	profileAbs, err := filepath.Abs(profile)
	if err != nil {
		return fmt.Errorf("resolve profile path: %w", err)
	}
	if ok, err := paths.FileExists(profileAbs); err != nil || !ok {
		return fmt.Errorf("%w: %s", ErrProfileMissing, profileAbs)
	}
	if ok, err := paths.FileExists(installerPath); err != nil || !ok {
		return fmt.Errorf("%w: %s", ErrInstallerMissing, installerPath)
	}

	args := []string{
		installerPath,
		"--profile=" + profileAbs,
		"--location=" + src.Location,
	}
	if src.Repository != "" {
		args = append(args, "--repository="+src.Repository)
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("ensure logs dir: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open installer log: %w", err)
	}
	defer logFile.Close()

	d.Logger.Printf("running installer: %s %v", d.Perl, args)
	opts := runner.RunOptions{
		Dir:    filepath.Dir(installerPath),
		Stdout: logFile,
		Stderr: logFile,
	}
	if _, err := d.Runner.Run(ctx, d.Perl, args, opts); err != nil {
		return fmt.Errorf("%w: %v (see %s)", ErrInstallationFailed, err, logPath)
	}
	return nil
}
