// Package bootstrap sequences the install-and-expose procedure: resolve the
// release, fetch and expand the installer, drive it to completion, then make
// the installed binaries reachable on PATH.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"tlboot/internal/config"
	"tlboot/internal/expose"
	"tlboot/internal/fetch"
	"tlboot/internal/installer"
	"tlboot/internal/paths"
	"tlboot/internal/release"
	"tlboot/internal/runner"
)

// ErrPathRegistrationFailed reports that the binaries were located but no
// registration strategy made them reachable.
var ErrPathRegistrationFailed = errors.New("path registration failed")

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// State is the terminal state of a bootstrap run.
type State string

const (
	StateVerified           State = "verified"
	StateRegisteredViaTool  State = "registered-via-tool"
	StateRegisteredViaLinks State = "registered-via-links"
	StateFailed             State = "failed"
)

// Outcome is the only externally observable result of the procedure.
type Outcome struct {
	State   State  `json:"state"`
	Version string `json:"version"`
	BinDir  string `json:"bin_dir,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Pipeline runs the bootstrap stages sequentially; each stage strictly
// depends on the previous stage's success. Single-invocation, single-tenant:
// there is no locking against concurrent runs on the same roots.
type Pipeline struct {
	Config config.Config
	Paths  paths.BootstrapPaths
	Logger Logger
	Runner runner.Runner
}

func New(cfg config.Config, pp paths.BootstrapPaths, logger Logger, r runner.Runner) *Pipeline {
	if logger == nil {
		logger = noopLogger{}
	}
	if r == nil {
		r = runner.CmdRunner{}
	}
	return &Pipeline{Config: cfg, Paths: pp, Logger: logger, Runner: r}
}

// Resolve derives the source location for a parsed release spec from the
// pipeline configuration.
func (p *Pipeline) Resolve(spec release.Spec) release.Source {
	return release.Resolve(spec, p.Config.Mirror, p.Config.ArchiveMirror, p.Config.ArchiveName, p.Config.CacheBuster)
}

// FetchInstaller downloads the installer archive for the spec into dest,
// reusing an existing archive that passes the optional checksum unless force
// is set.
func (p *Pipeline) FetchInstaller(ctx context.Context, spec release.Spec, dest string, force bool) error {
	src := p.Resolve(spec)
	fetcher := p.fetcher()
	if !force && fetcher.Reuse(dest, p.Config.Checksum) {
		p.Logger.Printf("reusing existing archive: %s", dest)
		return nil
	}
	p.Logger.Printf("downloading installer: %s", src.InstallerURL)
	return fetcher.Download(ctx, src.InstallerURL, dest, p.Config.Checksum)
}

// Install runs the full bootstrap for the spec. The returned error is non-nil
// exactly when the outcome state is failed; the procedure never reports
// success with an unreachable toolchain.
func (p *Pipeline) Install(ctx context.Context, spec release.Spec) (Outcome, error) {
	src := p.Resolve(spec)

	installerPath, err := p.ensureInstaller(ctx, spec, src)
	if err != nil {
		return p.failed(spec, err)
	}

	driver := installer.New(p.Runner, p.Logger)
	installLog := filepath.Join(p.Paths.LogsDir, "install-tl.log")
	if err := driver.Run(ctx, installerPath, p.profilePath(), installLog, src); err != nil {
		return p.failed(spec, err)
	}

	verifier := expose.NewVerifier(p.Runner, p.Config.EntryPoint, p.Logger)
	if verifier.Check(ctx) {
		return Outcome{State: StateVerified, Version: spec.String()}, nil
	}

	p.Logger.Printf("installer did not configure PATH; locating binaries")
	binDir, err := p.locator().Locate(ctx, spec)
	if err != nil {
		return p.failed(spec, err)
	}

	registrar := expose.NewRegistrar(p.Runner, p.Config.PathTool, p.Config.LinkDir, p.Logger)

	if err := registrar.RegisterWithTool(ctx, binDir); err != nil {
		p.Logger.Printf("tool-assisted registration failed: %v", err)
	} else if verifier.Check(ctx) {
		return Outcome{State: StateRegisteredViaTool, Version: spec.String(), BinDir: binDir}, nil
	}

	p.Logger.Printf("falling back to manual links in %s", p.Config.LinkDir)
	if err := registrar.LinkBinaries(binDir); err != nil {
		out, ferr := p.failed(spec, err)
		out.BinDir = binDir
		return out, ferr
	}
	if verifier.Check(ctx) {
		return Outcome{State: StateRegisteredViaLinks, Version: spec.String(), BinDir: binDir}, nil
	}

	err = fmt.Errorf("%w: %s located but %s is still unreachable", ErrPathRegistrationFailed, binDir, p.Config.EntryPoint)
	out, ferr := p.failed(spec, err)
	out.BinDir = binDir
	return out, ferr
}

// ensureInstaller makes the install-tl script available in the workdir,
// fetching and expanding the archive only when it is not already there.
func (p *Pipeline) ensureInstaller(ctx context.Context, spec release.Spec, src release.Source) (string, error) {
	if path, err := installer.Locate(p.Paths.Workdir); err == nil {
		p.Logger.Printf("using existing installer: %s", path)
		return path, nil
	}

	if err := p.Paths.EnsureWorkdir(); err != nil {
		return "", err
	}
	if err := p.FetchInstaller(ctx, spec, p.Paths.ArchiveFile, false); err != nil {
		return "", err
	}
	p.Logger.Printf("expanding archive: %s", p.Paths.ArchiveFile)
	if err := fetch.Extract(p.Paths.ArchiveFile, p.Paths.Workdir); err != nil {
		return "", err
	}
	return installer.Locate(p.Paths.Workdir)
}

func (p *Pipeline) fetcher() *fetch.Fetcher {
	return fetch.New(p.Config.FetchRetries, time.Duration(p.Config.FetchRetryWaitS)*time.Second, p.Logger)
}

func (p *Pipeline) locator() expose.Locator {
	l := expose.NewLocator(expose.SearchRoots(p.Config.InstallRoots), p.Config.EntryPoint, p.Runner, p.Config.PathTool, p.Logger)
	l.ScanRoot = p.Config.ScanRoot
	l.ScanDepth = p.Config.ScanDepth
	return l
}

func (p *Pipeline) profilePath() string {
	if filepath.IsAbs(p.Config.Profile) {
		return p.Config.Profile
	}
	return filepath.Join(p.Paths.Workdir, p.Config.Profile)
}

func (p *Pipeline) failed(spec release.Spec, err error) (Outcome, error) {
	p.Logger.Printf("bootstrap failed: %v", err)
	return Outcome{State: StateFailed, Version: spec.String(), Reason: err.Error()}, err
}
