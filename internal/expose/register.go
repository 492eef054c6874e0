package expose

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tlboot/internal/paths"
	"tlboot/internal/runner"
)

// ErrPathMisconfigured reports a link directory that is not a member of the
// process search path; links created there would be unreachable.
var ErrPathMisconfigured = errors.New("link directory not on PATH")

// Registrar applies fallback strategies to make a located bin directory
// reachable: the toolchain's own path helper first, manual symlinks second.
type Registrar struct {
	Runner   runner.Runner
	PathTool string
	LinkDir  string
	Logger   Logger
}

func NewRegistrar(r runner.Runner, pathTool, linkDir string, logger Logger) Registrar {
	if r == nil {
		r = runner.CmdRunner{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return Registrar{Runner: r, PathTool: pathTool, LinkDir: linkDir, Logger: logger}
}

// RegisterWithTool invokes the toolchain's path helper with the located bin
// directory prepended to PATH. Before registration the helper usually lives
// only in binDir and cannot be resolved through the parent PATH, so it is
// invoked by absolute path when present there; the prepended child PATH still
// covers the helper's own sub-invocations.
func (r Registrar) RegisterWithTool(ctx context.Context, binDir string) error {
	path := binDir
	if existing := os.Getenv("PATH"); existing != "" {
		path = binDir + string(os.PathListSeparator) + existing
	}

	command := r.PathTool
	if located := filepath.Join(binDir, r.PathTool); paths.IsExecutableFile(located) {
		command = located
	}

	r.Logger.Printf("running %s path add with %s prepended to PATH", command, binDir)
	opts := runner.RunOptions{Env: []string{"PATH=" + path}}
	if _, err := r.Runner.Run(ctx, command, []string{"path", "add"}, opts); err != nil {
		return fmt.Errorf("%s path add: %w", r.PathTool, err)
	}
	return nil
}

// LinkBinaries symlinks every regular file in binDir into the link directory.
// Existing entries are left untouched, so reruns are idempotent. Individual
// link failures are logged and skipped; the caller re-verifies afterwards
// regardless.
func (r Registrar) LinkBinaries(binDir string) error {
	if !onSearchPath(r.LinkDir) {
		return fmt.Errorf("%w: %s", ErrPathMisconfigured, r.LinkDir)
	}
	if err := os.MkdirAll(r.LinkDir, 0o755); err != nil {
		return fmt.Errorf("ensure link dir: %w", err)
	}

	entries, err := os.ReadDir(binDir)
	if err != nil {
		return fmt.Errorf("read bin dir %s: %w", binDir, err)
	}

	linked := 0
	for _, entry := range entries {
		source := filepath.Join(binDir, entry.Name())
		info, err := os.Stat(source)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		target := filepath.Join(r.LinkDir, entry.Name())
		if _, err := os.Lstat(target); err == nil {
			continue
		}
		if err := os.Symlink(source, target); err != nil {
			r.Logger.Printf("warning: symlink %s -> %s: %v", source, target, err)
			continue
		}
		linked++
	}

	r.Logger.Printf("linked %d binaries from %s into %s", linked, binDir, r.LinkDir)
	return nil
}

func onSearchPath(dir string) bool {
	cleaned := filepath.Clean(dir)
	for _, member := range filepath.SplitList(os.Getenv("PATH")) {
		if member == "" {
			continue
		}
		if filepath.Clean(member) == cleaned {
			return true
		}
	}
	return false
}
