// Package expose makes an installed toolchain reachable on PATH: it verifies
// the entry point, locates installed binaries when verification fails, and
// registers them via tlmgr or manual symlinks.
package expose

import (
	"context"

	"tlboot/internal/runner"
)

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Verifier checks whether the toolchain entry point resolves through the
// search path. The check is idempotent and safe to repeat between fallback
// strategies.
type Verifier struct {
	Runner     runner.Runner
	EntryPoint string
	Logger     Logger
}

func NewVerifier(r runner.Runner, entryPoint string, logger Logger) Verifier {
	if r == nil {
		r = runner.CmdRunner{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return Verifier{Runner: r, EntryPoint: entryPoint, Logger: logger}
}

// Check runs the entry point with a version query. A zero exit with output
// means the toolchain is reachable; any failure means not-yet-verified, which
// is not itself an error.
func (v Verifier) Check(ctx context.Context) bool {
	result, err := v.Runner.Run(ctx, v.EntryPoint, []string{"--version"}, runner.RunOptions{})
	if err != nil {
		v.Logger.Printf("%s not reachable: %v", v.EntryPoint, err)
		return false
	}
	if len(result.Stdout) == 0 && len(result.Stderr) == 0 {
		v.Logger.Printf("%s produced no version output", v.EntryPoint)
		return false
	}
	v.Logger.Printf("%s reachable on PATH", v.EntryPoint)
	return true
}
