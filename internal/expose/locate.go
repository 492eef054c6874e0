package expose

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"tlboot/internal/paths"
	"tlboot/internal/release"
	"tlboot/internal/runner"
)

// ErrBinaryNotFound reports that no candidate directory anywhere contained a
// valid entry-point executable.
var ErrBinaryNotFound = errors.New("toolchain binaries not found")

var yearDirPattern = regexp.MustCompile(`^[0-9]{4}$`)

var errStopWalk = errors.New("stop walk")

// Locator searches a prioritized set of candidate locations for the installed
// toolchain's bin directory: configured roots first, then a tlmgr query, then
// a depth-bounded filesystem scan.
type Locator struct {
	Roots      []string
	EntryPoint string
	Runner     runner.Runner
	PathTool   string
	ScanRoot   string
	ScanDepth  int
	Logger     Logger
}

func NewLocator(roots []string, entryPoint string, r runner.Runner, pathTool string, logger Logger) Locator {
	if r == nil {
		r = runner.CmdRunner{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return Locator{
		Roots:      roots,
		EntryPoint: entryPoint,
		Runner:     r,
		PathTool:   pathTool,
		ScanRoot:   "/",
		ScanDepth:  6,
		Logger:     logger,
	}
}

// Locate returns the canonical path of the first valid bin directory for the
// requested release. A candidate is valid only if it is a directory and
// contains an executable entry point.
func (l Locator) Locate(ctx context.Context, spec release.Spec) (string, error) {
	if dir := l.fromRoots(spec); dir != "" {
		return canonical(dir)
	}
	if dir := l.fromPathTool(ctx); dir != "" {
		return canonical(dir)
	}
	if dir := l.fromScan(); dir != "" {
		return canonical(dir)
	}
	return "", fmt.Errorf("%w: searched roots %s for version %s", ErrBinaryNotFound, strings.Join(l.Roots, ", "), spec)
}

// fromRoots walks the configured installation roots. For a year spec only
// that year's directory is considered; for latest, year-named children are
// tried newest first (ordered by directory name, not mtime).
func (l Locator) fromRoots(spec release.Spec) string {
	for _, root := range l.Roots {
		var versionDirs []string
		if spec.Latest {
			versionDirs = yearDirsDescending(root)
		} else {
			versionDirs = []string{filepath.Join(root, strconv.Itoa(spec.Year))}
		}
		for _, versionDir := range versionDirs {
			if dir := l.binDirUnder(versionDir); dir != "" {
				return dir
			}
		}
	}
	return ""
}

// binDirUnder probes <versionDir>/bin/<arch> children for a valid candidate.
func (l Locator) binDirUnder(versionDir string) string {
	binRoot := filepath.Join(versionDir, "bin")
	entries, err := os.ReadDir(binRoot)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		candidate := filepath.Join(binRoot, entry.Name())
		if l.validBinDir(candidate) {
			return candidate
		}
	}
	return ""
}

// fromPathTool asks tlmgr where the installation root is. tlmgr may be
// present even when the entry point is not yet on PATH.
func (l Locator) fromPathTool(ctx context.Context) string {
	if l.PathTool == "" {
		return ""
	}
	result, err := l.Runner.Run(ctx, l.PathTool, []string{"conf", "texmf"}, runner.RunOptions{})
	if err != nil {
		l.Logger.Printf("%s conf query failed: %v", l.PathTool, err)
		return ""
	}
	for _, line := range strings.Split(string(result.Stdout), "\n") {
		stripped := strings.TrimSpace(line)
		if !strings.HasPrefix(stripped, "TEXMFROOT") {
			continue
		}
		fields := strings.Fields(stripped)
		if len(fields) < 2 {
			continue
		}
		root := strings.TrimSpace(fields[len(fields)-1])
		if dir := l.binDirUnder(root); dir != "" {
			return dir
		}
	}
	return ""
}

// fromScan is the last resort: a depth-bounded walk from ScanRoot looking for
// a bin/<arch> directory in the toolchain's installation layout, stopping at
// the first match.
func (l Locator) fromScan() string {
	scanRoot := filepath.Clean(l.ScanRoot)
	baseDepth := strings.Count(scanRoot, string(filepath.Separator))

	var found string
	err := filepath.WalkDir(scanRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtrees are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		depth := strings.Count(path, string(filepath.Separator)) - baseDepth
		if depth > l.ScanDepth {
			return fs.SkipDir
		}
		if filepath.Base(filepath.Dir(path)) != "bin" {
			return nil
		}
		if !installLayout(path) {
			return nil
		}
		if l.validBinDir(path) {
			found = path
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		l.Logger.Printf("filesystem scan failed: %v", err)
		return ""
	}
	if found != "" {
		l.Logger.Printf("filesystem scan located %s", found)
	}
	return found
}

// installLayout reports whether a bin/<arch> candidate sits inside a
// recognizable installation tree: a year-named version directory directly
// above bin, or a texlive path component somewhere above it. Keeps the scan
// from claiming unrelated bin directories that happen to hold an executable
// with the entry point's name.
func installLayout(binArchDir string) bool {
	versionDir := filepath.Dir(filepath.Dir(binArchDir))
	if yearDirPattern.MatchString(filepath.Base(versionDir)) {
		return true
	}
	for dir := versionDir; ; {
		if filepath.Base(dir) == "texlive" {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

// validBinDir requires both conditions: the candidate is a directory AND it
// contains an executable entry point.
func (l Locator) validBinDir(dir string) bool {
	ok, err := paths.DirExists(dir)
	if err != nil || !ok {
		return false
	}
	return paths.IsExecutableFile(filepath.Join(dir, l.EntryPoint))
}

// SearchRoots returns the configured installation roots plus the per-user
// texlive root, preserving configured order so explicit roots win.
func SearchRoots(configured []string) []string {
	roots := append([]string{}, configured...)
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, "texlive"))
	}
	return roots
}

func yearDirsDescending(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() && yearDirPattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	dirs := make([]string, 0, len(names))
	for _, name := range names {
		dirs = append(dirs, filepath.Join(root, name))
	}
	return dirs
}

func canonical(dir string) (string, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", fmt.Errorf("resolve candidate %s: %w", dir, err)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("resolve candidate %s: %w", dir, err)
	}
	return abs, nil
}
