package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// BootstrapPaths captures canonical locations for a bootstrap run. Everything
// lives under the workdir; nothing persists across runs beyond what the
// vendor installer itself writes.
type BootstrapPaths struct {
	Workdir     string
	ConfigFile  string
	LogsDir     string
	ArchiveFile string
}

// Resolve determines the workdir using the optional --workdir flag, the
// TL_WORKDIR environment value, or the current working directory.
func Resolve(workdirFlag, envWorkdir, archiveName string) (BootstrapPaths, error) {
	var (
		root string
		err  error
	)

	switch {
	case workdirFlag != "":
		root, err = filepath.Abs(workdirFlag)
	case envWorkdir != "":
		root, err = filepath.Abs(envWorkdir)
	default:
		root, err = os.Getwd()
	}
	if err != nil {
		return BootstrapPaths{}, fmt.Errorf("resolve workdir: %w", err)
	}

	return BootstrapPaths{
		Workdir:     root,
		ConfigFile:  filepath.Join(root, "tlboot.yaml"),
		LogsDir:     filepath.Join(root, "logs"),
		ArchiveFile: filepath.Join(root, archiveName),
	}, nil
}

// EnsureWorkdir makes sure the workdir and its logs directory exist.
func (p BootstrapPaths) EnsureWorkdir() error {
	for _, dir := range []string{p.Workdir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// IsExecutableFile reports whether a path is a regular file with any execute
// bit set.
func IsExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
