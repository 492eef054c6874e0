// Package fetch retrieves the installer archive from a mirror and expands it
// into the workdir.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrFetchFailed reports a download that could not be completed after
	// the bounded retries were exhausted or a permanent HTTP failure.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrIntegrityMismatch reports a downloaded archive whose sha256 digest
	// differs from the expected value.
	ErrIntegrityMismatch = errors.New("integrity mismatch")
)

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Fetcher downloads installer archives. Transient failures are retried a
// bounded number of times; 4xx responses are permanent.
type Fetcher struct {
	Client    *http.Client
	Retries   int
	RetryWait time.Duration
	Logger    Logger
}

func New(retries int, wait time.Duration, logger Logger) *Fetcher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Fetcher{
		Client:    &http.Client{},
		Retries:   retries,
		RetryWait: wait,
		Logger:    logger,
	}
}

// Reuse reports whether an already-downloaded archive at dest can be used
// instead of fetching again. With an expected checksum the file must match;
// without one, any existing regular file is accepted.
func (f *Fetcher) Reuse(dest, checksum string) bool {
	info, err := os.Stat(dest)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if checksum == "" {
		return true
	}
	match, err := verifyChecksum(dest, checksum)
	return err == nil && match
}

// Download retrieves url into dest. The payload is written to a temp file,
// verified against the optional sha256 checksum, and only then renamed into
// place, so dest never holds a partial or corrupt archive.
func (f *Fetcher) Download(ctx context.Context, url, dest, checksum string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("prepare download destination: %w", err)
	}

	attempts := f.Retries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			f.Logger.Printf("retrying download (attempt %d/%d): %s", attempt, attempts, url)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, ctx.Err())
			case <-time.After(f.RetryWait):
			}
		}

		retryable, err := f.downloadOnce(ctx, url, dest, checksum)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrIntegrityMismatch) {
			return err
		}
		lastErr = err
		if !retryable {
			return fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
		}
		f.Logger.Printf("download attempt %d failed: %v", attempt, err)
	}

	return fmt.Errorf("%w: %s after %d attempts: %v", ErrFetchFailed, url, attempts, lastErr)
}

func (f *Fetcher) downloadOnce(ctx context.Context, url, dest, checksum string) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "tlboot/1.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return true, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Server-side failures may clear; client errors will not.
		return resp.StatusCode >= 500, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), "download-*.tmp")
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		return true, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return false, fmt.Errorf("close temp file: %w", err)
	}

	if checksum != "" {
		match, err := verifyChecksum(tmpPath, checksum)
		if err != nil {
			return false, err
		}
		if !match {
			return false, fmt.Errorf("%w: %s: sha256 differs from expected %s", ErrIntegrityMismatch, url, checksum)
		}
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return false, fmt.Errorf("finalize download: %w", err)
	}
	return false, nil
}

func verifyChecksum(path, expected string) (bool, error) {
	sum, err := computeChecksum(path)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(sum, expected), nil
}

func computeChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for checksum: %w", err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
