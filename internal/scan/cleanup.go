package scan

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lyricmux/internal/logging"
)

// CleanStaleResult contains the outcome of a stale artifact sweep.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs an artifact path with its removal error.
type CleanupError struct {
	Path  string
	Error error
}

// isStaleFile reports whether a regular file name looks like a leftover
// artifact: a staged mux output (song.temp.mp3) or a scratch lyric file
// (lyricmux-<uuid>.lrc).
func isStaleFile(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, TempMarker+"mp3") || strings.HasSuffix(lower, TempMarker+"flac") {
		return true
	}
	return strings.HasPrefix(lower, ScratchPrefix) && strings.HasSuffix(lower, ".lrc")
}

// isStaleDir reports whether a directory name looks like a leftover FLAC
// staging directory.
func isStaleDir(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), StageDirPrefix)
}

// CleanStale removes leftover artifacts in dir older than maxAge: staged mux
// outputs, scratch lyric files, and staging directories abandoned by an
// interrupted run. Fresh artifacts are left alone in case another instance
// is mid-run. It returns the removed paths and any errors encountered;
// a missing directory is not an error.
func CleanStale(ctx context.Context, dir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if entry.IsDir() {
			if !isStaleDir(entry.Name()) {
				continue
			}
		} else if !isStaleFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale artifact",
					logging.String("path", path),
					logging.Error(err),
				)
			}
		} else {
			result.Removed = append(result.Removed, path)
			if logger != nil {
				logger.Info("removed stale artifact",
					logging.String("path", path),
					logging.Duration("age", time.Since(info.ModTime())),
				)
			}
		}
	}

	return result
}
