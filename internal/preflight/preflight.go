package preflight

import (
	"path/filepath"

	"lyricmux/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run for directories the configuration actually uses.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	for _, status := range CheckSystemDeps(cfg) {
		detail := status.Detail
		if detail == "" {
			detail = status.Command
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: detail})
	}

	// Audio directory (always checked; the batch rewrites files in place)
	results = append(results, CheckDirectoryAccess("Audio directory", cfg.Paths.AudioDir))

	// Lyrics directory (when distinct from the audio directory)
	if cfg.Paths.LyricsDir != "" && cfg.Paths.LyricsDir != cfg.Paths.AudioDir {
		results = append(results, CheckReadableDirectory("Lyrics directory", cfg.Paths.LyricsDir))
	}

	// Cover directory (when configured)
	if cfg.Paths.CoverDir != "" {
		results = append(results, CheckReadableDirectory("Cover directory", cfg.Paths.CoverDir))
	}

	// The run command creates the scratch and history directories on startup,
	// so a missing-but-creatable path is a pass here.
	results = append(results, CheckCreatableDirectory("Scratch directory", cfg.Paths.ScratchDir))

	if cfg.Run.History {
		results = append(results, CheckCreatableDirectory("History directory", filepath.Dir(cfg.Paths.HistoryDB)))
	}

	return results
}
