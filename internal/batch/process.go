package batch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"lyricmux/internal/history"
	"lyricmux/internal/logging"
	"lyricmux/internal/lyrics"
	"lyricmux/internal/matcher"
	"lyricmux/internal/media/tags"
	"lyricmux/internal/muxplan"
	"lyricmux/internal/scan"
	"lyricmux/internal/services"
)

// processFile runs the per-file state machine: probe existing tags, resolve
// lyric and cover inputs, build the plan, and commit it. The returned
// FileResult always carries an outcome; the error is non-nil only when the
// commit failed, so the caller can abort the batch on fatal classes while
// per-file failures stay recorded and recoverable.
func (r *runner) processFile(ctx context.Context, f scan.File, lyricNames, coverNames []string) (FileResult, error) {
	log := logging.WithContext(ctx, r.logger)
	result := FileResult{Path: f.Path, Outcome: history.OutcomeSkipped}

	if r.cfg.Run.SkipTagged {
		embedded, err := tags.ProbeEmbedded(f.Path)
		if err != nil {
			log.Warn("could not read existing tags", logging.Error(err))
		} else if embedded.Tagged() {
			result.Detail = "already tagged with lyrics and picture"
			log.Info("skipping file", logging.String("reason", result.Detail))
			return result, nil
		}
	}

	lyricText, lyricPath, detail := r.resolveLyrics(f, lyricNames, log)
	if detail != "" && !r.coversOn {
		result.Detail = detail
		log.Info("skipping file", logging.String("reason", result.Detail))
		return result, nil
	}
	result.LyricPath = lyricPath

	coverPath := r.resolveCover(f, coverNames, log)
	result.CoverPath = coverPath

	if lyricText == "" && coverPath == "" {
		if r.cfg.Lyrics.Skip {
			result.Detail = "no cover art matched"
		} else {
			result.Detail = "no lyrics or cover art matched"
		}
		log.Info("skipping file", logging.String("reason", result.Detail))
		return result, nil
	}

	req := muxplan.Request{
		Source:     f,
		LyricText:  lyricText,
		CoverPath:  coverPath,
		Accel:      r.accel.Enabled,
		StageToken: uuid.NewString(),
	}

	// MP3 plans read lyrics from a scratch file; FLAC plans carry the text
	// in the args. Dry runs compute the path a scratch file would get
	// without writing anything.
	if lyricText != "" && f.Container == scan.ContainerMP3 {
		if r.cfg.Run.DryRun {
			req.ScratchLyrics = filepath.Join(r.cfg.Paths.ScratchDir, scan.ScratchPrefix+uuid.NewString()+".lrc")
		} else {
			scratch, err := lyrics.AcquireScratch(r.cfg.Paths.ScratchDir, lyricText)
			if err != nil {
				result.Outcome = history.OutcomeFailed
				result.Detail = "write scratch lyric file: " + err.Error()
				log.Error("failed to write scratch lyric file", logging.Error(err))
				return result, services.Wrap(services.ErrTransient, stage, "scratch", "write scratch lyric file", err)
			}
			defer scratch.Release()
			req.ScratchLyrics = scratch.Path()
		}
	}

	plan, err := muxplan.Build(req)
	if err != nil {
		result.Outcome = history.OutcomeFailed
		result.Detail = "build plan: " + err.Error()
		log.Error("failed to build mux plan", logging.Error(err))
		return result, nil
	}
	result.Variant = plan.Variant

	if r.cfg.Run.DryRun {
		result.Outcome = history.OutcomePlanned
		result.Detail = "dry run"
		log.Info("dry run, would mux",
			logging.String("variant", string(plan.Variant)),
			logging.String("args", strings.Join(plan.Args, " ")),
		)
		return result, nil
	}

	if err := r.committer.Commit(ctx, plan); err != nil {
		result.Outcome = history.OutcomeFailed
		result.Detail = err.Error()
		log.Error("mux failed", logging.String("variant", string(plan.Variant)), logging.Error(err))
		return result, err
	}

	result.Outcome = history.OutcomeProcessed
	log.Info("embedded",
		logging.String("variant", string(plan.Variant)),
		logging.Bool("lyrics", lyricText != ""),
		logging.Bool("cover", coverPath != ""),
	)

	r.removeEmbeddedLyric(lyricText, lyricPath, log)
	return result, nil
}

// resolveLyrics matches and decodes the lyric file for f. It returns the
// decoded text and source path, or a skip detail when lyrics are wanted but
// unusable. All three returns are empty when lyrics are skipped by
// configuration.
func (r *runner) resolveLyrics(f scan.File, lyricNames []string, log *slog.Logger) (text, path, detail string) {
	if r.cfg.Lyrics.Skip {
		return "", "", ""
	}

	name := matcher.FindLyric(f.Base, lyricNames)
	if name == "" {
		return "", "", "no lyric file matched"
	}

	lyricPath := filepath.Join(r.lyricsDir, name)
	decoded, err := lyrics.Load(lyricPath, r.cfg.Lyrics.Encoding)
	if err != nil {
		log.Warn("failed to decode lyric file",
			logging.String("lyric", lyricPath),
			logging.Error(err))
		return "", "", "lyric file could not be decoded"
	}
	if strings.TrimSpace(decoded) == "" {
		log.Warn("lyric file is empty", logging.String("lyric", lyricPath))
		return "", "", "lyric file is empty"
	}
	return decoded, lyricPath, ""
}

// resolveCover matches cover art for f, returning the full path or empty.
// An ambiguous match is logged with every candidate; strict matching treats
// ambiguity as no cover, otherwise the sorted-first candidate wins.
func (r *runner) resolveCover(f scan.File, coverNames []string, log *slog.Logger) string {
	if !r.coversOn {
		return ""
	}

	match := matcher.FindCover(f.Base, coverNames)
	if match.Ambiguous {
		log.Warn("multiple covers matched",
			logging.String("chosen", match.Name),
			logging.String("candidates", strings.Join(match.Candidates, ", ")),
			logging.Bool("strict", r.cfg.Covers.StrictMatch),
		)
		if r.cfg.Covers.StrictMatch {
			return ""
		}
	}
	if !match.Found() {
		return ""
	}
	return filepath.Join(r.coverDir, match.Name)
}

// removeEmbeddedLyric deletes the matched lyric file after a successful
// embed, but only when the lyrics directory is the audio directory itself
// and keep_original is off. Lyrics in a separate directory are a library,
// not per-file droppings, and are never touched. Removal failure is a
// warning; the file already counts as processed.
func (r *runner) removeEmbeddedLyric(lyricText, lyricPath string, log *slog.Logger) {
	if lyricText == "" || lyricPath == "" {
		return
	}
	if r.cfg.Lyrics.KeepOriginal || r.lyricsDir != r.cfg.Paths.AudioDir {
		return
	}
	if err := os.Remove(lyricPath); err != nil {
		log.Warn("failed to remove embedded lyric file",
			logging.String("lyric", lyricPath),
			logging.Error(err))
		return
	}
	log.Debug("removed embedded lyric file", logging.String("lyric", lyricPath))
}
