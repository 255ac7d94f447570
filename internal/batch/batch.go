package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"lyricmux/internal/commit"
	"lyricmux/internal/config"
	"lyricmux/internal/history"
	"lyricmux/internal/logging"
	"lyricmux/internal/muxplan"
	"lyricmux/internal/notifications"
	"lyricmux/internal/scan"
	"lyricmux/internal/services"
	"lyricmux/internal/services/ffmpeg"
)

const (
	stage = "batch"

	// lockFileName guards an audio directory against concurrent runs.
	lockFileName = ".lyricmux.lock"

	// staleMaxAge is how old a leftover artifact must be before the pre-run
	// sweep removes it. Younger artifacts may belong to a run still holding
	// a lock on another directory.
	staleMaxAge = 24 * time.Hour
)

// Committer executes one mux plan against the filesystem. commit.Committer
// is the production implementation; tests substitute their own.
type Committer interface {
	Commit(ctx context.Context, plan muxplan.Plan) error
}

// FileResult is the recorded outcome of one audio file.
type FileResult struct {
	Path      string
	Outcome   history.Outcome
	Detail    string
	LyricPath string
	CoverPath string
	Variant   muxplan.Variant
}

// RunResult summarizes a batch run. Files holds one entry per discovered
// audio file in processing order; the counters aggregate them. Dry-run
// plans appear in Files with OutcomePlanned and are not counted as
// processed.
type RunResult struct {
	RunID     string
	Accel     AccelDecision
	Total     int
	Processed int
	Skipped   int
	Failed    int
	Files     []FileResult
}

// Option overrides a runner collaborator.
type Option func(*runner)

// WithClient substitutes the ffmpeg client used for the availability check
// and the encoder probe and, unless WithCommitter is also given, for plan
// execution.
func WithClient(client ffmpeg.Client) Option {
	return func(r *runner) {
		if client != nil {
			r.client = client
		}
	}
}

// WithCommitter substitutes the plan executor.
func WithCommitter(committer Committer) Option {
	return func(r *runner) {
		if committer != nil {
			r.committer = committer
		}
	}
}

// WithNotifier substitutes the notification service.
func WithNotifier(notifier notifications.Service) Option {
	return func(r *runner) {
		if notifier != nil {
			r.notifier = notifier
		}
	}
}

type runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	client    ffmpeg.Client
	committer Committer
	notifier  notifications.Service
	store     *history.Store

	runID     string
	accel     AccelDecision
	lyricsDir string
	coverDir  string
	coversOn  bool
}

// Run executes one batch pass over the configured audio directory: validate,
// check ffmpeg, negotiate acceleration, lock the directory, sweep stale
// artifacts, then process every discovered file strictly in order. Per-file
// failures are recorded and never abort the run; configuration and
// external-tool errors do. The returned RunResult is valid even when err is
// non-nil, carrying whatever was completed before the abort.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*RunResult, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, stage, "validate", "configuration is required", nil)
	}

	r := &runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "batch"),
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpeg.Binary))
	}
	if r.committer == nil {
		r.committer = commit.New(r.client,
			commit.WithProbeBinary(cfg.FFmpeg.ProbeBinary),
			commit.WithLogger(r.logger),
		)
	}
	if r.notifier == nil {
		r.notifier = notifications.NewService(cfg)
	}

	ctx = services.WithRunID(ctx, r.runID)
	log := logging.WithContext(ctx, r.logger)

	if err := r.validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stage, "validate", "prepare working directories", err)
	}

	version, err := r.client.Version(ctx)
	if err != nil {
		if ffmpeg.IsNotFound(err) {
			return nil, services.Wrap(services.ErrExternalTool, stage, "preflight", "ffmpeg binary not found", err)
		}
		return nil, services.Wrap(services.ErrExternalTool, stage, "preflight", "ffmpeg is not runnable", err)
	}
	log.Debug("ffmpeg available", logging.String("version", version))

	r.accel = NegotiateAccel(ctx, r.client, cfg.FFmpeg.UseGPU)
	if r.accel.Requested && !r.accel.Enabled {
		log.Warn("hardware acceleration requested but unavailable",
			logging.String("detail", r.accel.Detail))
	} else {
		log.Debug("hardware acceleration negotiated",
			logging.Bool("enabled", r.accel.Enabled),
			logging.String("detail", r.accel.Detail))
	}

	r.resolveDirectories(log)

	lock := flock.New(filepath.Join(cfg.Paths.AudioDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, stage, "lock", "acquire directory lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, stage, "lock", "another lyricmux run is processing this directory", nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("failed to release directory lock", logging.Error(err))
		}
	}()

	if cfg.Run.CleanStale {
		r.sweepStale(ctx, log)
	}

	files, err := scan.Discover(cfg.Paths.AudioDir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stage, "scan", "list audio directory", err)
	}
	lyricNames, err := scan.ListNames(r.lyricsDir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stage, "scan", "list lyrics directory", err)
	}
	var coverNames []string
	if r.coversOn {
		coverNames, err = scan.ListNames(r.coverDir)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, stage, "scan", "list cover directory", err)
		}
	}

	r.openHistory(ctx, log)
	defer r.closeHistory(log)

	start := time.Now()
	log.Info("batch started",
		logging.String("audio_dir", cfg.Paths.AudioDir),
		logging.String("lyrics_dir", r.lyricsDir),
		logging.String("cover_dir", r.coverDir),
		logging.Int("files", len(files)),
		logging.Bool("dry_run", cfg.Run.DryRun),
	)

	if !cfg.Run.DryRun && len(files) > 0 {
		if err := r.notifier.NotifyRunStarted(ctx, cfg.Paths.AudioDir, len(files)); err != nil {
			log.Debug("run start notification failed", logging.Error(err))
		}
	}

	result := &RunResult{RunID: r.runID, Accel: r.accel, Total: len(files)}
	var fatal error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			fatal = err
			break
		}

		fileCtx := services.WithFile(ctx, f.Name)
		fr, err := r.processFile(fileCtx, f, lyricNames, coverNames)
		result.Files = append(result.Files, fr)
		switch fr.Outcome {
		case history.OutcomeProcessed:
			result.Processed++
		case history.OutcomeFailed:
			result.Failed++
		case history.OutcomeSkipped:
			result.Skipped++
		}
		r.recordFile(ctx, log, fr)

		if err != nil && services.Fatal(err) {
			log.Error("aborting batch, remaining files untouched", logging.Error(err))
			fatal = err
			break
		}
	}

	// The run record is finished even when the context was cancelled, so an
	// interrupted run still shows its partial counters in history.
	finishCtx := context.WithoutCancel(ctx)
	r.finishHistory(finishCtx, log, result)
	r.notifyFinished(finishCtx, log, result, fatal, time.Since(start))
	log.Info("batch finished",
		logging.Int("total", result.Total),
		logging.Int("processed", result.Processed),
		logging.Int("skipped", result.Skipped),
		logging.Int("failed", result.Failed),
		logging.Duration("elapsed", time.Since(start)),
	)

	return result, fatal
}

// validate applies the pre-run configuration checks: the audio directory
// must exist, and skipping lyrics with no cover directory configured leaves
// nothing to embed.
func (r *runner) validate() error {
	dir := r.cfg.Paths.AudioDir
	if dir == "" {
		return services.Wrap(services.ErrConfiguration, stage, "validate", "paths.audio_dir must be set", nil)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stage, "validate", fmt.Sprintf("audio directory %q is not accessible", dir), err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, stage, "validate", fmt.Sprintf("audio path %q is not a directory", dir), nil)
	}
	if r.cfg.Lyrics.Skip && !r.cfg.CoversEnabled() {
		return services.Wrap(services.ErrConfiguration, stage, "validate", "lyrics are skipped and no cover directory is configured, nothing to embed", nil)
	}
	return nil
}

// resolveDirectories settles the effective lyrics and cover directories.
// A configured but missing lyrics directory falls back to the audio
// directory; a configured but missing cover directory disables cover
// embedding for the run. Both are warnings, not errors, so a batch with a
// detached cover share still embeds lyrics.
func (r *runner) resolveDirectories(log *slog.Logger) {
	r.lyricsDir = r.cfg.LyricsDirOrDefault()
	if r.lyricsDir != r.cfg.Paths.AudioDir {
		if info, err := os.Stat(r.lyricsDir); err != nil || !info.IsDir() {
			log.Warn("lyrics directory missing, falling back to audio directory",
				logging.String("lyrics_dir", r.lyricsDir))
			r.lyricsDir = r.cfg.Paths.AudioDir
		}
	}

	if !r.cfg.CoversEnabled() {
		return
	}
	dir := r.cfg.Paths.CoverDir
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Warn("cover directory missing, cover embedding disabled",
			logging.String("cover_dir", dir))
		return
	}
	r.coverDir = dir
	r.coversOn = true
}

// sweepStale removes abandoned staging artifacts in the directories this
// run writes to. Sweep problems never block the run.
func (r *runner) sweepStale(ctx context.Context, log *slog.Logger) {
	dirs := []string{r.cfg.Paths.AudioDir}
	if r.cfg.Paths.ScratchDir != r.cfg.Paths.AudioDir {
		dirs = append(dirs, r.cfg.Paths.ScratchDir)
	}
	for _, dir := range dirs {
		res := scan.CleanStale(ctx, dir, staleMaxAge, log)
		if len(res.Removed) > 0 {
			log.Info("swept stale artifacts",
				logging.String("dir", dir),
				logging.Int("removed", len(res.Removed)))
		}
	}
}

// openHistory opens the history store best-effort. An unavailable store
// downgrades to a warning and the run proceeds without recording.
func (r *runner) openHistory(ctx context.Context, log *slog.Logger) {
	if !r.cfg.Run.History {
		return
	}
	store, err := history.Open(r.cfg)
	if err != nil {
		log.Warn("history store unavailable, continuing without history", logging.Error(err))
		return
	}
	run := history.Run{
		ID:             r.runID,
		StartedAt:      time.Now(),
		AudioDir:       r.cfg.Paths.AudioDir,
		LyricsDir:      r.lyricsDir,
		CoverDir:       r.coverDir,
		Encoding:       r.cfg.Lyrics.Encoding,
		DryRun:         r.cfg.Run.DryRun,
		SkipLyrics:     r.cfg.Lyrics.Skip,
		KeepLyrics:     r.cfg.Lyrics.KeepOriginal,
		AccelRequested: r.accel.Requested,
		AccelEnabled:   r.accel.Enabled,
		AccelDetail:    r.accel.Detail,
	}
	if err := store.RecordRunStart(ctx, run); err != nil {
		log.Warn("failed to record run start, continuing without history", logging.Error(err))
		if err := store.Close(); err != nil {
			log.Warn("failed to close history store", logging.Error(err))
		}
		return
	}
	r.store = store
}

func (r *runner) recordFile(ctx context.Context, log *slog.Logger, fr FileResult) {
	if r.store == nil {
		return
	}
	rec := history.FileRecord{
		RunID:     r.runID,
		Path:      fr.Path,
		Outcome:   fr.Outcome,
		Detail:    fr.Detail,
		LyricPath: fr.LyricPath,
		CoverPath: fr.CoverPath,
		Variant:   string(fr.Variant),
	}
	if err := r.store.RecordFile(ctx, rec); err != nil {
		log.Warn("failed to record file outcome",
			logging.String("path", fr.Path),
			logging.Error(err))
	}
}

func (r *runner) finishHistory(ctx context.Context, log *slog.Logger, result *RunResult) {
	if r.store == nil {
		return
	}
	totals := history.Totals{
		Total:     result.Total,
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Failed:    result.Failed,
	}
	if err := r.store.FinishRun(ctx, r.runID, totals); err != nil {
		log.Warn("failed to finish run record", logging.Error(err))
	}
}

// notifyFinished announces the run outcome. Dry runs, empty runs, and
// interrupted runs stay silent; delivery failures are logged and otherwise
// ignored.
func (r *runner) notifyFinished(ctx context.Context, log *slog.Logger, result *RunResult, fatal error, elapsed time.Duration) {
	if r.cfg.Run.DryRun || result.Total == 0 {
		return
	}
	var err error
	switch {
	case fatal == nil:
		err = r.notifier.NotifyRunCompleted(ctx, r.cfg.Paths.AudioDir,
			result.Processed, result.Skipped, result.Failed, elapsed)
	case errors.Is(fatal, context.Canceled):
		return
	default:
		err = r.notifier.NotifyRunFailed(ctx, r.cfg.Paths.AudioDir, fatal)
	}
	if err != nil {
		log.Debug("run notification failed", logging.Error(err))
	}
}

func (r *runner) closeHistory(log *slog.Logger) {
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		log.Warn("failed to close history store", logging.Error(err))
	}
	r.store = nil
}
