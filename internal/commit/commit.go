package commit

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"lyricmux/internal/fileutil"
	"lyricmux/internal/logging"
	"lyricmux/internal/media/ffprobe"
	"lyricmux/internal/muxplan"
	"lyricmux/internal/services"
	"lyricmux/internal/services/ffmpeg"
)

const stage = "commit"

// Committer executes mux plans and replaces originals with verified output.
type Committer struct {
	client      ffmpeg.Client
	probeBinary string
	logger      *slog.Logger
}

// Option configures a Committer.
type Option func(*Committer)

// WithProbeBinary overrides the ffprobe binary used for output verification.
func WithProbeBinary(binary string) Option {
	return func(c *Committer) {
		if binary != "" {
			c.probeBinary = binary
		}
	}
}

// WithLogger attaches a logger for best-effort cleanup diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Committer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a Committer around an ffmpeg client.
func New(client ffmpeg.Client, opts ...Option) *Committer {
	c := &Committer{
		client:      client,
		probeBinary: "ffprobe",
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Commit runs the plan's ffmpeg invocation, verifies the staged output, and
// atomically replaces the original. On any failure the original file is left
// untouched and staged artifacts are removed best-effort. A missing ffmpeg
// binary is reported as an external tool error so the batch stops instead of
// failing every file the same way.
func (c *Committer) Commit(ctx context.Context, plan muxplan.Plan) error {
	if plan.StageDir != "" {
		if err := os.MkdirAll(plan.StageDir, 0o755); err != nil {
			return services.Wrap(services.ErrTransient, stage, "mux", "create stage directory", err)
		}
	}

	result, err := c.client.Run(ctx, plan.Args)
	if err != nil {
		c.discardStaged(plan)
		if ffmpeg.IsNotFound(err) {
			return services.Wrap(services.ErrExternalTool, stage, "mux", "ffmpeg binary not found", err)
		}
		msg := "ffmpeg exited with an error"
		if detail := outputTail(result); detail != "" {
			msg += ": " + detail
		}
		return services.Wrap(services.ErrTransient, stage, "mux", msg, err)
	}

	if _, err := os.Stat(plan.Output); err != nil {
		c.discardStaged(plan)
		return services.Wrap(services.ErrTransient, stage, "mux", "staged output missing after mux", err)
	}

	if err := c.verify(ctx, plan.Output); err != nil {
		c.discardStaged(plan)
		return services.Wrap(services.ErrValidation, stage, "verify", "staged output failed verification", err)
	}

	if err := fileutil.MoveFile(plan.Output, plan.Source); err != nil {
		c.discardStaged(plan)
		return services.Wrap(services.ErrTransient, stage, "replace", "replace original with staged output", err)
	}

	if plan.StageDir != "" {
		if err := os.RemoveAll(plan.StageDir); err != nil {
			c.logger.Warn("failed to remove stage directory",
				logging.String("path", plan.StageDir),
				logging.Error(err),
			)
		}
	}
	return nil
}

// verify checks that the staged output parses as media with at least one
// audio stream and a positive duration. A stream-copy mux that produced a
// husk (headers but no playable audio) fails here rather than after the
// original is gone.
func (c *Committer) verify(ctx context.Context, path string) error {
	info, err := ffprobe.Inspect(ctx, c.probeBinary, path)
	if err != nil {
		return err
	}
	if info.AudioStreamCount() < 1 {
		return services.Wrap(services.ErrValidation, stage, "verify", "no audio stream in staged output", nil)
	}
	if info.DurationSeconds() <= 0 {
		return services.Wrap(services.ErrValidation, stage, "verify", "staged output reports no duration", nil)
	}
	return nil
}

func (c *Committer) discardStaged(plan muxplan.Plan) {
	if err := os.Remove(plan.Output); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("failed to remove staged output",
			logging.String("path", plan.Output),
			logging.Error(err),
		)
	}
	if plan.StageDir != "" {
		if err := os.RemoveAll(plan.StageDir); err != nil {
			c.logger.Warn("failed to remove stage directory",
				logging.String("path", plan.StageDir),
				logging.Error(err),
			)
		}
	}
}

// outputTail condenses captured ffmpeg output into a single short line for
// error messages. Plans run with -loglevel quiet, so anything present is
// usually the one line that matters.
func outputTail(result ffmpeg.Result) string {
	combined := strings.TrimSpace(result.Stderr)
	if combined == "" {
		combined = strings.TrimSpace(result.Stdout)
	}
	if combined == "" {
		return ""
	}
	lines := strings.Split(combined, "\n")
	tail := strings.TrimSpace(lines[len(lines)-1])
	const limit = 200
	if len(tail) > limit {
		tail = tail[:limit]
	}
	return tail
}
