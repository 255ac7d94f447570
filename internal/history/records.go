package history

import (
	"database/sql"
	"time"
)

// Outcome classifies what happened to one file during a run.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	// OutcomePlanned marks dry-run files: a plan was built but nothing ran.
	OutcomePlanned Outcome = "planned"
)

// Run is one batch invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in flight
	AudioDir   string
	LyricsDir  string
	CoverDir   string
	Encoding   string
	DryRun     bool
	SkipLyrics bool
	KeepLyrics bool

	AccelRequested bool
	AccelEnabled   bool
	AccelDetail    string

	Totals
}

// Totals are the final counters of a finished run.
type Totals struct {
	Total     int
	Processed int
	Skipped   int
	Failed    int
}

// FileRecord is one file's outcome within a run.
type FileRecord struct {
	RunID      string
	Path       string
	Outcome    Outcome
	Detail     string
	LyricPath  string
	CoverPath  string
	Variant    string
	RecordedAt time.Time
}

const runColumns = "id, started_at, finished_at, audio_dir, lyrics_dir, cover_dir, encoding, " +
	"dry_run, skip_lyrics, keep_lyrics, accel_requested, accel_enabled, accel_detail, " +
	"total, processed, skipped, failed"

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
		dryRun      int
		skipLyrics  int
		keepLyrics  int
		accelReq    int
		accelOn     int
	)
	if err := scanner.Scan(
		&run.ID,
		&startedRaw,
		&finishedRaw,
		&run.AudioDir,
		&run.LyricsDir,
		&run.CoverDir,
		&run.Encoding,
		&dryRun,
		&skipLyrics,
		&keepLyrics,
		&accelReq,
		&accelOn,
		&run.AccelDetail,
		&run.Total,
		&run.Processed,
		&run.Skipped,
		&run.Failed,
	); err != nil {
		return Run{}, err
	}

	run.StartedAt = parseTimestamp(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTimestamp(finishedRaw.String)
	}
	run.DryRun = dryRun != 0
	run.SkipLyrics = skipLyrics != 0
	run.KeepLyrics = keepLyrics != 0
	run.AccelRequested = accelReq != 0
	run.AccelEnabled = accelOn != 0
	return run, nil
}
