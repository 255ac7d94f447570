package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"lyricmux/internal/config"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Open initializes or connects to the history database at paths.history_db.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.HistoryDB
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// RecordRunStart inserts a new run row. The caller assigns the run ID so log
// lines and history rows share the same identifier.
func (s *Store) RecordRunStart(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("record run start: empty run id")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}

	err := s.execWithRetry(ctx,
		`INSERT INTO runs (
            id, started_at, audio_dir, lyrics_dir, cover_dir, encoding,
            dry_run, skip_lyrics, keep_lyrics,
            accel_requested, accel_enabled, accel_detail
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		started.UTC().Format(time.RFC3339Nano),
		run.AudioDir,
		run.LyricsDir,
		run.CoverDir,
		run.Encoding,
		boolToInt(run.DryRun),
		boolToInt(run.SkipLyrics),
		boolToInt(run.KeepLyrics),
		boolToInt(run.AccelRequested),
		boolToInt(run.AccelEnabled),
		run.AccelDetail,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordFile appends a per-file outcome to a run.
func (s *Store) RecordFile(ctx context.Context, rec FileRecord) error {
	recorded := rec.RecordedAt
	if recorded.IsZero() {
		recorded = time.Now().UTC()
	}

	err := s.execWithRetry(ctx,
		`INSERT INTO run_files (
            run_id, path, outcome, detail, lyric_path, cover_path, variant, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.Path,
		string(rec.Outcome),
		rec.Detail,
		rec.LyricPath,
		rec.CoverPath,
		rec.Variant,
		recorded.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run file: %w", err)
	}
	return nil
}

// FinishRun stamps the run's finish time and stores the final counters.
func (s *Store) FinishRun(ctx context.Context, id string, totals Totals) error {
	err := s.execWithRetry(ctx,
		`UPDATE runs
            SET finished_at = ?, total = ?, processed = ?, skipped = ?, failed = ?
            WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		totals.Total,
		totals.Processed,
		totals.Skipped,
		totals.Failed,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// applies a default of 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches one run by identifier, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// ListFiles returns a run's per-file outcomes in recording order.
func (s *Store) ListFiles(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, path, outcome, detail, lyric_path, cover_path, variant, recorded_at
            FROM run_files WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run files: %w", err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var (
			rec         FileRecord
			outcome     string
			recordedRaw string
		)
		if err := rows.Scan(&rec.RunID, &rec.Path, &outcome, &rec.Detail,
			&rec.LyricPath, &rec.CoverPath, &rec.Variant, &recordedRaw); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		rec.Outcome = Outcome(outcome)
		rec.RecordedAt = parseTimestamp(recordedRaw)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}
