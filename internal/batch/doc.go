// Package batch orchestrates one embedding run end to end: environment
// checks, directory locking, stale-artifact sweep, discovery, and the
// per-file resolve/plan/commit cycle.
//
// Files are processed strictly in sorted order, one at a time, and each is
// modified at most once per run. A file that fails is recorded and the run
// moves on; only configuration problems, a missing ffmpeg, and a lock held
// by another run abort the whole batch. Every outcome is collected into the
// returned RunResult and, best-effort, into the history store. Runs with a
// configured ntfy topic announce their start and final counters.
package batch
