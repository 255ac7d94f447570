// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no lyricmux-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties with dispositions
//   - Format: container-level metadata (duration, size, bitrate, tags)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result provide convenient access to stream counts,
// attached-picture detection, duration parsing, and tag lookup.
package ffprobe
