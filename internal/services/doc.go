// Package services defines shared utilities consumed by the batch pipeline
// and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and the current audio file
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into batch-fatal and per-file recoverable classes.
package services
