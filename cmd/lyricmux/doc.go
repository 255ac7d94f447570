// Package main hosts the lyricmux CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the batch run itself, embedded-tag
// inspection, run history browsing, environment preflight, and configuration
// scaffolding. It centralizes configuration resolution and logging setup so
// subcommands stay declarative; the embedding pipeline lives in the internal
// packages and is surfaced here, not implemented here.
package main
