// Package scan discovers processable audio files and sweeps leftover
// artifacts from interrupted runs.
//
// It also owns the naming conventions for pipeline artifacts (staged mux
// outputs, scratch lyric files, staging directories) so discovery, cleanup,
// and the packages that create those artifacts agree on what they look like.
package scan
