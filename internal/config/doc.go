// Package config loads, normalizes, and validates lyricmux configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and batch pipeline need, so the audio/lyrics/cover directories, ffmpeg
// binaries, and lyric encoding are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
