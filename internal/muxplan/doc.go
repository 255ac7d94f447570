// Package muxplan turns a matched audio file and its payloads into a
// concrete ffmpeg argument list.
//
// Planning is separated from execution: Build is pure, so every container
// and payload combination can be asserted against the exact command it
// produces without touching ffmpeg. MP3 payloads travel as mapped streams
// (lyrics as a subtitle stream, the cover as an attached picture); FLAC
// lyrics travel as a vorbis comment and the cover as a picture stream.
// Outputs are always staged, never written over the source; committing the
// staged file is the commit package's job.
package muxplan
