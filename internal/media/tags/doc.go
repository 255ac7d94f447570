// Package tags reads embedded lyric and picture metadata from audio files.
//
// It is strictly read-only: the pipeline uses it to decide whether a file is
// already tagged and to power the inspect command. All tag writing goes
// through ffmpeg so the written form is identical whether a payload arrives
// via stream mapping or metadata flags.
package tags
