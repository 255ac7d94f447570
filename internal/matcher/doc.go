// Package matcher pairs audio files with lyric and cover files by filename.
//
// Lyric matching is prefix-based: a .lrc file matches when its full name
// starts with the audio file's basename, so "track.lrc", "track.zh.lrc" and
// "trackX.lrc" all match "track.mp3". Cover matching is a looser three-way
// containment test between basenames. Both lookups sort their candidates
// first so results are stable across filesystems, and cover lookups report
// every candidate so ambiguous pairings can be rejected or logged.
package matcher
