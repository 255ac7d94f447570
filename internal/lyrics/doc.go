// Package lyrics loads .lrc lyric files into UTF-8 text and manages the
// scratch copies handed to ffmpeg.
//
// Lyric files in the wild arrive in a mix of encodings, most commonly GB2312
// and GBK for Chinese releases, with or without byte order marks and often
// mislabeled. Loading decodes against the configured encoding first and
// falls back to content-based detection, replacing malformed sequences
// instead of failing.
package lyrics
