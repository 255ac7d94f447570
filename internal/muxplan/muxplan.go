package muxplan

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"lyricmux/internal/scan"
)

// ErrNothingToEmbed is returned when a request carries neither lyrics nor a
// cover. Callers short-circuit such files before planning, so hitting this
// is a programming error guard rather than a normal flow.
var ErrNothingToEmbed = errors.New("nothing to embed")

// Variant names the mux strategy a plan was built from, keyed by container
// and payload combination. It appears in logs and history records.
type Variant string

const (
	MP3LyricsCover  Variant = "mp3-lyrics-cover"
	MP3Lyrics       Variant = "mp3-lyrics"
	MP3Cover        Variant = "mp3-cover"
	FLACLyricsCover Variant = "flac-lyrics-cover"
	FLACLyrics      Variant = "flac-lyrics"
	FLACCover       Variant = "flac-cover"
)

// Request describes one file's mux inputs. ScratchLyrics is the path to the
// UTF-8 scratch lyric file and is empty when no lyrics matched; LyricText is
// the decoded text itself, used by FLAC plans which embed lyrics as a tag
// value rather than a stream. Accel is the negotiated hardware acceleration
// decision. StageToken names the FLAC staging directory; when empty a fresh
// token is drawn, so supply one to make planning deterministic.
type Request struct {
	Source        scan.File
	ScratchLyrics string
	LyricText     string
	CoverPath     string
	Accel         bool
	StageToken    string
}

func (r Request) hasLyrics() bool { return r.ScratchLyrics != "" || r.LyricText != "" }
func (r Request) hasCover() bool  { return r.CoverPath != "" }

// Plan is a fully resolved ffmpeg invocation. Source is the original file
// the staged Output replaces after verification. StageDir is set only for
// FLAC plans, whose output is staged in its own directory.
type Plan struct {
	Variant  Variant
	Args     []string
	Source   string
	Output   string
	StageDir string
}

type planKey struct {
	container scan.Container
	lyrics    bool
	cover     bool
}

type planEntry struct {
	variant Variant
	args    func(req Request, output string) []string
}

// Every payload combination has its own arg builder so each can be tested
// against the exact command shape it must produce.
var planTable = map[planKey]planEntry{
	{scan.ContainerMP3, true, true}:   {MP3LyricsCover, mp3LyricsCoverArgs},
	{scan.ContainerMP3, true, false}:  {MP3Lyrics, mp3LyricsArgs},
	{scan.ContainerMP3, false, true}:  {MP3Cover, mp3CoverArgs},
	{scan.ContainerFLAC, true, true}:  {FLACLyricsCover, flacArgs},
	{scan.ContainerFLAC, true, false}: {FLACLyrics, flacArgs},
	{scan.ContainerFLAC, false, true}: {FLACCover, flacArgs},
}

// Build resolves a request into a plan. It touches no files; staging paths
// are computed, not created.
func Build(req Request) (Plan, error) {
	if !req.hasLyrics() && !req.hasCover() {
		return Plan{}, ErrNothingToEmbed
	}

	entry, ok := planTable[planKey{req.Source.Container, req.hasLyrics(), req.hasCover()}]
	if !ok {
		return Plan{}, fmt.Errorf("unsupported container %q", req.Source.Container)
	}

	plan := Plan{Variant: entry.variant, Source: req.Source.Path}
	switch req.Source.Container {
	case scan.ContainerMP3:
		plan.Output = stagedMP3Path(req.Source)
	case scan.ContainerFLAC:
		token := req.StageToken
		if token == "" {
			token = uuid.NewString()
		}
		plan.StageDir = filepath.Join(filepath.Dir(req.Source.Path), scan.StageDirPrefix+token)
		plan.Output = filepath.Join(plan.StageDir, req.Source.Name)
	}
	plan.Args = entry.args(req, plan.Output)
	return plan, nil
}

// stagedMP3Path places the staged output beside the source as
// <base>.temp<ext>, preserving the extension's original case.
func stagedMP3Path(f scan.File) string {
	ext := filepath.Ext(f.Name)
	return filepath.Join(filepath.Dir(f.Path), f.Base+".temp"+ext)
}

func mp3LyricsCoverArgs(req Request, output string) []string {
	args := []string{"-y", "-i", req.Source.Path, "-i", req.ScratchLyrics, "-i", req.CoverPath}
	if req.Accel {
		args = append(args,
			"-map", "0:a", "-map", "1", "-map", "2",
			"-c:a", "copy", "-c:s", "copy",
			"-disposition:1", "lyrics", "-disposition:2", "attached_pic",
		)
	} else {
		args = append(args,
			"-map", "0:a", "-map", "1", "-map", "2",
			"-c", "copy",
			"-disposition:1", "lyrics", "-disposition:2", "attached_pic",
		)
	}
	return append(args, "-loglevel", "quiet", output)
}

func mp3LyricsArgs(req Request, output string) []string {
	args := []string{"-y", "-i", req.Source.Path, "-i", req.ScratchLyrics}
	if req.Accel {
		args = append(args,
			"-map", "0:a", "-map", "1",
			"-c:a", "copy", "-c:s", "copy",
			"-disposition:1", "lyrics",
		)
	} else {
		args = append(args,
			"-map", "0", "-map", "1",
			"-c", "copy",
			"-disposition:1", "lyrics",
		)
	}
	return append(args, "-loglevel", "quiet", output)
}

func mp3CoverArgs(req Request, output string) []string {
	args := []string{"-y", "-i", req.Source.Path, "-i", req.CoverPath}
	if req.Accel {
		args = append(args,
			"-map", "0:a", "-map", "1",
			"-c:a", "copy", "-c:v", "copy",
			"-disposition:1", "attached_pic",
		)
	} else {
		args = append(args,
			"-map", "0", "-map", "1",
			"-c", "copy",
			"-disposition:1", "attached_pic",
		)
	}
	return append(args, "-loglevel", "quiet", output)
}

// flacArgs covers all three FLAC combinations; lyrics ride as a metadata tag
// and the cover as a mapped video stream, so hardware acceleration never
// applies. The quotes inside the stream metadata values are literal, part of
// the value ffmpeg receives.
func flacArgs(req Request, output string) []string {
	args := []string{"-y", "-i", req.Source.Path}
	if req.hasCover() {
		args = append(args, "-i", req.CoverPath)
	}
	args = append(args, "-c", "copy")
	if req.hasLyrics() {
		args = append(args, "-metadata", "lyrics="+req.LyricText)
	}
	if req.hasCover() {
		args = append(args,
			"-metadata:s:v", `title="Album cover"`,
			"-metadata:s:v", `comment="Cover (front)"`,
		)
	}
	return append(args, "-loglevel", "quiet", output)
}
