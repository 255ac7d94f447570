package muxplan

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"lyricmux/internal/scan"
)

func mp3Source() scan.File {
	return scan.File{
		Path:      "/music/song.mp3",
		Name:      "song.mp3",
		Base:      "song",
		Container: scan.ContainerMP3,
	}
}

func flacSource() scan.File {
	return scan.File{
		Path:      "/music/song.flac",
		Name:      "song.flac",
		Base:      "song",
		Container: scan.ContainerFLAC,
	}
}

func TestBuildMP3Variants(t *testing.T) {
	tests := []struct {
		name        string
		req         Request
		wantVariant Variant
		wantArgs    []string
	}{
		{
			name: "lyrics and cover accelerated",
			req: Request{
				Source:        mp3Source(),
				ScratchLyrics: "/scratch/l.lrc",
				LyricText:     "text",
				CoverPath:     "/covers/song.jpg",
				Accel:         true,
			},
			wantVariant: MP3LyricsCover,
			wantArgs: []string{
				"-y", "-i", "/music/song.mp3", "-i", "/scratch/l.lrc", "-i", "/covers/song.jpg",
				"-map", "0:a", "-map", "1", "-map", "2",
				"-c:a", "copy", "-c:s", "copy",
				"-disposition:1", "lyrics", "-disposition:2", "attached_pic",
				"-loglevel", "quiet", "/music/song.temp.mp3",
			},
		},
		{
			name: "lyrics and cover software",
			req: Request{
				Source:        mp3Source(),
				ScratchLyrics: "/scratch/l.lrc",
				LyricText:     "text",
				CoverPath:     "/covers/song.jpg",
			},
			wantVariant: MP3LyricsCover,
			wantArgs: []string{
				"-y", "-i", "/music/song.mp3", "-i", "/scratch/l.lrc", "-i", "/covers/song.jpg",
				"-map", "0:a", "-map", "1", "-map", "2",
				"-c", "copy",
				"-disposition:1", "lyrics", "-disposition:2", "attached_pic",
				"-loglevel", "quiet", "/music/song.temp.mp3",
			},
		},
		{
			name: "lyrics only accelerated",
			req: Request{
				Source:        mp3Source(),
				ScratchLyrics: "/scratch/l.lrc",
				LyricText:     "text",
				Accel:         true,
			},
			wantVariant: MP3Lyrics,
			wantArgs: []string{
				"-y", "-i", "/music/song.mp3", "-i", "/scratch/l.lrc",
				"-map", "0:a", "-map", "1",
				"-c:a", "copy", "-c:s", "copy",
				"-disposition:1", "lyrics",
				"-loglevel", "quiet", "/music/song.temp.mp3",
			},
		},
		{
			name: "lyrics only software",
			req: Request{
				Source:        mp3Source(),
				ScratchLyrics: "/scratch/l.lrc",
				LyricText:     "text",
			},
			wantVariant: MP3Lyrics,
			wantArgs: []string{
				"-y", "-i", "/music/song.mp3", "-i", "/scratch/l.lrc",
				"-map", "0", "-map", "1",
				"-c", "copy",
				"-disposition:1", "lyrics",
				"-loglevel", "quiet", "/music/song.temp.mp3",
			},
		},
		{
			name: "cover only accelerated",
			req: Request{
				Source:    mp3Source(),
				CoverPath: "/covers/song.jpg",
				Accel:     true,
			},
			wantVariant: MP3Cover,
			wantArgs: []string{
				"-y", "-i", "/music/song.mp3", "-i", "/covers/song.jpg",
				"-map", "0:a", "-map", "1",
				"-c:a", "copy", "-c:v", "copy",
				"-disposition:1", "attached_pic",
				"-loglevel", "quiet", "/music/song.temp.mp3",
			},
		},
		{
			name: "cover only software",
			req: Request{
				Source:    mp3Source(),
				CoverPath: "/covers/song.jpg",
			},
			wantVariant: MP3Cover,
			wantArgs: []string{
				"-y", "-i", "/music/song.mp3", "-i", "/covers/song.jpg",
				"-map", "0", "-map", "1",
				"-c", "copy",
				"-disposition:1", "attached_pic",
				"-loglevel", "quiet", "/music/song.temp.mp3",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Build(tt.req)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if plan.Variant != tt.wantVariant {
				t.Errorf("Variant = %q, want %q", plan.Variant, tt.wantVariant)
			}
			if !reflect.DeepEqual(plan.Args, tt.wantArgs) {
				t.Errorf("Args mismatch\n got: %q\nwant: %q", plan.Args, tt.wantArgs)
			}
			if plan.Source != "/music/song.mp3" {
				t.Errorf("Source = %q", plan.Source)
			}
			if plan.Output != "/music/song.temp.mp3" {
				t.Errorf("Output = %q", plan.Output)
			}
			if plan.StageDir != "" {
				t.Errorf("StageDir = %q, want empty for mp3", plan.StageDir)
			}
		})
	}
}

func TestBuildMP3PreservesExtensionCase(t *testing.T) {
	src := scan.File{Path: "/music/SONG.MP3", Name: "SONG.MP3", Base: "SONG", Container: scan.ContainerMP3}
	plan, err := Build(Request{Source: src, CoverPath: "/covers/a.jpg"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if plan.Output != "/music/SONG.temp.MP3" {
		t.Errorf("Output = %q, want %q", plan.Output, "/music/SONG.temp.MP3")
	}
}

func TestBuildFLACLyricsCover(t *testing.T) {
	req := Request{
		Source:     flacSource(),
		LyricText:  "[00:01.00]line",
		CoverPath:  "/covers/song.png",
		StageToken: "feedface",
	}

	plan, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if plan.Variant != FLACLyricsCover {
		t.Errorf("Variant = %q", plan.Variant)
	}

	wantStage := filepath.Join("/music", "lyricmux-stage-feedface")
	if plan.StageDir != wantStage {
		t.Errorf("StageDir = %q, want %q", plan.StageDir, wantStage)
	}
	if plan.Output != filepath.Join(wantStage, "song.flac") {
		t.Errorf("Output = %q", plan.Output)
	}

	wantArgs := []string{
		"-y", "-i", "/music/song.flac", "-i", "/covers/song.png",
		"-c", "copy",
		"-metadata", "lyrics=[00:01.00]line",
		"-metadata:s:v", `title="Album cover"`,
		"-metadata:s:v", `comment="Cover (front)"`,
		"-loglevel", "quiet", plan.Output,
	}
	if !reflect.DeepEqual(plan.Args, wantArgs) {
		t.Errorf("Args mismatch\n got: %q\nwant: %q", plan.Args, wantArgs)
	}
}

func TestBuildFLACLyricsOnly(t *testing.T) {
	plan, err := Build(Request{Source: flacSource(), LyricText: "text", StageToken: "tok"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if plan.Variant != FLACLyrics {
		t.Errorf("Variant = %q", plan.Variant)
	}

	wantArgs := []string{
		"-y", "-i", "/music/song.flac",
		"-c", "copy",
		"-metadata", "lyrics=text",
		"-loglevel", "quiet", plan.Output,
	}
	if !reflect.DeepEqual(plan.Args, wantArgs) {
		t.Errorf("Args mismatch\n got: %q\nwant: %q", plan.Args, wantArgs)
	}
}

func TestBuildFLACCoverOnly(t *testing.T) {
	plan, err := Build(Request{Source: flacSource(), CoverPath: "/covers/c.jpg", StageToken: "tok"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if plan.Variant != FLACCover {
		t.Errorf("Variant = %q", plan.Variant)
	}

	wantArgs := []string{
		"-y", "-i", "/music/song.flac", "-i", "/covers/c.jpg",
		"-c", "copy",
		"-metadata:s:v", `title="Album cover"`,
		"-metadata:s:v", `comment="Cover (front)"`,
		"-loglevel", "quiet", plan.Output,
	}
	if !reflect.DeepEqual(plan.Args, wantArgs) {
		t.Errorf("Args mismatch\n got: %q\nwant: %q", plan.Args, wantArgs)
	}
}

func TestBuildFLACIgnoresAccel(t *testing.T) {
	soft, err := Build(Request{Source: flacSource(), LyricText: "t", StageToken: "tok"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	accel, err := Build(Request{Source: flacSource(), LyricText: "t", StageToken: "tok", Accel: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(soft.Args, accel.Args) {
		t.Error("acceleration changed the flac plan")
	}
}

func TestBuildNothingToEmbed(t *testing.T) {
	_, err := Build(Request{Source: mp3Source()})
	if !errors.Is(err, ErrNothingToEmbed) {
		t.Fatalf("Build error = %v, want ErrNothingToEmbed", err)
	}
}

func TestBuildUnsupportedContainer(t *testing.T) {
	src := scan.File{Path: "/music/a.wav", Name: "a.wav", Base: "a", Container: "wav"}
	if _, err := Build(Request{Source: src, LyricText: "t"}); err == nil {
		t.Fatal("Build should reject an unsupported container")
	}
}

func TestBuildDeterministicWithToken(t *testing.T) {
	req := Request{Source: flacSource(), LyricText: "t", CoverPath: "/c.jpg", StageToken: "same"}
	a, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical requests produced different plans: %+v vs %+v", a, b)
	}
}

func TestBuildFreshTokenWhenUnset(t *testing.T) {
	req := Request{Source: flacSource(), LyricText: "t"}
	a, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.StageDir == b.StageDir {
		t.Error("expected unique stage directories without an explicit token")
	}
	for _, plan := range []Plan{a, b} {
		if !strings.HasPrefix(filepath.Base(plan.StageDir), "lyricmux-stage-") {
			t.Errorf("StageDir = %q", plan.StageDir)
		}
	}
}
