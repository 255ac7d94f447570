package matcher

import (
	"reflect"
	"testing"
)

func TestFindLyricPrefixRule(t *testing.T) {
	names := []string{"track.zh.lrc", "album.txt", "other.lrc", "track.lrc"}

	tests := []struct {
		name string
		base string
		want string
	}{
		{"exact basename", "other", "other.lrc"},
		{"prefix picks sorted first", "track", "track.lrc"},
		{"language suffix", "track.zh", "track.zh.lrc"},
		{"no match", "missing", ""},
		{"base longer than candidate", "trackextended", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindLyric(tt.base, names); got != tt.want {
				t.Errorf("FindLyric(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestFindLyricIgnoresNonLyricFiles(t *testing.T) {
	names := []string{"track.txt", "track.srt", "track.mp3"}
	if got := FindLyric("track", names); got != "" {
		t.Errorf("FindLyric() = %q, want no match", got)
	}
}

func TestFindLyricDeterministicAcrossListingOrder(t *testing.T) {
	forward := []string{"track (1).lrc", "track.lrc"}
	reversed := []string{"track.lrc", "track (1).lrc"}

	a := FindLyric("track", forward)
	b := FindLyric("track", reversed)
	if a != b {
		t.Fatalf("FindLyric order-dependent: %q vs %q", a, b)
	}
	if a != "track (1).lrc" {
		t.Errorf("FindLyric() = %q, want sorted-first %q", a, "track (1).lrc")
	}
}

func TestFindLyricCaseInsensitiveExtension(t *testing.T) {
	if got := FindLyric("track", []string{"track.LRC"}); got != "track.LRC" {
		t.Errorf("FindLyric() = %q, want %q", got, "track.LRC")
	}
}

func TestFindCoverContainmentRule(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		names []string
		want  string
	}{
		{"exact", "track", []string{"track.jpg"}, "track.jpg"},
		{"cover prefix of base", "track (live)", []string{"track.png"}, "track.png"},
		{"base prefix of cover", "track", []string{"track front.jpeg"}, "track front.jpeg"},
		{"no containment", "track", []string{"album.jpg"}, ""},
		{"ignores non-image", "track", []string{"track.pdf", "track.lrc"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindCover(tt.base, tt.names)
			if got.Name != tt.want {
				t.Errorf("FindCover(%q).Name = %q, want %q", tt.base, got.Name, tt.want)
			}
			if tt.want != "" && !got.Found() {
				t.Errorf("FindCover(%q).Found() = false, want true", tt.base)
			}
		})
	}
}

func TestFindCoverReportsAmbiguity(t *testing.T) {
	names := []string{"track back.jpg", "track.jpg", "track front.png"}

	got := FindCover("track", names)
	if !got.Ambiguous {
		t.Fatal("FindCover() Ambiguous = false, want true")
	}
	if got.Name != "track back.jpg" {
		t.Errorf("FindCover().Name = %q, want sorted-first %q", got.Name, "track back.jpg")
	}
	// Sorted order: the space in "track front" sorts before the dot in
	// "track.jpg".
	want := []string{"track back.jpg", "track front.png", "track.jpg"}
	if !reflect.DeepEqual(got.Candidates, want) {
		t.Errorf("FindCover().Candidates = %v, want %v", got.Candidates, want)
	}
}

func TestFindCoverSingleMatchNotAmbiguous(t *testing.T) {
	got := FindCover("track", []string{"track.jpg", "unrelated.png"})
	if got.Ambiguous {
		t.Error("FindCover() Ambiguous = true, want false for single match")
	}
	if len(got.Candidates) != 1 {
		t.Errorf("FindCover() candidates = %d, want 1", len(got.Candidates))
	}
}

func TestFindCoverShortNumericBasename(t *testing.T) {
	// "1.jpg" has basename "1", a prefix of "1 - intro", so it matches even
	// though it may belong to a different track. The candidate list lets the
	// caller reject it.
	got := FindCover("1 - intro", []string{"1.jpg", "12.jpg"})
	if got.Name != "1.jpg" {
		t.Errorf("FindCover().Name = %q, want %q", got.Name, "1.jpg")
	}
	if got.Ambiguous {
		t.Error("FindCover() Ambiguous = true, want false: \"12\" is not a prefix of \"1 - intro\"")
	}
}

func TestIsLyric(t *testing.T) {
	if !IsLyric("song.lrc") || !IsLyric("song.LRC") {
		t.Error("IsLyric() should accept .lrc case-insensitively")
	}
	if IsLyric("song.txt") || IsLyric("lrc") {
		t.Error("IsLyric() accepted a non-lyric name")
	}
}

func TestIsCover(t *testing.T) {
	for _, name := range []string{"a.jpg", "a.JPEG", "a.png", "a.bmp", "a.gif"} {
		if !IsCover(name) {
			t.Errorf("IsCover(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"a.tiff", "a.webp", "a.lrc", "jpg"} {
		if IsCover(name) {
			t.Errorf("IsCover(%q) = true, want false", name)
		}
	}
}
