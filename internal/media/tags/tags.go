package tags

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"

	"lyricmux/internal/scan"
)

// Embedded is the quick cross-format answer used by skip-tagged: does the
// file already carry lyrics and a picture.
type Embedded struct {
	HasLyrics  bool
	HasPicture bool
}

// Tagged reports whether both payloads are already present.
func (e Embedded) Tagged() bool {
	return e.HasLyrics && e.HasPicture
}

// LyricsTag describes one embedded lyrics entry.
type LyricsTag struct {
	// Language is the three-letter ID3 language code; empty for FLAC.
	Language string
	// Descriptor is the USLT content descriptor or the vorbis field name.
	Descriptor string
	// Characters counts the lyric text runes.
	Characters int
}

// PictureTag describes one embedded picture.
type PictureTag struct {
	MIME        string
	Type        string
	Description string
	SizeBytes   int
}

// Report lists everything embedded in one file.
type Report struct {
	Path     string
	Format   string
	Lyrics   []LyricsTag
	Pictures []PictureTag
}

// ProbeEmbedded answers whether path already carries lyrics and a picture,
// reading whichever tag format the container uses.
func ProbeEmbedded(path string) (Embedded, error) {
	f, err := os.Open(path)
	if err != nil {
		return Embedded{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Embedded{}, fmt.Errorf("read tags: %w", err)
	}
	return Embedded{
		HasLyrics:  strings.TrimSpace(m.Lyrics()) != "",
		HasPicture: m.Picture() != nil,
	}, nil
}

// Inspect reads the container-appropriate tag detail for path.
func Inspect(path string) (Report, error) {
	container, ok := scan.ContainerFor(path)
	if !ok {
		return Report{}, fmt.Errorf("unsupported container: %s", path)
	}
	switch container {
	case scan.ContainerMP3:
		return InspectMP3(path)
	default:
		return InspectFLAC(path)
	}
}

// Picture type names shared by ID3v2 APIC frames and FLAC picture blocks,
// which use the same numbering.
var pictureTypeNames = map[int]string{
	0: "other",
	1: "file icon",
	2: "other file icon",
	3: "front cover",
	4: "back cover",
	5: "leaflet",
	6: "media",
	7: "lead artist",
	8: "artist",
}

func pictureTypeName(t int) string {
	if name, ok := pictureTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type %d", t)
}
