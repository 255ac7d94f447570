package tags

import (
	"fmt"
	"unicode/utf8"

	"github.com/bogem/id3v2/v2"
)

// InspectMP3 reads USLT lyric frames and APIC picture frames from an MP3's
// ID3v2 tag. A file without a tag yields an empty report.
func InspectMP3(path string) (Report, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Report{}, fmt.Errorf("open id3v2 tag: %w", err)
	}
	defer t.Close()

	report := Report{Path: path, Format: "mp3"}

	for _, frame := range t.GetFrames(t.CommonID("Unsynchronised lyrics/text transcription")) {
		uslt, ok := frame.(id3v2.UnsynchronisedLyricsFrame)
		if !ok {
			continue
		}
		report.Lyrics = append(report.Lyrics, LyricsTag{
			Language:   uslt.Language,
			Descriptor: uslt.ContentDescriptor,
			Characters: utf8.RuneCountInString(uslt.Lyrics),
		})
	}

	for _, frame := range t.GetFrames(t.CommonID("Attached picture")) {
		pic, ok := frame.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		report.Pictures = append(report.Pictures, PictureTag{
			MIME:        pic.MimeType,
			Type:        pictureTypeName(int(pic.PictureType)),
			Description: pic.Description,
			SizeBytes:   len(pic.Picture),
		})
	}

	return report, nil
}
