package tags

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-flac/flacpicture/v2"
	"github.com/go-flac/flacvorbis/v2"
	flac "github.com/go-flac/go-flac/v2"
)

// Vorbis comment fields that carry lyric text. Field names are
// case-insensitive in Vorbis comments and taggers disagree on casing, so
// keys are matched uppercased.
var lyricFields = map[string]struct{}{
	"LYRICS":         {},
	"UNSYNCEDLYRICS": {},
}

// InspectFLAC reads lyric vorbis comments and picture blocks from a FLAC
// file's metadata.
func InspectFLAC(path string) (Report, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("parse flac: %w", err)
	}

	report := Report{Path: path, Format: "flac"}

	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			cmts, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				continue
			}
			for _, comment := range cmts.Comments {
				field, value, ok := strings.Cut(comment, "=")
				if !ok {
					continue
				}
				if _, lyric := lyricFields[strings.ToUpper(field)]; !lyric {
					continue
				}
				report.Lyrics = append(report.Lyrics, LyricsTag{
					Descriptor: strings.ToUpper(field),
					Characters: utf8.RuneCountInString(value),
				})
			}
		case flac.Picture:
			pic, err := flacpicture.ParseFromMetaDataBlock(*block)
			if err != nil {
				continue
			}
			report.Pictures = append(report.Pictures, PictureTag{
				MIME:        pic.MIME,
				Type:        pictureTypeName(int(pic.PictureType)),
				Description: pic.Description,
				SizeBytes:   len(pic.ImageData),
			})
		}
	}

	return report, nil
}
