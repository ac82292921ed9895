package fetch

import (
	"os"

	"github.com/bogem/id3v2/v2"
	"github.com/desertthunder/crate/internal/tracks"
)

// Tagger writes ID3v2 frames onto a downloaded audio file: title, artist,
// album when present, year from the release date, and a front-cover
// picture when artwork was fetched.
type Tagger struct{}

// Tag opens the file at path and writes frames from the row. artworkPath
// points at a JPEG on disk; empty means no picture frame.
func (Tagger) Tag(path string, row tracks.Row, artworkPath string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetTitle(row.TrackName)
	tag.SetArtist(row.ArtistNames)
	if row.AlbumName != "" {
		tag.SetAlbum(row.AlbumName)
	}
	if year := YearFromReleaseDate(row.AlbumReleaseDate); year != "" {
		tag.AddTextFrame("TYER", id3v2.EncodingUTF8, year)
	}

	if artworkPath != "" {
		artwork, err := os.ReadFile(artworkPath)
		if err != nil {
			return err
		}
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     artwork,
		})
	}

	return tag.Save()
}

// YearFromReleaseDate extracts the leading run of digits from a release
// date such as "1991-11-05". A date with no leading digits ("unknown",
// "") yields no year.
func YearFromReleaseDate(date string) string {
	end := 0
	for end < len(date) && date[end] >= '0' && date[end] <= '9' {
		end++
	}
	return date[:end]
}
