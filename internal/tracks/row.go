// package tracks defines the flattened track row model shared by the export
// and download pipelines, along with its CSV materialization.
package tracks

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/desertthunder/crate/internal/services"
)

// Row is a flattened library item. One row per exported track; a track that
// appears in several playlists produces one row per playlist, intentionally.
type Row struct {
	TrackURI         string
	TrackName        string
	ArtistURIs       string
	ArtistNames      string
	AlbumURI         string
	AlbumName        string
	AlbumArtistURIs  string
	AlbumArtistNames string
	AlbumReleaseDate string
	AlbumImageURL    string
	DiscNumber       string
	TrackNumber      string
	DurationMS       string
	PreviewURL       string
	Explicit         string
	Popularity       string
	ISRC             string
	AddedBy          string
	AddedAt          string
	PlaylistName     string
}

// Header returns the fixed CSV column order. Readers locate columns by these
// names, writers emit them in this order.
func Header() []string {
	return []string{
		"Track URI", "Track Name", "Artist URI(s)", "Artist Name(s)",
		"Album URI", "Album Name", "Album Artist URI(s)", "Album Artist Name(s)",
		"Album Release Date", "Album Image URL", "Disc Number", "Track Number",
		"Track Duration (ms)", "Track Preview URL", "Explicit", "Popularity",
		"ISRC", "Added By", "Added At", "Playlist Name",
	}
}

func (r Row) record() []string {
	return []string{
		r.TrackURI, r.TrackName, r.ArtistURIs, r.ArtistNames,
		r.AlbumURI, r.AlbumName, r.AlbumArtistURIs, r.AlbumArtistNames,
		r.AlbumReleaseDate, r.AlbumImageURL, r.DiscNumber, r.TrackNumber,
		r.DurationMS, r.PreviewURL, r.Explicit, r.Popularity,
		r.ISRC, r.AddedBy, r.AddedAt, r.PlaylistName,
	}
}

// FromSavedItem flattens a saved-track item into a Row. Returns ok=false when
// the item has no underlying track; such items are filtered, not errors.
func FromSavedItem(item services.SpotifySavedTrack, playlistName string) (Row, bool) {
	return fromTrack(item.Track, "", item.AddedAt, playlistName)
}

// FromPlaylistItem flattens a playlist item into a Row. Returns ok=false when
// the item has no underlying track.
func FromPlaylistItem(item services.SpotifyPlaylistItem, playlistName string) (Row, bool) {
	return fromTrack(item.Track, item.AddedBy.ID, item.AddedAt, playlistName)
}

func fromTrack(track *services.SpotifyTrack, addedBy, addedAt, playlistName string) (Row, bool) {
	if track == nil {
		return Row{}, false
	}

	artistURIs := make([]string, 0, len(track.Artists))
	artistNames := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		artistURIs = append(artistURIs, a.URI)
		artistNames = append(artistNames, a.Name)
	}

	album := track.Album
	albumArtistURIs := make([]string, 0, len(album.Artists))
	albumArtistNames := make([]string, 0, len(album.Artists))
	for _, a := range album.Artists {
		albumArtistURIs = append(albumArtistURIs, a.URI)
		albumArtistNames = append(albumArtistNames, a.Name)
	}

	imageURL := ""
	if len(album.Images) > 0 {
		imageURL = album.Images[0].URL
	}

	return Row{
		TrackURI:         track.URI,
		TrackName:        track.Name,
		ArtistURIs:       strings.Join(artistURIs, ", "),
		ArtistNames:      strings.Join(artistNames, ", "),
		AlbumURI:         album.URI,
		AlbumName:        album.Name,
		AlbumArtistURIs:  strings.Join(albumArtistURIs, ", "),
		AlbumArtistNames: strings.Join(albumArtistNames, ", "),
		AlbumReleaseDate: album.ReleaseDate,
		AlbumImageURL:    imageURL,
		DiscNumber:       strconv.Itoa(track.DiscNumber),
		TrackNumber:      strconv.Itoa(track.TrackNumber),
		DurationMS:       strconv.Itoa(track.DurationMS),
		PreviewURL:       track.PreviewURL,
		Explicit:         strconv.FormatBool(track.Explicit),
		Popularity:       strconv.Itoa(track.Popularity),
		ISRC:             track.ExternalIDs.ISRC,
		AddedBy:          addedBy,
		AddedAt:          addedAt,
		PlaylistName:     playlistName,
	}, true
}

// SanitizeFilename strips every character outside letters, digits, space,
// hyphen, and underscore, then trims surrounding whitespace. Sanitized names
// may collide or come out empty; callers decide the disambiguation policy.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
