// package services defines interface MetadataService for interacting with
// remote music-library HTTP APIs (Spotify).
package services

import "context"

// MetadataService defines the read-only surface of a music library provider
// used by the export pipeline. All listing calls are offset-paginated; callers
// own the pagination loop and its stopping conditions.
type MetadataService interface {
	// Authenticate performs OAuth authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*SpotifyUser, error)

	// SavedTracks retrieves a page of the user's saved (liked) tracks.
	SavedTracks(ctx context.Context, limit, offset int) (*SavedTracksPage, error)

	// UserPlaylists retrieves a page of the user's playlists.
	UserPlaylists(ctx context.Context, limit, offset int) (*PlaylistsPage, error)

	// PlaylistItems retrieves a page of a playlist's tracks.
	PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*PlaylistItemsPage, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}
