// package export implements the metadata export run: paginate a user's
// library, flatten items into track rows, and materialize one CSV per
// playlist plus one for liked tracks.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tracks"
	"golang.org/x/time/rate"
)

const (
	savedTracksPageSize   = 50
	playlistsPageSize     = 50
	playlistItemsPageSize = 100

	// LikedSongsName is the pseudo-playlist name given to saved tracks.
	LikedSongsName = "Liked Songs"
)

// Opts contains configuration for an export run.
type Opts struct {
	RateLimit float64 // API requests per second (default: 5)
}

// FileResult describes one written CSV.
type FileResult struct {
	PlaylistID   string
	PlaylistName string
	Path         string
	Rows         int
}

// Result summarizes an export run.
type Result struct {
	User      string
	Files     []FileResult
	TotalRows int
	Dropped   int      // items filtered out (no underlying track)
	Failed    []string // playlist names whose fetch failed
}

// Exporter drives a single export run against a metadata service.
//
// Credentials live in the service; the exporter itself is stateless across
// runs and safe to discard after Run returns.
type Exporter struct {
	svc     services.MetadataService
	logger  *log.Logger
	limiter *rate.Limiter
}

// NewExporter creates an Exporter for the given authenticated service.
func NewExporter(svc services.MetadataService, logger *log.Logger, opts Opts) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	return &Exporter{
		svc:     svc,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}
}

// Run exports the user's liked tracks and every playlist to CSV files under
// outputDir. Authentication problems surface before anything is written; a
// playlist whose fetch fails is recorded and skipped, not fatal.
func (e *Exporter) Run(ctx context.Context, outputDir string) (*Result, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: metadata service not initialized", shared.ErrNotAuthenticated)
	}
	if outputDir == "" {
		outputDir = "playlists"
	}

	user, err := e.svc.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &Result{User: user.DisplayName}
	e.logger.Infof("logged in as %s", user.DisplayName)

	claimed := map[string]bool{}

	liked, dropped, err := e.fetchSavedRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch saved tracks: %w", err)
	}
	result.Dropped += dropped

	likedPath := filepath.Join(outputDir, "Liked_Songs.csv")
	claimed["Liked_Songs"] = true
	if err := tracks.WriteCSV(likedPath, liked); err != nil {
		return nil, err
	}
	result.Files = append(result.Files, FileResult{PlaylistName: LikedSongsName, Path: likedPath, Rows: len(liked)})
	result.TotalRows += len(liked)
	e.logger.Infof("exported %d liked tracks to %s", len(liked), likedPath)

	playlists, err := e.fetchPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}

	for _, pl := range playlists {
		rows, dropped, err := e.fetchPlaylistRows(ctx, pl)
		if err != nil {
			e.logger.Errorf("skipping playlist %q: %v", pl.Name, err)
			result.Failed = append(result.Failed, pl.Name)
			continue
		}
		result.Dropped += dropped

		filename := exportFilename(pl, claimed)
		path := filepath.Join(outputDir, filename)
		if err := tracks.WriteCSV(path, rows); err != nil {
			e.logger.Errorf("skipping playlist %q: %v", pl.Name, err)
			result.Failed = append(result.Failed, pl.Name)
			continue
		}

		result.Files = append(result.Files, FileResult{
			PlaylistID:   pl.ID,
			PlaylistName: pl.Name,
			Path:         path,
			Rows:         len(rows),
		})
		result.TotalRows += len(rows)
		e.logger.Infof("exported %d tracks to %s", len(rows), path)
	}

	return result, nil
}

// fetchSavedRows pages through the user's saved tracks and flattens them.
func (e *Exporter) fetchSavedRows(ctx context.Context) ([]tracks.Row, int, error) {
	var rows []tracks.Row
	dropped := 0

	err := e.paginate(ctx, savedTracksPageSize, func(limit, offset int) (int, *string, error) {
		page, err := e.svc.SavedTracks(ctx, limit, offset)
		if err != nil {
			return 0, nil, err
		}
		for _, item := range page.Items {
			if row, ok := tracks.FromSavedItem(item, LikedSongsName); ok {
				rows = append(rows, row)
			} else {
				dropped++
			}
		}
		return len(page.Items), page.Next, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return rows, dropped, nil
}

// fetchPlaylists pages through the user's playlists.
func (e *Exporter) fetchPlaylists(ctx context.Context) ([]services.SpotifySimplePlaylist, error) {
	var playlists []services.SpotifySimplePlaylist

	err := e.paginate(ctx, playlistsPageSize, func(limit, offset int) (int, *string, error) {
		page, err := e.svc.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return 0, nil, err
		}
		playlists = append(playlists, page.Items...)
		return len(page.Items), page.Next, nil
	})
	if err != nil {
		return nil, err
	}

	return playlists, nil
}

// fetchPlaylistRows pages through one playlist's items and flattens them.
func (e *Exporter) fetchPlaylistRows(ctx context.Context, pl services.SpotifySimplePlaylist) ([]tracks.Row, int, error) {
	var rows []tracks.Row
	dropped := 0

	err := e.paginate(ctx, playlistItemsPageSize, func(limit, offset int) (int, *string, error) {
		page, err := e.svc.PlaylistItems(ctx, pl.ID, limit, offset)
		if err != nil {
			return 0, nil, err
		}
		for _, item := range page.Items {
			if row, ok := tracks.FromPlaylistItem(item, pl.Name); ok {
				rows = append(rows, row)
			} else {
				dropped++
			}
		}
		return len(page.Items), page.Next, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return rows, dropped, nil
}

// paginate drives an offset pagination loop. An empty page is the hard stop
// regardless of the provider's next cursor; otherwise the loop continues
// until the cursor is exhausted. Each page fetch waits on the rate limiter.
func (e *Exporter) paginate(ctx context.Context, pageSize int, fetch func(limit, offset int) (int, *string, error)) error {
	offset := 0
	for {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}

		count, next, err := fetch(pageSize, offset)
		if err != nil {
			return err
		}

		if count == 0 {
			return nil
		}
		if next == nil {
			return nil
		}

		offset += pageSize
	}
}

// exportFilename derives a collision-free CSV filename for a playlist.
//
// The sanitized name is used when unique; an empty or already-claimed name
// gets a short playlist-ID suffix, then a numeric suffix as a final tiebreak.
func exportFilename(pl services.SpotifySimplePlaylist, claimed map[string]bool) string {
	base := tracks.SanitizeFilename(pl.Name)
	if base == "" || claimed[base] {
		id := pl.ID
		if len(id) > 8 {
			id = id[:8]
		}
		if id != "" {
			candidate := base + "_" + id
			if base == "" {
				candidate = "playlist_" + id
			}
			base = candidate
		}
	}

	for i := 2; base == "" || claimed[base]; i++ {
		base = fmt.Sprintf("playlist_%d", i)
	}

	claimed[base] = true
	return base + ".csv"
}
