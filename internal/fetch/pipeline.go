package fetch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tracks"
)

// Pipeline runs the fetch-and-tag pass over track rows, strictly one at a
// time in row order. There is no retry, backoff, or concurrency; every
// per-track failure becomes that track's outcome and the run continues.
type Pipeline struct {
	checker ExistenceChecker
	engine  SearchDownloader
	locator ResultLocator
	artwork *ArtworkFetcher
	tagger  Tagger
	outDir  string
	events  EventLog
	logger  *log.Logger
}

// PipelineOpts wires a pipeline's collaborators. Zero-value fields fall
// back to the standard implementations over OutDir.
type PipelineOpts struct {
	Checker ExistenceChecker
	Engine  SearchDownloader
	Locator ResultLocator
	Artwork *ArtworkFetcher
	OutDir  string
	Events  EventLog
	Logger  *log.Logger
}

func NewPipeline(opts PipelineOpts) *Pipeline {
	if opts.OutDir == "" {
		opts.OutDir = "my_music"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Checker == nil {
		opts.Checker = NewSubstringChecker(opts.OutDir)
	}
	if opts.Engine == nil {
		opts.Engine = NewYTDLP(opts.Logger)
	}
	if opts.Locator == nil {
		opts.Locator = MTimeLocator{}
	}
	if opts.Artwork == nil {
		opts.Artwork = NewArtworkFetcher()
	}

	return &Pipeline{
		checker: opts.Checker,
		engine:  opts.Engine,
		locator: opts.Locator,
		artwork: opts.Artwork,
		outDir:  opts.OutDir,
		events:  opts.Events,
		logger:  opts.Logger,
	}
}

// Run processes every row of one playlist sequentially and returns a
// result per row. Progress updates are sent on progress when non-nil; the
// caller owns the channel.
func (p *Pipeline) Run(ctx context.Context, playlist string, rows []tracks.Row, progress chan<- ProgressUpdate) []TrackResult {
	results := make([]TrackResult, 0, len(rows))

	for i, row := range rows {
		if ctx.Err() != nil {
			break
		}

		res := p.processRow(ctx, row)
		res.Playlist = playlist
		results = append(results, res)

		p.record(res)
		if progress != nil {
			progress <- ProgressUpdate{
				Playlist: playlist,
				Step:     i + 1,
				Total:    len(rows),
				Track:    res.Track,
				Outcome:  res.Outcome,
				Message:  res.Message,
			}
		}
	}

	return results
}

func (p *Pipeline) processRow(ctx context.Context, row tracks.Row) TrackResult {
	res := TrackResult{Track: row.TrackName, Artist: row.ArtistNames}

	exists, err := p.checker.Exists(row.TrackName, row.ArtistNames)
	if err != nil {
		p.logger.Warnf("existence check failed for %q: %v", row.TrackName, err)
	}
	if exists {
		res.Outcome = OutcomeSkipped
		return res
	}

	since := time.Now()
	if err := p.engine.Download(ctx, row.TrackName, row.ArtistNames, p.outDir); err != nil {
		res.Outcome = OutcomeDownloadFailed
		res.Message = err.Error()
		return res
	}

	path, err := p.locator.Locate(p.outDir, since)
	if err != nil {
		res.Outcome = OutcomeTaggingSkipped
		res.Message = err.Error()
		return res
	}
	res.Path = path

	res.Outcome = OutcomeTagged
	if err := p.tagFile(ctx, path, row); err != nil {
		// A tag failure never marks the download failed.
		p.logger.Warnf("tagging failed for %q: %v", row.TrackName, err)
		res.Message = fmt.Sprintf("tagging warning: %v", err)
	}

	return res
}

// tagFile fetches cover art when the row carries an image URL, writes it
// to a temp file for the tagger, and removes the temp file afterwards.
func (p *Pipeline) tagFile(ctx context.Context, path string, row tracks.Row) error {
	artPath := ""
	if row.AlbumImageURL != "" {
		art, err := p.artwork.Fetch(ctx, row.AlbumImageURL)
		if err != nil {
			p.logger.Warnf("artwork fetch failed for %q: %v", row.TrackName, err)
		} else if tmp, err := writeArtTemp(art); err != nil {
			p.logger.Warnf("artwork staging failed for %q: %v", row.TrackName, err)
		} else {
			artPath = tmp
			defer os.Remove(artPath)
		}
	}

	return p.tagger.Tag(path, row, artPath)
}

func writeArtTemp(data []byte) (string, error) {
	f, err := os.CreateTemp("", "crate-art-*.jpg")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (p *Pipeline) record(res TrackResult) {
	var msg string
	switch res.Outcome {
	case OutcomeSkipped:
		msg = fmt.Sprintf("Skipped %s by %s (already downloaded)", res.Track, res.Artist)
	case OutcomeTagged:
		msg = fmt.Sprintf("Downloaded and tagged %s by %s", res.Track, res.Artist)
	case OutcomeTaggingSkipped:
		msg = fmt.Sprintf("Downloaded %s by %s without tags: %s", res.Track, res.Artist, res.Message)
	case OutcomeDownloadFailed:
		msg = fmt.Sprintf("Failed to download %s by %s: %s", res.Track, res.Artist, res.Message)
	default:
		return
	}

	p.logger.Info(msg)
	if p.events != nil {
		p.events.Event(msg)
	}
}
