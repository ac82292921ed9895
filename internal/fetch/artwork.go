package fetch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // cover art URLs occasionally serve PNG
	"io"
	"net/http"
	"time"

	"golang.org/x/image/draw"
)

const (
	artworkTimeout = 10 * time.Second
	maxArtDim      = 1000
	jpegQuality    = 90
)

// ArtworkFetcher downloads cover art with a bounded timeout and normalizes
// it to JPEG for embedding. Failures degrade to "no art"; callers log a
// warning and tag without a picture.
type ArtworkFetcher struct {
	client *http.Client
}

func NewArtworkFetcher() *ArtworkFetcher {
	return &ArtworkFetcher{client: &http.Client{Timeout: artworkTimeout}}
}

// Fetch retrieves the image at url and returns JPEG bytes, scaled down to
// fit maxArtDim when larger.
func (f *ArtworkFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching artwork", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return toJPEG(data)
}

// toJPEG decodes an image and re-encodes it as JPEG, downscaling with a
// Catmull-Rom kernel when either dimension exceeds maxArtDim.
func toJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width > maxArtDim || height > maxArtDim {
		ratio := float64(width) / float64(height)
		if ratio > 1 {
			width = maxArtDim
			height = int(float64(maxArtDim) / ratio)
		} else {
			height = maxArtDim
			width = int(float64(maxArtDim) * ratio)
		}

		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
