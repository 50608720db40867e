package pipeline

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/SurajMnnit/VideoStreamer/internal/video"
)

const (
	thumbnailWidth  = 320
	thumbnailHeight = 180
)

// ImageThumbnailer writes a placeholder thumbnail per video. A real
// pipeline would grab a frame; here the tile color is derived from the
// video id so each video gets a stable, distinct image.
type ImageThumbnailer struct {
	dir string
}

// NewImageThumbnailer creates a thumbnailer writing into dir
func NewImageThumbnailer(dir string) *ImageThumbnailer {
	return &ImageThumbnailer{dir: dir}
}

// Generate implements Thumbnailer
func (t *ImageThumbnailer) Generate(v *video.Video) (string, error) {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail dir: %w", err)
	}

	img := imaging.New(thumbnailWidth, thumbnailHeight, tileColor(v.ID))
	path := filepath.Join(t.dir, v.ID+".jpg")

	if err := imaging.Save(img, path, imaging.JPEGQuality(80)); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return path, nil
}

// tileColor maps a video id onto a muted, stable color
func tileColor(id string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(id))
	sum := h.Sum32()

	return color.NRGBA{
		R: uint8(64 + (sum>>16)%128),
		G: uint8(64 + (sum>>8)%128),
		B: uint8(64 + sum%128),
		A: 255,
	}
}
