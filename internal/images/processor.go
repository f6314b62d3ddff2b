// Package images produces card-size thumbnails and BlurHash placeholders for
// game artwork. Originals live in the data directory keyed by slug; processed
// thumbnails are written into the published asset tree.
package images

import (
	"image"
	_ "image/gif"  // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/blueroomhub/blueroom-builder/internal/errors"
)

// thumbsPath is the output subdirectory for processed thumbnails.
const thumbsPath = "assets/thumbs"

// jpegQuality for encoded thumbnails. 80 keeps cards under ~50KB.
const jpegQuality = 80

// Supported artwork extensions, probed in order.
var artworkExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// Thumbnail describes one processed artwork file.
type Thumbnail struct {
	URL      string
	BlurHash string
	Width    int
	Height   int
}

// Processor scales game artwork into thumbnails.
type Processor struct {
	sourceDir string
	width     int
	logger    *slog.Logger
}

// NewProcessor creates a Processor reading originals from sourceDir and
// scaling them to the given card width.
func NewProcessor(sourceDir string, width int, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{sourceDir: sourceDir, width: width, logger: logger}
}

// ProcessAll generates thumbnails for every slug with artwork in the source
// directory and returns the manifest keyed by slug. Slugs without artwork are
// skipped silently; the renderer falls back to the record's thumbnail URL.
func (p *Processor) ProcessAll(slugs []string, outputDir string) (map[string]Thumbnail, error) {
	if _, err := os.Stat(p.sourceDir); os.IsNotExist(err) {
		p.logger.Debug("no artwork directory, skipping thumbnails", "dir", p.sourceDir)
		return map[string]Thumbnail{}, nil
	}

	destDir := filepath.Join(outputDir, thumbsPath)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "create thumbnail dir")
	}

	manifest := make(map[string]Thumbnail, len(slugs))
	for _, slug := range slugs {
		src := p.findArtwork(slug)
		if src == "" {
			continue
		}

		thumb, err := p.process(slug, src, destDir)
		if err != nil {
			p.logger.Warn("skipping artwork", "slug", slug, "path", src, "error", err)
			continue
		}
		manifest[slug] = thumb
	}

	p.logger.Info("thumbnails processed", "count", len(manifest), "candidates", len(slugs))
	return manifest, nil
}

// findArtwork returns the first existing artwork file for a slug.
func (p *Processor) findArtwork(slug string) string {
	for _, ext := range artworkExtensions {
		path := filepath.Join(p.sourceDir, slug+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (p *Processor) process(slug, src, destDir string) (Thumbnail, error) {
	img, err := decodeImage(src)
	if err != nil {
		return Thumbnail{}, err
	}

	scaled := scaleToWidth(img, p.width)

	hash, err := computeBlurHash(scaled)
	if err != nil {
		// A missing placeholder is cosmetic; keep the thumbnail.
		p.logger.Warn("blurhash failed", "slug", slug, "error", err)
	}

	dest := filepath.Join(destDir, slug+".jpg")
	if err := encodeJPEG(dest, scaled); err != nil {
		return Thumbnail{}, err
	}

	bounds := scaled.Bounds()
	return Thumbnail{
		URL:      "/" + thumbsPath + "/" + slug + ".jpg",
		BlurHash: hash,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

func decodeImage(path string) (image.Image, error) {
	file, err := os.Open(path) //#nosec G304 -- Artwork path derived from catalog slug
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "open artwork")
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "decode artwork")
	}
	return img, nil
}

// scaleToWidth scales the image to the target width preserving aspect ratio.
// Images already narrower than the target are left untouched.
func scaleToWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= width {
		return img
	}

	height := (bounds.Dy() * width) / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func encodeJPEG(path string, img image.Image) error {
	file, err := os.Create(path) //#nosec G304 -- Output path derived from catalog slug
	if err != nil {
		return errors.Wrap(err, errors.CodePersistence, "create thumbnail")
	}
	defer file.Close()

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return errors.Wrap(err, errors.CodePersistence, "encode thumbnail")
	}
	return nil
}
