package integrations

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"io"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type ThumbnailSettings struct {
	MaxWidth  int
	MaxHeight int
	Quality   int // JPEG quality, 1-100
}

var DefaultThumbnailSettings = ThumbnailSettings{
	MaxWidth:  600,
	MaxHeight: 600,
	Quality:   85,
}

// ImageProcessor shrinks recipe thumbnails so they fit the cookbook page.
type ImageProcessor struct {
	settings ThumbnailSettings
}

func NewImageProcessor(settings ThumbnailSettings) *ImageProcessor {
	if settings.Quality <= 0 || settings.Quality > 100 {
		settings.Quality = DefaultThumbnailSettings.Quality
	}
	return &ImageProcessor{settings: settings}
}

// ProcessImage decodes a JPEG, PNG or WebP image, downsizes it to fit the
// configured bounds and re-encodes it as JPEG.
func (p *ImageProcessor) ProcessImage(input io.Reader) ([]byte, error) {
	img, _, err := image.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	newWidth, newHeight := p.calculateDimensions(bounds.Dx(), bounds.Dy())

	processed := img
	if newWidth != bounds.Dx() || newHeight != bounds.Dy() {
		processed = p.resize(img, newWidth, newHeight)
	}

	return p.encode(processed)
}

func (p *ImageProcessor) ProcessImageData(data []byte) ([]byte, error) {
	return p.ProcessImage(bytes.NewReader(data))
}

// calculateDimensions keeps the aspect ratio and never upscales.
func (p *ImageProcessor) calculateDimensions(width, height int) (int, int) {
	if width <= p.settings.MaxWidth && height <= p.settings.MaxHeight {
		return width, height
	}

	widthScale := float64(p.settings.MaxWidth) / float64(width)
	heightScale := float64(p.settings.MaxHeight) / float64(height)

	scale := widthScale
	if heightScale < widthScale {
		scale = heightScale
	}

	newWidth := max(int(float64(width)*scale), 1)
	newHeight := max(int(float64(height)*scale), 1)

	return newWidth, newHeight
}

func (p *ImageProcessor) resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

func (p *ImageProcessor) encode(img image.Image) ([]byte, error) {
	// JPEG has no alpha; flatten onto white so transparent PNGs do not turn black.
	flat := image.NewRGBA(img.Bounds())
	draw.Draw(flat, flat.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: p.settings.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
