package util

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels: больше модели всё равно не нужно, а запрос легче.
const DefaultMaxPixels = 4_000_000

// MaxSourcePixels: больше этого по заголовку не декодируем, иначе маленький PNG раздувается в гигабайты.
const MaxSourcePixels = 50_000_000

var ErrUnsupportedImage = errors.New("unsupported image format: use JPEG, PNG, GIF or WebP")

// PrepareImage проверяет, что байты: картинка, и при необходимости уменьшает её
// до maxPixels. JPEG и PNG нужного размера уходят как есть, остальное перекодируется в JPEG.
func PrepareImage(data []byte, maxPixels int) ([]byte, string, error) {
	mime := SniffMimeHTTP(data)
	if mime == "application/octet-stream" {
		return nil, "", ErrUnsupportedImage
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, "", fmt.Errorf("%w: image too large (%dx%d)", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	sb := img.Bounds()
	w, h := sb.Dx(), sb.Dy()
	if w == 0 || h == 0 {
		return nil, "", fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}

	total := w * h
	passThrough := mime == "image/jpeg" || mime == "image/png"
	if passThrough && (maxPixels <= 0 || total <= maxPixels) {
		return data, mime, nil
	}

	if maxPixels > 0 && total > maxPixels {
		scale := math.Sqrt(float64(maxPixels) / float64(total))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, sb, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, "", err
	}
	return out.Bytes(), "image/jpeg", nil
}
