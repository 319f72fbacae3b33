// Package imaging prepares uploaded images before they are sent for OCR.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/gift"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const JPEGQuality = 90

// MaxPixels caps the canvas Fit is willing to decode. Larger images are
// sent as they are.
const MaxPixels = 40_000_000

// Fit downscales data so that neither side exceeds maxDimension, keeping the
// aspect ratio. It returns the payload to send and its mime type. Data that
// is already small enough, cannot be decoded, exceeds MaxPixels, or
// maxDimension <= 0 is returned unchanged with the declared mime type.
func Fit(data []byte, mimeType string, maxDimension int) ([]byte, string, bool) {
	if maxDimension <= 0 || len(data) == 0 {
		return data, mimeType, false
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return data, mimeType, false
	}
	if cfg.Width <= maxDimension && cfg.Height <= maxDimension {
		return data, mimeType, false
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return data, mimeType, false
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, mimeType, false
	}

	g := gift.New(gift.ResizeToFit(maxDimension, maxDimension, gift.LanczosResampling))
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	out, outMIME, err := encode(dst, format)
	if err != nil {
		return data, mimeType, false
	}
	return out, outMIME, true
}

func encode(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, "", fmt.Errorf("failed to encode image: %v", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("failed to encode image: %v", err)
		}
		return buf.Bytes(), "image/png", nil
	}
}
