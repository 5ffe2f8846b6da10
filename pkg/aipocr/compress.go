package aipocr

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	_ "image/png"

	"github.com/skarde/ocrkit/pkg/imgprep"
)

// jpegQualities is the descending ladder tried before giving up on
// re-encoding alone and halving the pixel dimensions.
var jpegQualities = []int{85, 70, 55, 40}

// CompressForAPI guarantees that the base64 encoding of the returned image
// fits within maxSize. Images that already fit pass through unchanged.
// Oversized images are re-encoded as JPEG at decreasing quality; if none of
// the quality steps fit, the pixel dimensions are halved once and re-encoded.
// If the result still exceeds maxSize the call fails with SizeLimitError,
// so the procedure always terminates.
func (c *Client) CompressForAPI(img []byte, maxSize int) ([]byte, error) {
	if base64.StdEncoding.EncodedLen(len(img)) <= maxSize {
		return img, nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode image for compression: %w", err)
	}
	flat := flattenToRGB(decoded)

	for _, quality := range jpegQualities {
		data, err := encodeJPEG(flat, quality)
		if err != nil {
			return nil, err
		}
		if base64.StdEncoding.EncodedLen(len(data)) <= maxSize {
			log.WithFields(map[string]interface{}{
				"quality": quality,
				"from":    len(img) / 1024,
				"to":      len(data) / 1024,
			}).Debug("image compressed for payload limit")
			return data, nil
		}
	}

	// Still too large: halve the dimensions once and re-encode.
	bounds := flat.Bounds()
	half := imgprep.Downscale(flat, bounds.Dx()/2, bounds.Dy()/2)
	data, err := encodeJPEG(half, 70)
	if err != nil {
		return nil, err
	}
	if n := base64.StdEncoding.EncodedLen(len(data)); n > maxSize {
		return nil, &SizeLimitError{Size: n, Limit: maxSize}
	}
	return data, nil
}

// flattenToRGB drops any alpha channel by compositing over white, since JPEG
// has no transparency.
func flattenToRGB(img image.Image) image.Image {
	if _, ok := img.(*image.RGBA); !ok {
		if _, gray := img.(*image.Gray); gray {
			return img
		}
	}
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(out, bounds, img, bounds.Min, draw.Over)
	return out
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
