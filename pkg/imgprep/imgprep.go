// Package imgprep provides the optional image-enhancement capability used by
// the adaptive recognition ladder: cheap raster transforms that give
// low-quality scans a better chance before paying for a higher-resolution
// re-render.
//
// Two enhancement modes exist. Normal keeps the page readable (grayscale,
// mild contrast stretch, sharpen); Strong is for badly degraded scans
// (aggressive contrast stretch, median filter, binarization).
package imgprep

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sort"

	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
)

// Mode selects an enhancement recipe.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeStrong Mode = "strong"
)

// binarizeThreshold is the gray cutoff for the strong mode's final step.
const binarizeThreshold = 170

// Enhancer applies enhancement recipes to encoded page images. The zero
// value is ready to use.
type Enhancer struct{}

// Normalize decodes an image, applies the recipe for mode, and returns the
// result re-encoded as PNG.
func (Enhancer) Normalize(data []byte, mode Mode) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	gray := Grayscale(img)
	switch mode {
	case ModeStrong:
		gray = Autocontrast(gray, 2)
		gray = MedianFilter(gray)
		gray = Binarize(gray, binarizeThreshold)
	default:
		gray = Autocontrast(gray, 1)
		gray = Sharpen(gray)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("encode enhanced image: %w", err)
	}
	return buf.Bytes(), nil
}

// Grayscale converts any image to 8-bit grayscale.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	xdraw.Draw(out, bounds, img, bounds.Min, xdraw.Src)
	return out
}

// Autocontrast stretches the gray histogram linearly after clipping the
// given percentage of pixels from each end.
func Autocontrast(img *image.Gray, cutoffPercent int) *image.Gray {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return img
	}

	var hist [256]int
	for _, p := range img.Pix {
		hist[p]++
	}

	clip := total * cutoffPercent / 100
	lo, hi := 0, 255
	for n := 0; lo < 255; lo++ {
		n += hist[lo]
		if n > clip {
			break
		}
	}
	for n := 0; hi > 0; hi-- {
		n += hist[hi]
		if n > clip {
			break
		}
	}
	if hi <= lo {
		return img
	}

	out := image.NewGray(bounds)
	scale := 255.0 / float64(hi-lo)
	for i, p := range img.Pix {
		v := (float64(p) - float64(lo)) * scale
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		out.Pix[i] = uint8(v + 0.5)
	}
	return out
}

// Sharpen applies a 3x3 sharpening convolution.
func Sharpen(img *image.Gray) *image.Gray {
	// Center-heavy kernel; edges pass through.
	kernel := [9]float64{
		0, -1, 0,
		-1, 5, -1,
		0, -1, 0,
	}
	return convolve3x3(img, kernel)
}

// MedianFilter replaces each pixel with the median of its 3x3 neighborhood,
// removing salt-and-pepper speckle typical of binarized scans.
func MedianFilter(img *image.Gray) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	copy(out.Pix, img.Pix)

	w, h := bounds.Dx(), bounds.Dy()
	window := make([]uint8, 0, 9)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			window = window[:0]
			for dy := -1; dy <= 1; dy++ {
				row := (y+dy)*img.Stride + x - 1
				window = append(window, img.Pix[row], img.Pix[row+1], img.Pix[row+2])
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			out.Pix[y*out.Stride+x] = window[4]
		}
	}
	return out
}

// Binarize thresholds the image to pure black and white.
func Binarize(img *image.Gray, threshold uint8) *image.Gray {
	out := image.NewGray(img.Bounds())
	for i, p := range img.Pix {
		if p > threshold {
			out.Pix[i] = 255
		} else {
			out.Pix[i] = 0
		}
	}
	return out
}

// Downscale resizes an image to w x h using Catmull-Rom interpolation.
// Non-positive targets collapse to one pixel.
func Downscale(img image.Image, w, h int) image.Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return out
}

func convolve3x3(img *image.Gray, kernel [9]float64) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	copy(out.Pix, img.Pix)

	w, h := bounds.Dx(), bounds.Dy()
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sum float64
			k := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += kernel[k] * float64(img.Pix[(y+dy)*img.Stride+(x+dx)])
					k++
				}
			}
			if sum < 0 {
				sum = 0
			} else if sum > 255 {
				sum = 255
			}
			out.Pix[y*out.Stride+x] = uint8(sum + 0.5)
		}
	}
	return out
}
