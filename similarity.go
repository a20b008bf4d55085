package pngfixture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"
	"github.com/k1LoW/errors"
)

const (
	// maximum perceptual hash distance at which two images still look the same
	similarityThreshold = 5
	// maximum per-channel difference of the mean colors (0-255)
	meanColorTolerance = 8
)

// Equivalent reports whether two encoded images look the same: same bounds,
// close perceptual hashes and close mean colors. Perceptual hashes only see
// luminance; hue is covered by the mean color.
// Byte-identical inputs are equivalent without decoding.
func Equivalent(a, b []byte) (_ bool, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if bytes.Equal(a, b) {
		return true, nil
	}
	aImg, err := decode(a)
	if err != nil {
		return false, err
	}
	bImg, err := decode(b)
	if err != nil {
		return false, err
	}
	if aImg.Bounds().Size() != bImg.Bounds().Size() {
		return false, nil
	}
	aHash, err := goimagehash.PerceptionHash(aImg)
	if err != nil {
		return false, fmt.Errorf("failed to compute perceptual hash: %w", err)
	}
	bHash, err := goimagehash.PerceptionHash(bImg)
	if err != nil {
		return false, fmt.Errorf("failed to compute perceptual hash: %w", err)
	}
	distance, err := aHash.Distance(bHash)
	if err != nil {
		return false, fmt.Errorf("failed to compare perceptual hashes: %w", err)
	}
	if distance >= similarityThreshold {
		return false, nil
	}
	am, bm := meanColor(aImg), meanColor(bImg)
	for i := range am {
		d := am[i] - bm[i]
		if d < 0 {
			d = -d
		}
		if d > meanColorTolerance {
			return false, nil
		}
	}
	return true, nil
}

// decode decodes b into an *image.RGBA so that images stored with different
// color models are hashed from identical pixel buffers.
func decode(b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba, nil
}

// meanColor returns the average 8-bit R, G and B values of img.
func meanColor(img image.Image) [3]int {
	var sum [3]uint64
	bounds := img.Bounds()
	n := uint64(bounds.Dx() * bounds.Dy())
	if n == 0 {
		return [3]int{}
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sum[0] += uint64(r >> 8)
			sum[1] += uint64(g >> 8)
			sum[2] += uint64(b >> 8)
		}
	}
	return [3]int{int(sum[0] / n), int(sum[1] / n), int(sum[2] / n)}
}
