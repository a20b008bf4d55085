package pngfixture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

var (
	red  = color.RGBA{R: 0xff, A: 0xff}
	blue = color.RGBA{B: 0xff, A: 0xff}
)

// encodePaletted encodes a w x h image filled with c using the standard library encoder.
// The result uses a palette, so it never shares the fixture's header.
func encodePaletted(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{c})
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// encodeCheckerboard encodes a 10x10 truecolor image of red and black squares.
func encodeCheckerboard(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	for y := range Height {
		for x := range Width {
			if (x/5+y/5)%2 == 0 {
				img.Set(x, y, red)
			} else {
				img.Set(x, y, color.RGBA{A: 0xff})
			}
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
