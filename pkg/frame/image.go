package frame

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Image is a frame held as a Go RGBA buffer.
type Image struct {
	*image.RGBA
	ts float64
}

func NewImage(img *image.RGBA, ts float64) *Image {
	return &Image{RGBA: img, ts: ts}
}

// FromImage copies any decoded image into an RGBA frame.
func FromImage(src image.Image, ts float64) *Image {
	if rgba, ok := src.(*image.RGBA); ok {
		return NewImage(rgba, ts)
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, src, b, draw.Src, nil)
	return NewImage(dst, ts)
}

// Fit returns src as a width x height frame, scaling bilinearly when the
// decoded size differs from the stream geometry (e.g. anamorphic sources).
// A non-positive size keeps the decoded size.
func Fit(src image.Image, width, height int, ts float64) *Image {
	b := src.Bounds()
	if width <= 0 || height <= 0 || (b.Dx() == width && b.Dy() == height) {
		return FromImage(src, ts)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return NewImage(dst, ts)
}

func (f *Image) Timestamp() float64 {
	return f.ts
}

// DrawRect follows OpenCV's thick line rule: each edge covers thickness/2
// pixels to either side of the ideal line. Parts outside the image are clipped.
func (f *Image) DrawRect(r image.Rectangle, c color.RGBA, thickness int) error {
	if thickness < 1 {
		thickness = 1
	}
	h := thickness / 2
	x0, y0 := min(r.Min.X, r.Max.X), min(r.Min.Y, r.Max.Y)
	x1, y1 := max(r.Min.X, r.Max.X), max(r.Min.Y, r.Max.Y)

	fill := &image.Uniform{C: c}
	outerX0, outerX1 := x0-h, x1+h+1
	outerY0, outerY1 := y0-h, y1+h+1
	bands := []image.Rectangle{
		image.Rect(outerX0, y0-h, outerX1, y0+h+1), // top
		image.Rect(outerX0, y1-h, outerX1, y1+h+1), // bottom
		image.Rect(x0-h, outerY0, x0+h+1, outerY1), // left
		image.Rect(x1-h, outerY0, x1+h+1, outerY1), // right
	}
	for _, band := range bands {
		draw.Draw(f.RGBA, band.Intersect(f.Bounds()), fill, image.Point{}, draw.Src)
	}
	return nil
}
