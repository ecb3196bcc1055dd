package core

import (
	"image"
	"math"

	"github.com/1F47E/go-gazereel/pkg/config"
	"github.com/1F47E/go-gazereel/pkg/gaze"
)

// markerCenter scales a normalized gaze point to pixels. With BoundsNone the
// point may land outside the frame and the marker is drawn partly off-canvas.
func markerCenter(s gaze.Sample, width, height int, bounds config.Bounds) image.Point {
	p := image.Pt(int(math.Round(s.X*float64(width))), int(math.Round(s.Y*float64(height))))
	if bounds == config.BoundsClamp && width > 0 && height > 0 {
		p.X = clamp(p.X, 0, width-1)
		p.Y = clamp(p.Y, 0, height-1)
	}
	return p
}

// markerSquare returns the corner points of the outline around c.
func markerSquare(c image.Point, half int) image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(c.X-half, c.Y-half),
		Max: image.Pt(c.X+half, c.Y+half),
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
