// Package frame defines what the annotator needs from a video backend.
//
// Sources signal end of stream with io.EOF. A Frame returned by Read is only
// valid until the next Read; backends reuse their buffers.
package frame

import (
	"image"
	"image/color"
)

type Info struct {
	FPS    float64
	Width  int
	Height int
	// 0 when the container does not say
	Frames int
}

type Frame interface {
	// presentation time in seconds
	Timestamp() float64
	// DrawRect strokes the outline between the corner points r.Min and r.Max,
	// both inclusive, with a line of the given thickness centred on the edge.
	DrawRect(r image.Rectangle, c color.RGBA, thickness int) error
}

type Source interface {
	Info() Info
	Read() (Frame, error)
	Close() error
}

type Sink interface {
	Write(f Frame) error
	Close() error
}

// Viewer shows frames in a window and reports the key pressed, -1 for none.
type Viewer interface {
	Show(f Frame) int
	Close() error
}
