// Package video is the OpenCV backed source, sink and preview window.
package video

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"gocv.io/x/gocv"

	"github.com/1F47E/go-gazereel/pkg/frame"
	"github.com/1F47E/go-gazereel/pkg/logger"
)

// Mat wraps the capture buffer. It is reused by every Read.
type Mat struct {
	mat gocv.Mat
	ts  float64
}

func (m *Mat) Timestamp() float64 {
	return m.ts
}

func (m *Mat) DrawRect(r image.Rectangle, c color.RGBA, thickness int) error {
	gocv.Rectangle(&m.mat, r, c, thickness)
	return nil
}

type Capture struct {
	vc   *gocv.VideoCapture
	buf  *Mat
	info frame.Info
}

func OpenCapture(path string) (*Capture, error) {
	log := logger.Log.WithField("scope", "video capture")
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("Error opening video stream or file %s: %w", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("Error opening video stream or file %s", path)
	}
	info := frame.Info{
		FPS:    vc.Get(gocv.VideoCaptureFPS),
		Width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
		Frames: int(vc.Get(gocv.VideoCaptureFrameCount)),
	}
	if info.Frames < 0 {
		info.Frames = 0
	}
	log.Debugf("opened %s: %dx%d @ %.3f fps, %d frames", path, info.Width, info.Height, info.FPS, info.Frames)
	return &Capture{vc: vc, buf: &Mat{mat: gocv.NewMat()}, info: info}, nil
}

func (c *Capture) Info() frame.Info {
	return c.info
}

// Read decodes the next frame. The timestamp is the container position after
// the read, in seconds.
func (c *Capture) Read() (frame.Frame, error) {
	if ok := c.vc.Read(&c.buf.mat); !ok || c.buf.mat.Empty() {
		return nil, io.EOF
	}
	c.buf.ts = c.vc.Get(gocv.VideoCapturePosMsec) / 1000.0
	return c.buf, nil
}

func (c *Capture) Close() error {
	if err := c.buf.mat.Close(); err != nil {
		return err
	}
	return c.vc.Close()
}

type Writer struct {
	vw *gocv.VideoWriter
}

// OpenWriter creates a colour video at path with the given fourcc tag.
func OpenWriter(path, fourcc string, info frame.Info) (*Writer, error) {
	vw, err := gocv.VideoWriterFile(path, fourcc, info.FPS, info.Width, info.Height, true)
	if err != nil {
		return nil, fmt.Errorf("Error creating video writer %s: %w", path, err)
	}
	if !vw.IsOpened() {
		vw.Close()
		return nil, fmt.Errorf("Error creating video writer %s: codec %s not available", path, fourcc)
	}
	return &Writer{vw: vw}, nil
}

func (w *Writer) Write(f frame.Frame) error {
	m, ok := f.(*Mat)
	if !ok {
		return fmt.Errorf("gocv writer got %T frame", f)
	}
	return w.vw.Write(m.mat)
}

func (w *Writer) Close() error {
	return w.vw.Close()
}

type Window struct {
	w *gocv.Window
}

func NewWindow(title string) *Window {
	return &Window{w: gocv.NewWindow(title)}
}

// Show waits 1ms for a key, like the interactive preview loop always did.
func (w *Window) Show(f frame.Frame) int {
	if m, ok := f.(*Mat); ok {
		w.w.IMShow(m.mat)
	}
	return w.w.WaitKey(1)
}

func (w *Window) Close() error {
	return w.w.Close()
}
