package core

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/1F47E/go-gazereel/pkg/config"
	"github.com/1F47E/go-gazereel/pkg/frame"
)

type fakeFrame struct {
	ts        float64
	rect      image.Rectangle
	thickness int
	drawn     bool
}

func (f *fakeFrame) Timestamp() float64 { return f.ts }

func (f *fakeFrame) DrawRect(r image.Rectangle, c color.RGBA, thickness int) error {
	f.rect, f.thickness, f.drawn = r, thickness, true
	return nil
}

type fakeSource struct {
	info   frame.Info
	ts     []float64
	next   int
	closed bool
}

func (s *fakeSource) Info() frame.Info { return s.info }

func (s *fakeSource) Read() (frame.Frame, error) {
	if s.next >= len(s.ts) {
		return nil, io.EOF
	}
	f := &fakeFrame{ts: s.ts[s.next]}
	s.next++
	return f, nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type fakeSink struct {
	path   string
	fourcc string
	info   frame.Info
	frames []*fakeFrame
	closed bool
}

func (s *fakeSink) Write(f frame.Frame) error {
	s.frames = append(s.frames, f.(*fakeFrame))
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

// fakeViewer presses the abort key when frame number abortAt is shown.
type fakeViewer struct {
	shown   int
	abortAt int
	closed  bool
}

func (v *fakeViewer) Show(f frame.Frame) int {
	v.shown++
	if v.shown == v.abortAt {
		return 0x100000 | 'q'
	}
	return -1
}

func (v *fakeViewer) Close() error {
	v.closed = true
	return nil
}

type harness struct {
	cfg    config.Config
	src    *fakeSource
	sink   *fakeSink
	viewer *fakeViewer
}

func newHarness(t *testing.T, gazeCSV string, ts []float64) *harness {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "gaze.csv")
	if err := os.WriteFile(data, []byte(gazeCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.VideoName = "clip.mp4"
	cfg.InputDir = filepath.Join(dir, "in")
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.DataPath = data
	cfg.Progress = false
	return &harness{
		cfg:    cfg,
		src:    &fakeSource{info: frame.Info{FPS: 10, Width: 100, Height: 50, Frames: len(ts)}, ts: ts},
		viewer: &fakeViewer{},
	}
}

func (h *harness) backend() Backend {
	return Backend{
		Name: "fake",
		OpenSource: func(ctx context.Context, path string) (frame.Source, error) {
			return h.src, nil
		},
		OpenSink: func(ctx context.Context, path, fourcc string, info frame.Info) (frame.Sink, error) {
			h.sink = &fakeSink{path: path, fourcc: fourcc, info: info}
			return h.sink, nil
		},
		NewViewer: func(title string) (frame.Viewer, error) {
			return h.viewer, nil
		},
	}
}

const twoSamples = "0.0,0.5,0.5\n1.0,0.1,0.9\n"

func TestRunScenarios(t *testing.T) {
	h := newHarness(t, twoSamples, []float64{0.3, 1.2})
	stats, err := NewCore(h.cfg, h.backend()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Read != 2 || stats.Written != 2 || stats.Aborted {
		t.Errorf("unexpected stats %+v", stats)
	}
	if !stats.Exhausted || stats.Cursor != 1 {
		t.Errorf("cursor should clamp on the last sample: %+v", stats)
	}
	want := []image.Rectangle{
		// t=0.3 -> (0.5,0.5) -> centre (50,25)
		image.Rect(45, 20, 55, 30),
		// t=1.2 -> clamped on (0.1,0.9) -> centre (10,45)
		image.Rect(5, 40, 15, 50),
	}
	for i, f := range h.sink.frames {
		if f.rect != want[i] || f.thickness != config.Thickness {
			t.Errorf("frame %d: got %v/%d, want %v/%d", i, f.rect, f.thickness, want[i], config.Thickness)
		}
	}
	if !h.src.closed || !h.sink.closed {
		t.Errorf("handles not released")
	}
}

func TestRunMirrorsSourceFormat(t *testing.T) {
	h := newHarness(t, twoSamples, []float64{0, 0.1, 0.2})
	if _, err := NewCore(h.cfg, h.backend()).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(h.sink.info, h.src.info) {
		t.Errorf("sink info %+v, source %+v", h.sink.info, h.src.info)
	}
	if h.sink.fourcc != config.Codec {
		t.Errorf("got fourcc %q", h.sink.fourcc)
	}
	if h.sink.path != filepath.Join(h.cfg.OutputDir, "clip.mp4") {
		t.Errorf("got output path %q", h.sink.path)
	}
	if len(h.sink.frames) != 3 {
		t.Errorf("got %d frames, want 3", len(h.sink.frames))
	}
}

func TestRunZeroFrames(t *testing.T) {
	h := newHarness(t, twoSamples, nil)
	stats, err := NewCore(h.cfg, h.backend()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Written != 0 || h.sink == nil || !h.sink.closed {
		t.Errorf("expected an empty, closed output: %+v", stats)
	}
}

func TestRunAbortKey(t *testing.T) {
	h := newHarness(t, twoSamples, []float64{0, 0.1, 0.2, 0.3, 0.4})
	h.cfg.Preview = true
	h.viewer.abortAt = 2
	stats, err := NewCore(h.cfg, h.backend()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !stats.Aborted || stats.Written != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
	// frames up to and including the one shown when the key was hit are kept
	if len(h.sink.frames) != 2 || !h.sink.closed || !h.viewer.closed {
		t.Errorf("got %d frames, sink closed %v, viewer closed %v", len(h.sink.frames), h.sink.closed, h.viewer.closed)
	}
}

func TestRunCancelledContext(t *testing.T) {
	h := newHarness(t, twoSamples, []float64{0, 0.1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := NewCore(h.cfg, h.backend()).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Aborted || stats.Written != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestRunPreviewUnsupported(t *testing.T) {
	h := newHarness(t, twoSamples, []float64{0})
	h.cfg.Preview = true
	b := h.backend()
	b.NewViewer = nil
	stats, err := NewCore(h.cfg, b).Run(context.Background())
	if err != nil || stats.Written != 1 {
		t.Errorf("got %+v, %v", stats, err)
	}
}

func TestRunMissingSource(t *testing.T) {
	h := newHarness(t, twoSamples, nil)
	b := h.backend()
	b.OpenSource = func(ctx context.Context, path string) (frame.Source, error) {
		return nil, errors.New("no such file")
	}
	stats, err := NewCore(h.cfg, b).Run(context.Background())
	if err != nil {
		t.Fatalf("missing source should not fail the run: %v", err)
	}
	if stats.Read != 0 || h.sink != nil {
		t.Errorf("nothing should be opened: %+v", stats)
	}
}

func TestRunMalformedData(t *testing.T) {
	h := newHarness(t, "0.0,0.5\n", []float64{0})
	if _, err := NewCore(h.cfg, h.backend()).Run(context.Background()); err == nil {
		t.Fatal("expected startup error")
	}
}

type failingSink struct{ fakeSink }

func (s *failingSink) Write(frame.Frame) error { return errors.New("disk full") }

func TestRunWriteError(t *testing.T) {
	h := newHarness(t, twoSamples, []float64{0, 0.1})
	b := h.backend()
	fs := &failingSink{}
	b.OpenSink = func(ctx context.Context, path, fourcc string, info frame.Info) (frame.Sink, error) {
		return fs, nil
	}
	stats, err := NewCore(h.cfg, b).Run(context.Background())
	if err == nil || stats.Written != 0 {
		t.Errorf("got %+v, %v", stats, err)
	}
	if !fs.closed {
		t.Errorf("sink not closed after error")
	}
}
