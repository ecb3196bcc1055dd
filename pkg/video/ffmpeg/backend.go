package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/1F47E/go-gazereel/pkg/frame"
	"github.com/1F47E/go-gazereel/pkg/logger"
)

type Source struct {
	info  frame.Info
	dir   string
	files []string
	next  int
}

// OpenSource probes the video and extracts all of its frames up front.
func OpenSource(ctx context.Context, path string) (*Source, error) {
	log := logger.Log.WithField("scope", "ffmpeg source")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("Error opening video stream or file: %w", err)
	}
	info, err := Probe(path)
	if err != nil {
		return nil, err
	}
	dir, err := createFramesDir("gazereel-in-")
	if err != nil {
		return nil, err
	}
	if err := ExtractFrames(ctx, path, dir); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("Error extracting frames: %w", err)
	}
	files, err := scanFrames(dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	if info.Frames == 0 {
		info.Frames = len(files)
	}
	log.Debugf("extracted %d frames to %s", len(files), dir)
	return newSource(info, dir, files), nil
}

func newSource(info frame.Info, dir string, files []string) *Source {
	return &Source{info: info, dir: dir, files: files}
}

func (s *Source) Info() frame.Info {
	return s.info
}

// Read decodes the next PNG; frame i is stamped i/fps.
func (s *Source) Read() (frame.Frame, error) {
	if s.next >= len(s.files) {
		return nil, io.EOF
	}
	img, err := readFrame(s.files[s.next])
	if err != nil {
		return nil, fmt.Errorf("Cannot decode frame %s: %w", s.files[s.next], err)
	}
	var ts float64
	if s.info.FPS > 0 {
		ts = float64(s.next) / s.info.FPS
	}
	s.next++
	return frame.Fit(img, s.info.Width, s.info.Height, ts), nil
}

func (s *Source) Close() error {
	return os.RemoveAll(s.dir)
}

type Sink struct {
	ctx   context.Context
	dir   string
	out   string
	codec string
	info  frame.Info
	count int
}

func OpenSink(ctx context.Context, path, fourcc string, info frame.Info) (*Sink, error) {
	codec, err := Codec(fourcc)
	if err != nil {
		return nil, err
	}
	dir, err := createFramesDir("gazereel-out-")
	if err != nil {
		return nil, err
	}
	return &Sink{ctx: ctx, dir: dir, out: path, codec: codec, info: info}, nil
}

func (s *Sink) Write(f frame.Frame) error {
	img, ok := f.(*frame.Image)
	if !ok {
		return fmt.Errorf("ffmpeg sink got %T frame", f)
	}
	s.count++
	return saveFrame(s.dir, s.count, img)
}

// Close encodes whatever was written so far, so an aborted run still leaves a
// playable prefix of the video.
func (s *Sink) Close() error {
	log := logger.Log.WithField("scope", "ffmpeg sink")
	defer os.RemoveAll(s.dir)
	// the run context may already be cancelled by an abort
	ctx := context.WithoutCancel(s.ctx)
	if s.count == 0 {
		if s.info.Width <= 0 || s.info.Height <= 0 || s.info.FPS <= 0 {
			log.Warnf("No frames written and no geometry known, %s not created", s.out)
			return nil
		}
		if err := EncodeEmpty(ctx, s.info, s.codec, s.out); err != nil {
			return fmt.Errorf("Error creating empty video: %w", err)
		}
		log.Debugf("no frames written, created empty %s", s.out)
		return nil
	}
	if err := EncodeFrames(ctx, s.dir, s.info.FPS, s.codec, s.out); err != nil {
		return fmt.Errorf("Error encoding frames into video: %w", err)
	}
	log.Debugf("encoded %d frames into %s", s.count, s.out)
	return nil
}
