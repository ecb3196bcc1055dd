package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/1F47E/go-gazereel/pkg/config"
	"github.com/1F47E/go-gazereel/pkg/core"
	"github.com/1F47E/go-gazereel/pkg/frame"
	"github.com/1F47E/go-gazereel/pkg/video"
	"github.com/1F47E/go-gazereel/pkg/video/ffmpeg"
)

func backendFor(name string) (core.Backend, error) {
	switch strings.ToLower(name) {
	case config.BackendGocv:
		return gocvBackend(), nil
	case config.BackendFFmpeg:
		return ffmpegBackend(), nil
	}
	return core.Backend{}, fmt.Errorf("Unknown backend %q", name)
}

func gocvBackend() core.Backend {
	return core.Backend{
		Name: config.BackendGocv,
		OpenSource: func(_ context.Context, path string) (frame.Source, error) {
			c, err := video.OpenCapture(path)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		OpenSink: func(_ context.Context, path, fourcc string, info frame.Info) (frame.Sink, error) {
			w, err := video.OpenWriter(path, fourcc, info)
			if err != nil {
				return nil, err
			}
			return w, nil
		},
		NewViewer: func(title string) (frame.Viewer, error) {
			return video.NewWindow(title), nil
		},
	}
}

func ffmpegBackend() core.Backend {
	return core.Backend{
		Name: config.BackendFFmpeg,
		OpenSource: func(ctx context.Context, path string) (frame.Source, error) {
			s, err := ffmpeg.OpenSource(ctx, path)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		OpenSink: func(ctx context.Context, path, fourcc string, info frame.Info) (frame.Sink, error) {
			s, err := ffmpeg.OpenSink(ctx, path, fourcc, info)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}
}
