package core

import (
	"context"

	"github.com/1F47E/go-gazereel/pkg/config"
	"github.com/1F47E/go-gazereel/pkg/frame"
)

// Backend opens the video ends of a run. NewViewer is nil for headless backends.
type Backend struct {
	Name       string
	OpenSource func(ctx context.Context, path string) (frame.Source, error)
	OpenSink   func(ctx context.Context, path, fourcc string, info frame.Info) (frame.Sink, error)
	NewViewer  func(title string) (frame.Viewer, error)
}

type Core struct {
	cfg     config.Config
	backend Backend
}

func NewCore(cfg config.Config, backend Backend) *Core {
	return &Core{
		cfg:     cfg,
		backend: backend,
	}
}
