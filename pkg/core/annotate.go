package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/1F47E/go-gazereel/pkg/core/progress"
	"github.com/1F47E/go-gazereel/pkg/frame"
	"github.com/1F47E/go-gazereel/pkg/gaze"
	"github.com/1F47E/go-gazereel/pkg/logger"
)

const windowTitle = "Frame"

type Stats struct {
	Read    int
	Written int
	// index of the gaze sample used for the last frame
	Cursor    int
	Exhausted bool
	Aborted   bool
	Elapsed   time.Duration
}

// Run annotates the configured video. It loads the gaze table, then for every
// decoded frame picks the latest sample not newer than the frame, draws the
// marker and writes the frame out.
//
// A source that cannot be opened is logged and yields an empty run rather than
// an error. Frames written before an abort stay in the output.
func (c *Core) Run(ctx context.Context) (stats Stats, err error) {
	log := logger.Log.WithField("scope", "core annotate")
	start := time.Now()
	defer func() { stats.Elapsed = time.Since(start) }()

	table, err := gaze.Load(c.cfg.DataPath, gaze.LoadOptions{
		Variable:  c.cfg.DataVariable,
		Transpose: c.cfg.Transpose,
	})
	if err != nil {
		return stats, err
	}
	log.Infof("Gaze table: %d samples", table.Len())

	src, err := c.backend.OpenSource(ctx, c.cfg.SourcePath())
	if err != nil {
		log.Errorf("Error opening video stream or file: %v", err)
		return stats, nil
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Warnf("Cannot release source: %v", cerr)
		}
	}()

	info := src.Info()
	log.Infof("Source %s: %dx%d @ %.2f fps", c.cfg.SourcePath(), info.Width, info.Height, info.FPS)

	if err := os.MkdirAll(c.cfg.OutputDir, os.ModePerm); err != nil {
		return stats, fmt.Errorf("Error creating output dir: %w", err)
	}
	sink, err := c.backend.OpenSink(ctx, c.cfg.OutputPath(), c.cfg.Codec, info)
	if err != nil {
		return stats, err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("Cannot finalize output: %w", cerr))
		}
	}()

	viewer := c.openViewer()
	if viewer != nil {
		defer viewer.Close()
	}

	bar := progress.New(info.Frames, "Annotating...", c.cfg.Progress)
	defer bar.Finish()

	cursor := gaze.NewCursor(table, c.cfg.Epsilon)
	for {
		if ctx.Err() != nil {
			log.Warn("Interrupted, stopping")
			stats.Aborted = true
			break
		}
		f, err := src.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("Error decoding frame %d: %w", stats.Read+1, err)
		}
		stats.Read++

		sample := cursor.Seek(f.Timestamp())
		center := markerCenter(sample, info.Width, info.Height, c.cfg.Bounds)
		if err := f.DrawRect(markerSquare(center, c.cfg.SquareSize), c.cfg.MarkerColor, c.cfg.Thickness); err != nil {
			return stats, fmt.Errorf("Error drawing frame %d: %w", stats.Read, err)
		}
		log.Debugf("frame %d t=%.4f sample #%d -> (%d,%d)", stats.Read, f.Timestamp(), cursor.Index(), center.X, center.Y)

		if err := sink.Write(f); err != nil {
			return stats, fmt.Errorf("Error writing frame %d: %w", stats.Read, err)
		}
		stats.Written++
		stats.Cursor = cursor.Index()
		bar.Add(1)

		if viewer != nil && isKey(viewer.Show(f), c.cfg.AbortKey) {
			log.Info("Abort key pressed, stopping")
			stats.Aborted = true
			break
		}
	}
	stats.Exhausted = cursor.Exhausted()
	if stats.Exhausted && stats.Read > 0 {
		log.Debugf("gaze data ended at %.3fs, last sample reused", table.Last().Timestamp)
	}
	log.Infof("Wrote %d frames to %s", stats.Written, c.cfg.OutputPath())
	return stats, nil
}

func (c *Core) openViewer() frame.Viewer {
	if !c.cfg.Preview {
		return nil
	}
	log := logger.Log.WithField("scope", "core annotate")
	if c.backend.NewViewer == nil {
		log.Warnf("Preview not supported by the %s backend", c.backend.Name)
		return nil
	}
	v, err := c.backend.NewViewer(windowTitle)
	if err != nil {
		log.Warnf("Preview disabled: %v", err)
		return nil
	}
	return v
}

// WaitKey reports more than the low byte on some platforms
func isKey(code int, key rune) bool {
	return code >= 0 && code&0xFF == int(key)
}
