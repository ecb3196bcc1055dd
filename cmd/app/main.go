package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/1F47E/go-gazereel/pkg/config"
	"github.com/1F47E/go-gazereel/pkg/core"
	"github.com/1F47E/go-gazereel/pkg/logger"
)

var app = cli.NewApp()
var log = logger.Log

func init() {
	app.Name = "gazereel"
	app.Usage = "Draw gaze points onto a video"
	app.UsageText = "gazereel [options] <video name>"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "input-dir", Value: config.PathVideoIn, Usage: "directory holding source videos"},
		cli.StringFlag{Name: "output-dir", Value: config.PathVideoOut, Usage: "directory for annotated videos"},
		cli.StringFlag{Name: "data", Value: config.PathGazeData, Usage: "gaze table, .mat or .csv"},
		cli.StringFlag{Name: "var", Value: config.GazeVariable, Usage: "MAT variable with the gaze table"},
		cli.BoolFlag{Name: "no-transpose", Usage: "MAT table already has one sample per row"},
		cli.StringFlag{Name: "codec", Value: config.Codec, Usage: "fourcc of the output video"},
		cli.StringFlag{Name: "backend", Value: config.BackendGocv, Usage: "gocv or ffmpeg"},
		cli.BoolFlag{Name: "preview", Usage: "show frames while annotating"},
		cli.StringFlag{Name: "abort-key", Value: string(config.AbortKey), Usage: "key that stops the preview run"},
		cli.BoolFlag{Name: "clamp", Usage: "keep markers inside the frame"},
		cli.IntFlag{Name: "square", Value: config.SquareSize, Usage: "marker half size in pixels"},
		cli.IntFlag{Name: "thickness", Value: config.Thickness, Usage: "marker stroke in pixels"},
		cli.BoolTFlag{Name: "progress", Usage: "show a progress bar"},
		cli.BoolFlag{Name: "debug", Usage: "verbose logging"},
	}
	app.Action = run
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		logger.Verbose()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(c, &cfg)

	cfg.VideoName = c.Args().Get(0)
	if cfg.VideoName == "" {
		log.Warn("not enough arguments")
		cfg.VideoName, err = prompt(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	backend, err := backendFor(cfg.Backend)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := core.NewCore(cfg, backend).Run(ctx)
	if err != nil {
		return err
	}
	log.Debugf("read %d, written %d, last sample #%d, took %s", stats.Read, stats.Written, stats.Cursor, stats.Elapsed)
	return nil
}

// flags only override what was given on the command line, so .env values survive
func applyFlags(c *cli.Context, cfg *config.Config) {
	str := map[string]*string{
		"input-dir":  &cfg.InputDir,
		"output-dir": &cfg.OutputDir,
		"data":       &cfg.DataPath,
		"var":        &cfg.DataVariable,
		"codec":      &cfg.Codec,
		"backend":    &cfg.Backend,
	}
	for name, dst := range str {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	if c.IsSet("square") {
		cfg.SquareSize = c.Int("square")
	}
	if c.IsSet("thickness") {
		cfg.Thickness = c.Int("thickness")
	}
	if c.IsSet("progress") {
		cfg.Progress = c.BoolT("progress")
	}
	if c.Bool("no-transpose") {
		cfg.Transpose = false
	}
	if c.Bool("preview") {
		cfg.Preview = true
	}
	if c.Bool("clamp") {
		cfg.Bounds = config.BoundsClamp
	}
	if k := c.String("abort-key"); k != "" {
		cfg.AbortKey = []rune(k)[0]
	}
}

func prompt(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Please specify the video name:")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("Cannot read video name: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func main() {
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
