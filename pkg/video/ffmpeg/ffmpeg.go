// Package ffmpeg is the headless backend: frames are extracted to PNG files,
// annotated as Go images and encoded back with the ffmpeg binary.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/1F47E/go-gazereel/pkg/frame"
	"github.com/1F47E/go-gazereel/pkg/logger"
)

const framePattern = "out_%08d.png"

// fourcc tag to ffmpeg encoder
var codecs = map[string]string{
	"FMP4": "mpeg4",
	"MP4V": "mpeg4",
	"DIVX": "mpeg4",
	"XVID": "mpeg4",
	"X264": "libx264",
	"H264": "libx264",
	"AVC1": "libx264",
	"HEVC": "libx265",
	"H265": "libx265",
	"HVC1": "libx265",
	"MJPG": "mjpeg",
	"VP80": "libvpx",
	"VP90": "libvpx-vp9",
}

func Codec(fourcc string) (string, error) {
	c, ok := codecs[strings.ToUpper(fourcc)]
	if !ok {
		return "", fmt.Errorf("No ffmpeg encoder for fourcc %q", fourcc)
	}
	return c, nil
}

type probeResult struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		AvgRate    string `json:"avg_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
}

// Probe asks ffprobe for the first video stream's geometry and rate.
func Probe(path string) (frame.Info, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return frame.Info{}, fmt.Errorf("Error probing %s: %w", path, err)
	}
	return parseProbe(out)
}

func parseProbe(out string) (frame.Info, error) {
	var res probeResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		return frame.Info{}, fmt.Errorf("Cannot parse ffprobe output: %w", err)
	}
	for _, s := range res.Streams {
		if s.CodecType != "video" {
			continue
		}
		fps, err := parseRate(s.RFrameRate)
		if err != nil || fps == 0 {
			fps, err = parseRate(s.AvgRate)
			if err != nil {
				return frame.Info{}, err
			}
		}
		// nb_frames is missing for some containers, leave it unknown
		n, _ := strconv.Atoi(s.NbFrames)
		return frame.Info{FPS: fps, Width: s.Width, Height: s.Height, Frames: n}, nil
	}
	return frame.Info{}, fmt.Errorf("No video stream found")
}

// "30000/1001" -> 29.97
func parseRate(r string) (float64, error) {
	num, den, found := strings.Cut(r, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("Bad frame rate %q: %w", r, err)
	}
	if !found {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("Bad frame rate %q: %w", r, err)
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}

func extractArgs(filename, dir string) []string {
	return ffmpeg.Input(filename).
		Output(filepath.Join(dir, framePattern)).
		OverWriteOutput().
		GetArgs()
}

func encodeArgs(dir string, fps float64, codec, out string) []string {
	return ffmpeg.Input(filepath.Join(dir, framePattern), ffmpeg.KwArgs{
		"framerate":    strconv.FormatFloat(fps, 'f', -1, 64),
		"start_number": "1",
	}).
		Output(out, ffmpeg.KwArgs{
			"c:v":     codec,
			"pix_fmt": "yuv420p",
		}).
		OverWriteOutput().
		GetArgs()
}

// emptyArgs describes a container with the output geometry and rate but no
// frames, fed from the lavfi colour source.
func emptyArgs(info frame.Info, codec, out string) []string {
	src := fmt.Sprintf("color=c=black:s=%dx%d:r=%s", info.Width, info.Height, strconv.FormatFloat(info.FPS, 'f', -1, 64))
	return ffmpeg.Input(src, ffmpeg.KwArgs{"f": "lavfi"}).
		Output(out, ffmpeg.KwArgs{
			"frames:v": "0",
			"c:v":      codec,
			"pix_fmt":  "yuv420p",
		}).
		OverWriteOutput().
		GetArgs()
}

// ExtractFrames decodes the video into numbered PNG files in dir.
func ExtractFrames(ctx context.Context, filename, dir string) error {
	return run(ctx, extractArgs(filename, dir))
}

// EncodeFrames encodes the PNG files in dir into out at the given rate.
func EncodeFrames(ctx context.Context, dir string, fps float64, codec, out string) error {
	return run(ctx, encodeArgs(dir, fps, codec, out))
}

// EncodeEmpty writes a zero frame video so an empty source still yields an output file.
func EncodeEmpty(ctx context.Context, info frame.Info, codec, out string) error {
	return run(ctx, emptyArgs(info, codec, out))
}

func run(ctx context.Context, args []string) error {
	logger.Log.Debugf("Running ffmpeg command: ffmpeg %s", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(out))
	}
	return nil
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return lines[len(lines)-1]
}
