package ffmpeg

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func createFramesDir(prefix string) (string, error) {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return "", fmt.Errorf("Error creating frames dir: %w", err)
	}
	return dir, nil
}

// scanFrames lists extracted frames in decode order. An empty list is not an
// error, the video may have no frames.
func scanFrames(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	list := make([]string, 0, len(files))
	for _, file := range files {
		if strings.HasPrefix(file.Name(), "out_") && strings.HasSuffix(file.Name(), ".png") {
			list = append(list, filepath.Join(dir, file.Name()))
		}
	}
	sort.Strings(list)
	return list, nil
}

// saveFrame writes frame n (1-based) next to the others for the encoder.
func saveFrame(dir string, n int, img image.Image) error {
	path := filepath.Join(dir, fmt.Sprintf(framePattern, n))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("Cannot create file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("Cannot encode to file: %w", err)
	}
	return f.Close()
}

func readFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
