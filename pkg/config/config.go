package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// NOTE: paths keep the trailing slash of the recording rig layout
const (
	PathVideoIn  = "./Video/"
	PathVideoOut = "./Output_GIP/"
	PathGazeData = "datagip.mat"

	// MAT variable holding the 3xN gaze table
	GazeVariable = "a"

	// 'F','M','P','4' (alternatives: HEVC, X264, DIVX)
	Codec = "FMP4"

	SquareSize = 5
	Thickness  = 5

	// gaze samples up to this far past the frame still count as "not newer"
	Epsilon = 1e-5

	AbortKey = 'q'

	BackendGocv   = "gocv"
	BackendFFmpeg = "ffmpeg"

	EnvFile   = ".env"
	EnvPrefix = "GAZEREEL"
)

// BGR (255,0,0) in OpenCV terms
var MarkerColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}

// Policy for marker centres that map outside the frame.
type Bounds int

const (
	BoundsNone Bounds = iota
	BoundsClamp
)

func (b Bounds) String() string {
	if b == BoundsClamp {
		return "clamp"
	}
	return "none"
}

// Decode lets GAZEREEL_CLAMP take a bool or a policy name.
func (b *Bounds) Decode(value string) error {
	switch strings.ToLower(value) {
	case "clamp":
		*b = BoundsClamp
		return nil
	case "none":
		*b = BoundsNone
		return nil
	}
	on, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("Invalid bounds policy %q", value)
	}
	if on {
		*b = BoundsClamp
	} else {
		*b = BoundsNone
	}
	return nil
}

type Config struct {
	VideoName string `ignored:"true"`
	InputDir  string `envconfig:"INPUT_DIR"`
	OutputDir string `envconfig:"OUTPUT_DIR"`

	DataPath     string `envconfig:"DATA"`
	DataVariable string `envconfig:"VAR"`
	Transpose    bool   `envconfig:"TRANSPOSE"`

	Codec   string `envconfig:"CODEC"`
	Backend string `envconfig:"BACKEND"`

	SquareSize  int        `envconfig:"SQUARE"`
	Thickness   int        `envconfig:"THICKNESS"`
	MarkerColor color.RGBA `ignored:"true"`
	Bounds      Bounds     `envconfig:"CLAMP"`
	Epsilon     float64    `envconfig:"EPSILON"`

	Preview  bool `envconfig:"PREVIEW"`
	AbortKey rune `ignored:"true"`
	Progress bool `envconfig:"PROGRESS"`
}

func Default() Config {
	return Config{
		InputDir:     PathVideoIn,
		OutputDir:    PathVideoOut,
		DataPath:     PathGazeData,
		DataVariable: GazeVariable,
		Transpose:    true,
		Codec:        Codec,
		Backend:      BackendGocv,
		SquareSize:   SquareSize,
		Thickness:    Thickness,
		MarkerColor:  MarkerColor,
		Bounds:       BoundsNone,
		Epsilon:      Epsilon,
		AbortKey:     AbortKey,
		Progress:     true,
	}
}

// Load returns defaults overridden by a .env file (if any) and GAZEREEL_* variables.
func Load() (Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("Error reading %s: %w", EnvFile, err)
	}
	c := Default()
	return c, c.applyEnv()
}

// unset variables leave the defaults alone
func (c *Config) applyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("Invalid environment: %w", err)
	}
	return nil
}

// Validate checks what the annotator cannot recover from later.
func (c Config) Validate() error {
	if c.VideoName == "" {
		return fmt.Errorf("Video name is required")
	}
	if len(c.Codec) != 4 {
		return fmt.Errorf("Codec must be a four character tag, got %q", c.Codec)
	}
	if c.SquareSize < 0 || c.Thickness <= 0 {
		return fmt.Errorf("Invalid marker size %d/%d", c.SquareSize, c.Thickness)
	}
	switch strings.ToLower(c.Backend) {
	case BackendGocv, BackendFFmpeg:
	default:
		return fmt.Errorf("Unknown backend %q", c.Backend)
	}
	return nil
}

// both paths use the same file name
func (c Config) SourcePath() string {
	return filepath.Join(c.InputDir, c.VideoName)
}

func (c Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.VideoName)
}
