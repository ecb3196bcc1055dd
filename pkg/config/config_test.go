package config

import (
	"path/filepath"
	"testing"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv("GAZEREEL_INPUT_DIR", "/data/in")
	t.Setenv("GAZEREEL_CODEC", "X264")
	t.Setenv("GAZEREEL_SQUARE", "8")
	t.Setenv("GAZEREEL_PREVIEW", "true")
	t.Setenv("GAZEREEL_CLAMP", "1")

	c := Default()
	if err := c.applyEnv(); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if c.InputDir != "/data/in" || c.Codec != "X264" || c.SquareSize != 8 {
		t.Errorf("overrides not applied: %+v", c)
	}
	if !c.Preview {
		t.Errorf("preview not enabled")
	}
	if c.Bounds != BoundsClamp {
		t.Errorf("got bounds %s, want clamp", c.Bounds)
	}
	// untouched values keep defaults
	if c.OutputDir != PathVideoOut || c.Thickness != Thickness || c.AbortKey != AbortKey {
		t.Errorf("defaults lost: %+v", c)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("GAZEREEL_THICKNESS", "thick")
	c := Default()
	if err := c.applyEnv(); err == nil {
		t.Fatal("expected error for non-numeric thickness")
	}
}

func TestApplyEnvClampOff(t *testing.T) {
	t.Setenv("GAZEREEL_CLAMP", "false")
	c := Default()
	c.Bounds = BoundsClamp
	if err := c.applyEnv(); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if c.Bounds != BoundsNone {
		t.Errorf("got bounds %s, want none", c.Bounds)
	}
}

func TestBoundsDecode(t *testing.T) {
	testCases := []struct {
		in      string
		want    Bounds
		wantErr bool
	}{
		{in: "clamp", want: BoundsClamp},
		{in: "NONE", want: BoundsNone},
		{in: "true", want: BoundsClamp},
		{in: "0", want: BoundsNone},
		{in: "sometimes", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			var b Bounds
			err := b.Decode(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("got err %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && b != tc.want {
				t.Errorf("got %s, want %s", b, tc.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mod     func(*Config)
		wantErr bool
	}{
		{name: "ok", mod: func(c *Config) {}},
		{name: "no name", mod: func(c *Config) { c.VideoName = "" }, wantErr: true},
		{name: "bad codec", mod: func(c *Config) { c.Codec = "H26" }, wantErr: true},
		{name: "zero thickness", mod: func(c *Config) { c.Thickness = 0 }, wantErr: true},
		{name: "ffmpeg backend", mod: func(c *Config) { c.Backend = "ffmpeg" }},
		{name: "unknown backend", mod: func(c *Config) { c.Backend = "gstreamer" }, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			c.VideoName = "DOWNTOWN DAY.mp4"
			tc.mod(&c)
			err := c.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("got err %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	c := Default()
	c.VideoName = "DOWNTOWN DAY.mp4"
	if got, want := c.SourcePath(), filepath.Join("Video", "DOWNTOWN DAY.mp4"); got != want {
		t.Errorf("source: got %q, want %q", got, want)
	}
	if got, want := c.OutputPath(), filepath.Join("Output_GIP", "DOWNTOWN DAY.mp4"); got != want {
		t.Errorf("output: got %q, want %q", got, want)
	}
}
