package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/1F47E/go-gazereel/pkg/config"
)

func TestPrompt(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "newline", in: "DOWNTOWN DAY.mp4\n", want: "DOWNTOWN DAY.mp4"},
		{name: "crlf", in: "clip.mp4\r\n", want: "clip.mp4"},
		{name: "no newline", in: "clip.mp4", want: "clip.mp4"},
		{name: "empty", in: "", want: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := prompt(strings.NewReader(tc.in), &out)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
			if !strings.Contains(out.String(), "Please specify the video name:") {
				t.Errorf("prompt not printed")
			}
		})
	}
}

func TestBackendFor(t *testing.T) {
	for _, name := range []string{config.BackendGocv, config.BackendFFmpeg, "FFMPEG"} {
		b, err := backendFor(name)
		if err != nil {
			t.Fatalf("backendFor(%q): %v", name, err)
		}
		if b.OpenSource == nil || b.OpenSink == nil {
			t.Errorf("%s backend incomplete", name)
		}
	}
	b, _ := backendFor(config.BackendFFmpeg)
	if b.NewViewer != nil {
		t.Errorf("ffmpeg backend is headless")
	}
	if _, err := backendFor("gstreamer"); err == nil {
		t.Errorf("expected error")
	}
}
