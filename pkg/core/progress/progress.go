package progress

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Bar counts annotated frames. A zero max renders a spinner.
type Bar struct {
	bar *progressbar.ProgressBar
}

func New(max int, desc string, enabled bool) *Bar {
	if !enabled {
		return &Bar{}
	}
	if max <= 0 {
		max = -1
	}
	return &Bar{bar: progressCreate(max, desc, os.Stderr)}
}

func (b *Bar) Add(n int) {
	if b.bar != nil {
		_ = b.bar.Add(n)
	}
}

func (b *Bar) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

func progressCreate(max int, desc string, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]/[reset]",
			SaucerHead:    "[green]/[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
