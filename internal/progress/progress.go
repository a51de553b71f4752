// Package progress wraps the terminal progress bar shown during interactive
// builds. A nil or disabled Bar is a no-op, so the pipeline never needs to
// know whether a terminal is attached.
package progress

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

type Bar struct {
	bar *progressbar.ProgressBar
}

// New returns a progress bar over max items, or a no-op bar when disabled.
func New(enabled bool, max int, description string) *Bar {
	if !enabled {
		return &Bar{}
	}
	return &Bar{
		bar: progressbar.NewOptions(max,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(description),
			progressbar.OptionClearOnFinish(),
		),
	}
}

func (b *Bar) Add(n int) {
	if b == nil || b.bar == nil {
		return
	}
	_ = b.bar.Add(n)
}

func (b *Bar) Finish() {
	if b == nil || b.bar == nil {
		return
	}
	_ = b.bar.Finish()
}
