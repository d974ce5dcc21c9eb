package main

import (
	"os"
	"time"

	"github.com/franz/showcat/internal/catalog"
	"github.com/franz/showcat/internal/util"
	"github.com/schollz/progressbar/v3"
)

// newSeriesBar returns a progress bar over n series, or nil when stderr is
// not a terminal or output is quiet
func newSeriesBar(description string, n int) *progressbar.ProgressBar {
	if !util.IsTerminal(os.Stderr.Fd()) || util.IsQuiet() {
		return nil
	}

	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("series"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// barProgress adapts a possibly nil bar to the import progress callback
func barProgress(bar *progressbar.ProgressBar) func(*catalog.Series) {
	return func(*catalog.Series) {
		if bar != nil {
			bar.Add(1)
		}
	}
}
