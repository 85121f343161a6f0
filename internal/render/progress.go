package render

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"

	"github.com/naka-gawa/github-user-stats/internal/usecase"
)

// Progress draws a progress bar from fan-out progress events.
// The bar starts with the first event, once the total is known.
type Progress struct {
	w   io.Writer
	bar *pterm.ProgressbarPrinter
}

// NewProgress returns a Progress drawing to w.
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w}
}

// Handle is a usecase.ProgressFunc.
func (p *Progress) Handle(ev usecase.ProgressEvent) {
	if p.bar == nil {
		if ev.Total == 0 {
			return
		}
		bar, err := pterm.DefaultProgressbar.
			WithTotal(ev.Total).
			WithTitle("Analyzing your commits...").
			WithWriter(p.w).
			WithElapsedTimeRoundingFactor(time.Second).
			WithShowCount(true).
			WithShowPercentage(true).
			WithBarStyle(pterm.NewStyle(pterm.FgLightBlue)).
			WithTitleStyle(pterm.NewStyle(pterm.FgLightCyan)).
			Start()
		if err != nil {
			return
		}
		p.bar = bar
	}

	if !ev.Finished {
		p.bar.UpdateTitle(fmt.Sprintf("Analyzing %s", ev.Repository))
		return
	}
	p.bar.Increment()
}

// Completed returns the number of repositories the bar has counted.
func (p *Progress) Completed() int {
	if p.bar == nil {
		return 0
	}
	return p.bar.Current
}

// Stop removes the bar from the terminal.
func (p *Progress) Stop() {
	if p.bar == nil {
		return
	}
	// The error only reports a bar that was never started.
	_, _ = p.bar.Stop()
}
