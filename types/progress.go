package types

import (
	"fmt"
	"io"
	"time"

	"github.com/gosuri/uilive"
)

// ProgressPrinter rewrites a single status line in place on the terminal.
// Updates are throttled to one print per interval, Flush always prints.
type ProgressPrinter struct {
	writer    *uilive.Writer
	interval  time.Duration
	lastPrint time.Time
	status    string
}

// NewProgressPrinter prints at most `frequency` times per second
func NewProgressPrinter(out io.Writer, frequency int) *ProgressPrinter {
	writer := uilive.New()
	writer.Out = out
	if frequency <= 0 {
		frequency = 1
	}
	return &ProgressPrinter{
		writer:   writer,
		interval: time.Second / time.Duration(frequency),
	}
}

func (p *ProgressPrinter) Update(s string) {
	p.status = s
	if time.Since(p.lastPrint) < p.interval {
		return
	}
	p.print()
}

func (p *ProgressPrinter) Flush() {
	p.print()
}

func (p *ProgressPrinter) print() {
	fmt.Fprintln(p.writer, p.status)
	p.writer.Flush()
	p.lastPrint = time.Now()
}

// Stop leaves the last status on screen
func (p *ProgressPrinter) Stop() {
	fmt.Fprintln(p.writer.Bypass())
}
