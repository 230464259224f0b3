package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports a bounded series of steps, such as repeated wake
// probes while the Analysis Backend starts.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

const (
	defaultProgressLabel = "Progress"
	defaultProgressWidth = 30
)

// ProgressOption configures a reporter built by NewProgressReporter.
type ProgressOption func(*StepProgress)

// WithLabel replaces the "Progress" prefix.
func WithLabel(label string) ProgressOption {
	return func(p *StepProgress) {
		if label != "" {
			p.label = label
		}
	}
}

// WithWidth sets the bar width in cells.
func WithWidth(cells int) ProgressOption {
	return func(p *StepProgress) {
		if cells > 0 {
			p.width = cells
		}
	}
}

// StepProgress redraws a single status line in place.
type StepProgress struct {
	mu    sync.Mutex
	out   io.Writer
	label string
	width int

	total   int64
	done    int64
	started time.Time
}

// NewProgressReporter returns a reporter writing to w, or os.Stdout when w
// is nil.
func NewProgressReporter(w io.Writer, opts ...ProgressOption) ProgressReporter {
	if w == nil {
		w = os.Stdout
	}
	p := &StepProgress{out: w, label: defaultProgressLabel, width: defaultProgressWidth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *StepProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total, p.done, p.started = total, 0, time.Now()
	p.draw()
}

func (p *StepProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = min(current, p.total)
	p.draw()
}

// Finish fills the bar and ends the line.
func (p *StepProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = p.total
	p.draw()
	fmt.Fprintln(p.out)
}

// Error abandons the line and prints err below it.
func (p *StepProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "\n✗ Error: %v\n", err)
}

// draw is a no-op until a positive total is known.
func (p *StepProgress) draw() {
	if p.total <= 0 {
		return
	}
	cells := int(int64(p.width) * p.done / p.total)
	line := fmt.Sprintf("%s: [%s%s] %3d%% (%d/%d) %s",
		p.label,
		strings.Repeat("=", cells), strings.Repeat(" ", p.width-cells),
		p.done*100/p.total, p.done, p.total,
		time.Since(p.started).Round(time.Second))
	io.WriteString(p.out, "\r"+line)
}
