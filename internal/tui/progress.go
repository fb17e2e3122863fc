package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/bubbles/v2/progress"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	maxBarWidth  = 30
	// quarter is the step between progress lines on non-terminal output.
	quarter = 25
)

// Progress renders download progress. On a terminal it redraws one line in
// place; elsewhere it prints a line every quarter of the way.
type Progress struct {
	out         io.Writer
	label       string
	width       int
	interactive bool
	color       bool
	bar         progress.Model
	lastStep    int
	received    int64
	total       int64
}

// ProgressOption configures a Progress.
type ProgressOption func(*Progress)

// WithTerminalWidth forces in-place rendering clamped to width columns.
func WithTerminalWidth(width int) ProgressOption {
	return func(p *Progress) {
		p.interactive = true
		p.width = width
	}
}

// WithColor enables the colored bar.
func WithColor(enabled bool) ProgressOption {
	return func(p *Progress) { p.color = enabled }
}

// NewProgress creates a renderer writing to out.
func NewProgress(out io.Writer, label string, opts ...ProgressOption) *Progress {
	p := &Progress{out: out, label: label, width: defaultWidth, lastStep: -1, total: -1}

	if f, ok := out.(*os.File); ok {
		//nolint:gosec // G115: file descriptors are always small positive integers
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			p.interactive = true

			if w, _, err := term.GetSize(fd); err == nil && w > 0 {
				p.width = w
			}
		}
	}

	for _, opt := range opts {
		opt(p)
	}

	p.bar = progress.New(progress.WithWidth(min(maxBarWidth, p.width/3)), progress.WithoutPercentage())

	return p
}

// Update matches the downloader's progress callback.
func (p *Progress) Update(received, total int64) {
	p.received, p.total = received, total

	if p.interactive {
		p.redraw()

		return
	}

	if total <= 0 {
		return
	}

	step := int(received*100/total) / quarter * quarter
	if step > p.lastStep {
		p.lastStep = step
		_, _ = fmt.Fprintln(p.out, p.line(false))
	}
}

// Done finishes the progress output.
func (p *Progress) Done() {
	if p.interactive {
		p.redraw()
		_, _ = fmt.Fprintln(p.out)

		return
	}

	if p.total <= 0 || p.lastStep < 100 {
		_, _ = fmt.Fprintln(p.out, p.line(false))
	}
}

func (p *Progress) redraw() {
	_, _ = fmt.Fprint(p.out, "\r"+ansi.Truncate(p.line(true), p.width-1, "…")+ansi.EraseLineRight)
}

func (p *Progress) line(withBar bool) string {
	var b strings.Builder

	b.WriteString(p.label)

	if p.total <= 0 {
		fmt.Fprintf(&b, " %s", humanize.Bytes(uint64(max(p.received, 0))))

		return b.String()
	}

	percent := float64(p.received) / float64(p.total)

	if withBar {
		bar := p.bar.ViewAs(percent)
		if !p.color {
			bar = ansi.Strip(bar)
		}

		b.WriteString(" " + bar)
	}

	fmt.Fprintf(&b, " %3.0f%% %s / %s", percent*100,
		humanize.Bytes(uint64(p.received)), humanize.Bytes(uint64(p.total)))

	return b.String()
}
