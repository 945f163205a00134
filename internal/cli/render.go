package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/eagraf/habitat-store/internal/progress"
	"golang.org/x/term"
)

const defaultWidth = 80

// renderer draws progress events. On a terminal it redraws a single line in place,
// otherwise it prints one line per event.
type renderer struct {
	out   io.Writer
	tty   bool
	width int
	drawn bool
}

func newRenderer(out io.Writer) *renderer {
	r := &renderer{out: out, width: defaultWidth}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.tty = true
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			r.width = width
		}
	}
	return r
}

func (r *renderer) Render(ev progress.Event) {
	line := r.describe(ev)
	if !r.tty {
		fmt.Fprintln(r.out, line)
		return
	}
	if len(line) > r.width-1 {
		line = line[:r.width-1]
	}
	fmt.Fprintf(r.out, "\r%-*s", r.width-1, line)
	r.drawn = true
}

// Done ends the in-place line so later output starts on a fresh one.
func (r *renderer) Done() {
	if r.tty && r.drawn {
		fmt.Fprintln(r.out)
		r.drawn = false
	}
}

func (r *renderer) describe(ev progress.Event) string {
	if ev.Kind != progress.KindDownload {
		return ev.Status
	}
	done := humanize.Bytes(uint64(ev.Downloaded))
	fraction, ok := ev.Fraction()
	if !ok {
		return fmt.Sprintf("Downloaded %s", done)
	}

	text := fmt.Sprintf(" %s / %s %3.0f%%", done, humanize.Bytes(uint64(ev.Total)), fraction*100)
	barWidth := r.width - len(text) - 3
	if barWidth < 10 {
		return strings.TrimSpace(text)
	}
	filled := int(fraction * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled) + "]" + text
}
