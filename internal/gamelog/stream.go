package gamelog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorRed      = lipgloss.Color("1")
	colorGreen    = lipgloss.Color("2")
	colorYellow   = lipgloss.Color("3")
	colorCyan     = lipgloss.Color("6")
	colorGray     = lipgloss.Color("7")
	colorDarkGray = lipgloss.Color("8")
)

// Styles maps each Style to its lipgloss rendering.
var Styles = map[Style]lipgloss.Style{
	StylePlain:   lipgloss.NewStyle(),
	StyleError:   lipgloss.NewStyle().Foreground(colorRed),
	StyleWarn:    lipgloss.NewStyle().Foreground(colorYellow),
	StyleSuccess: lipgloss.NewStyle().Foreground(colorGreen),
	StyleInfo:    lipgloss.NewStyle().Foreground(colorGray),
	StyleMuted:   lipgloss.NewStyle().Foreground(colorDarkGray),
	StyleHeader:  lipgloss.NewStyle().Bold(true).Foreground(colorCyan),
}

// exitStyle renders the final exit line.
var exitStyle = lipgloss.NewStyle().Bold(true).Foreground(colorRed)

// Render returns e styled for a terminal.
func Render(e Entry) string {
	style, ok := Styles[e.Style]
	if !ok {
		return e.Text
	}
	return style.Render(e.Text)
}

// Session describes a run for the header lines.
type Session struct {
	Mode         Mode
	Executable   string
	WorldDir     string
	IncludedDirs []string
}

// HeaderEntries returns the lines printed before the game starts.
func HeaderEntries(s Session, now time.Time) []Entry {
	prefix := fmt.Sprintf("[%s] [INFO] [System] ", now.Format("2006-01-02 15:04:05,000"))
	included := "none"
	if len(s.IncludedDirs) > 0 {
		included = strings.Join(s.IncludedDirs, ", ")
	}
	lines := []string{
		"Starting game",
		"Log mode: " + string(s.Mode),
		"Executable: " + s.Executable,
	}
	if s.WorldDir != "" {
		lines = append(lines, "World: "+s.WorldDir)
	}
	lines = append(lines, "Included mod dirs: "+included)

	entries := make([]Entry, len(lines))
	for i, l := range lines {
		entries[i] = Entry{Text: prefix + l, Style: StyleHeader}
	}
	return entries
}

// ExitText is the line printed after the game exits.
func ExitText(code int) string {
	return fmt.Sprintf("Game process exited with code %d", code)
}

// RenderExit styles ExitText.
func RenderExit(code int) string {
	return exitStyle.Render(ExitText(code))
}

// ScanLines calls fn for every line read from r with surrounding whitespace
// trimmed. A final line without a newline is passed with partial set. It
// stops early when ctx is done.
func ScanLines(ctx context.Context, r io.Reader, fn func(line string, partial bool)) error {
	br := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if strings.HasSuffix(text, "\n") {
			fn(strings.TrimSpace(text), false)
		} else if text != "" {
			fn(strings.TrimSpace(text), true)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

// Printer writes filtered game output.
type Printer struct {
	Out   io.Writer
	Mode  Mode
	Color bool
	// Tracebacks, when set, annotates traceback frames with local paths.
	Tracebacks *Tracebacks
}

// Entry converts a raw line to a displayable entry. Partial lines are kept
// as written.
func (p *Printer) Entry(raw string, partial bool) (Entry, bool) {
	if raw == "" {
		return Entry{}, false
	}
	if partial {
		return Entry{Text: raw}, true
	}
	e, ok := p.Mode.Filter(Classify(raw))
	if !ok || e.Text == "" {
		return Entry{}, false
	}
	if p.Tracebacks != nil {
		if path, line, found := p.Tracebacks.Resolve(e.Text); found {
			e.Text = fmt.Sprintf("%s  (%s:%d)", e.Text, path, line)
		}
	}
	return e, true
}

// Print writes e followed by a newline.
func (p *Printer) Print(e Entry) {
	text := e.Text
	if p.Color {
		text = Render(e)
	}
	fmt.Fprintln(p.Out, text)
}

// Header writes the session header.
func (p *Printer) Header(s Session) {
	for _, e := range HeaderEntries(s, time.Now()) {
		p.Print(e)
	}
}

// Exit writes the exit line.
func (p *Printer) Exit(code int) {
	if p.Color {
		fmt.Fprintln(p.Out, RenderExit(code))
		return
	}
	fmt.Fprintln(p.Out, ExitText(code))
}

// Stream copies r to the printer until EOF or ctx is done.
func (p *Printer) Stream(ctx context.Context, r io.Reader) error {
	return ScanLines(ctx, r, func(line string, partial bool) {
		if e, ok := p.Entry(line, partial); ok {
			p.Print(e)
		}
	})
}

// Stream filters game output from r into w.
func Stream(ctx context.Context, r io.Reader, w io.Writer, mode Mode) error {
	p := &Printer{Out: w, Mode: mode}
	return p.Stream(ctx, r)
}
