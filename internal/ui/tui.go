// Package ui provides the optional terminal viewer for a game session.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/mcdev/internal/gamelog"
)

// maxLines bounds the raw lines kept for re-filtering.
const maxLines = 5000

// Event is one item of game output delivered to the viewer.
type Event struct {
	Line    string
	Partial bool
	// Exited is set once the game process has ended.
	Exited   bool
	ExitCode int
	Err      error
}

// ErrNotTTY is returned when the viewer is started without a terminal.
var ErrNotTTY = errors.New("tui requires a TTY")

// RunViewer shows game output from events until the user quits. The
// viewer stays open after the game exits so the final output can be read.
func RunViewer(ctx context.Context, session gamelog.Session, events <-chan Event, tb *gamelog.Tracebacks) error {
	if !IsTTY(os.Stdout) {
		return ErrNotTTY
	}
	model := newViewerModel(session, events, tb)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m, ok := finalModel.(*viewerModel); ok && m.streamErr != nil {
		return m.streamErr
	}
	return nil
}

type rawLine struct {
	text    string
	partial bool
}

type viewerModel struct {
	session   gamelog.Session
	events    <-chan Event
	printer   *gamelog.Printer
	header    []gamelog.Entry
	lines     []rawLine
	height    int
	showHelp  bool
	exited    bool
	exitCode  int
	streamErr error
}

type eventMsg Event

type eventsClosedMsg struct{}

func newViewerModel(session gamelog.Session, events <-chan Event, tb *gamelog.Tracebacks) *viewerModel {
	if session.Mode == "" {
		session.Mode = gamelog.ModeNormal
	}
	return &viewerModel{
		session: session,
		events:  events,
		printer: &gamelog.Printer{Mode: session.Mode, Tracebacks: tb},
		header:  gamelog.HeaderEntries(session, time.Now()),
	}
}

func (m *viewerModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(ch <-chan Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "v":
			m.toggleMode()
		case "c":
			m.lines = nil
		case "h", "?":
			m.showHelp = !m.showHelp
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case eventMsg:
		m.apply(Event(msg))
		return m, waitForEvent(m.events)
	case eventsClosedMsg:
		m.events = nil
	}
	return m, nil
}

func (m *viewerModel) toggleMode() {
	if m.session.Mode == gamelog.ModeVerbose {
		m.session.Mode = gamelog.ModeNormal
	} else {
		m.session.Mode = gamelog.ModeVerbose
	}
	m.printer.Mode = m.session.Mode
}

func (m *viewerModel) apply(ev Event) {
	if ev.Err != nil {
		m.streamErr = ev.Err
	}
	if ev.Exited {
		m.exited = true
		m.exitCode = ev.ExitCode
		return
	}
	if ev.Line == "" {
		return
	}
	m.lines = append(m.lines, rawLine{text: ev.Line, partial: ev.Partial})
	if over := len(m.lines) - maxLines; over > 0 {
		m.lines = append([]rawLine(nil), m.lines[over:]...)
	}
}

// visible returns the rendered output lines for the current mode.
func (m *viewerModel) visible() []string {
	out := make([]string, 0, len(m.lines))
	for _, l := range m.lines {
		if e, ok := m.printer.Entry(l.text, l.partial); ok {
			out = append(out, gamelog.Render(e))
		}
	}
	return out
}

func (m *viewerModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m)
		return b.String()
	}

	for _, e := range m.header {
		b.WriteString(gamelog.Render(e) + "\n")
	}
	b.WriteString("\n")

	lines := m.visible()
	if budget := m.height - len(m.header) - 6; m.height > 0 && len(lines) > budget {
		lines = lines[len(lines)-max(budget, 1):]
	}
	for _, l := range lines {
		b.WriteString(l + "\n")
	}

	if m.exited {
		b.WriteString(gamelog.RenderExit(m.exitCode) + "\n")
	}
	b.WriteString("\n")
	writeFooter(&b, m)
	return b.String()
}

func writeTitle(b *strings.Builder) {
	title := "mcdev session"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  v            Toggle verbose output\n")
	b.WriteString("  c            Clear output\n")
	b.WriteString("  h, ?         Toggle this help screen\n\n")
}

func writeFooter(b *strings.Builder, m *viewerModel) {
	state := "running"
	if m.exited {
		state = fmt.Sprintf("exited (%d)", m.exitCode)
	}
	fmt.Fprintf(b, "Mode: %s | Game: %s | Press h for help | q to quit\n", m.session.Mode, state)
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
