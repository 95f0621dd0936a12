package ui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/mcdev/internal/gamelog"
)

const (
	pyLine  = "[Python] [2024-05-01 10:00:01,456] [INFO] [Mod] mod loaded"
	sysLine = "[2024-05-01 10:00:00:123 INFO Renderer 1 2] renderer ready"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func feed(m *viewerModel, events ...Event) {
	for _, ev := range events {
		m.Update(eventMsg(ev))
	}
}

func TestViewerFiltersByMode(t *testing.T) {
	m := newViewerModel(gamelog.Session{Executable: "game.exe"}, nil, nil)
	feed(m, Event{Line: sysLine}, Event{Line: pyLine})

	view := m.View()
	if !strings.Contains(view, "mod loaded") {
		t.Errorf("normal view should show Python output:\n%s", view)
	}
	if strings.Contains(view, "renderer ready") {
		t.Errorf("normal view should hide system output:\n%s", view)
	}

	m.Update(key("v"))
	view = m.View()
	if !strings.Contains(view, "renderer ready") || !strings.Contains(view, "Mode: verbose") {
		t.Errorf("verbose view should show system output:\n%s", view)
	}

	m.Update(key("v"))
	if !strings.Contains(m.View(), "Mode: normal") {
		t.Error("second toggle should return to normal mode")
	}
}

func TestViewerClearAndExit(t *testing.T) {
	m := newViewerModel(gamelog.Session{Mode: gamelog.ModeVerbose}, nil, nil)
	feed(m, Event{Line: pyLine})
	m.Update(key("c"))
	if len(m.visible()) != 0 {
		t.Errorf("clear should drop lines, got %v", m.visible())
	}

	feed(m, Event{Exited: true, ExitCode: 2})
	view := m.View()
	if !strings.Contains(view, "exited with code 2") || !strings.Contains(view, "Game: exited (2)") {
		t.Errorf("exit not shown:\n%s", view)
	}
}

func TestViewerQuitAndHelp(t *testing.T) {
	m := newViewerModel(gamelog.Session{}, nil, nil)

	m.Update(key("h"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help screen not shown")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestViewerHeightLimitsLines(t *testing.T) {
	m := newViewerModel(gamelog.Session{Mode: gamelog.ModeVerbose}, nil, nil)
	for i := 0; i < 50; i++ {
		feed(m, Event{Line: "line"})
	}
	feed(m, Event{Line: "newest"})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	view := m.View()
	if got := strings.Count(view, "line\n"); got >= 50 {
		t.Errorf("expected output trimmed to the window, got %d lines", got)
	}
	if !strings.Contains(view, "newest") {
		t.Error("newest line should stay visible")
	}
}

func TestViewerKeepsBoundedHistory(t *testing.T) {
	m := newViewerModel(gamelog.Session{Mode: gamelog.ModeVerbose}, nil, nil)
	for i := 0; i < maxLines+10; i++ {
		m.apply(Event{Line: "x"})
	}
	if len(m.lines) != maxLines {
		t.Errorf("got %d lines, want %d", len(m.lines), maxLines)
	}
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan Event, 1)
	ch <- Event{Line: pyLine}
	if msg, ok := waitForEvent(ch)().(eventMsg); !ok || msg.Line != pyLine {
		t.Errorf("got %#v", msg)
	}
	close(ch)
	if _, ok := waitForEvent(ch)().(eventsClosedMsg); !ok {
		t.Error("closed channel should produce eventsClosedMsg")
	}
	if waitForEvent(nil) != nil {
		t.Error("nil channel should not produce a command")
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("buffer is not a TTY")
	}
}
