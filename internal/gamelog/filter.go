package gamelog

import (
	"fmt"
	"strings"
)

// Mode selects how much output is shown.
type Mode string

const (
	// ModeNormal shows Python output only.
	ModeNormal Mode = "normal"
	// ModeVerbose shows everything the game prints.
	ModeVerbose Mode = "verbose"
)

// ParseMode accepts "normal" or "verbose", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeNormal, "":
		return ModeNormal, nil
	case ModeVerbose:
		return ModeVerbose, nil
	default:
		return "", fmt.Errorf("invalid game output mode %q", s)
	}
}

// Style is the color class of a shown line.
type Style int

const (
	StylePlain Style = iota
	StyleError
	StyleWarn
	StyleSuccess
	StyleInfo
	StyleMuted
	StyleHeader
)

// Entry is a line ready for display.
type Entry struct {
	Text  string
	Style Style
}

// Noise printed by the script runtime on every class lookup.
var getClsNoise = map[string]bool{
	"get_cls":            true,
	"get_cls success!!!": true,
}

// StyleFor picks a style from the first severity marker found in s.
func StyleFor(s string) Style {
	switch {
	case strings.Contains(s, "ERROR"):
		return StyleError
	case strings.Contains(s, "WARN"):
		return StyleWarn
	case strings.Contains(s, "SUC"):
		return StyleSuccess
	case strings.Contains(s, "INFO"):
		return StyleInfo
	case strings.Contains(s, "VERBOSE"):
		return StyleMuted
	default:
		return StylePlain
	}
}

// Filter reports whether l is shown in mode m and how.
func (m Mode) Filter(l Line) (Entry, bool) {
	if m == ModeVerbose {
		return verboseEntry(l), true
	}
	return normalEntry(l)
}

func normalEntry(l Line) (Entry, bool) {
	switch l.Kind {
	case KindPython:
		if l.Message == "" {
			return Entry{}, false
		}
		return Entry{Text: l.Message, Style: StyleFor(l.Message)}, true
	case KindGame:
		if l.Module == "Engine" || getClsNoise[l.Message] {
			return Entry{}, false
		}
		style := StyleFor(l.Level)
		if l.Module == "Developer" {
			style = StyleMuted
		}
		text := strings.TrimSpace(strings.TrimPrefix(l.Raw, pythonHeader))
		return Entry{Text: text, Style: style}, true
	default:
		return Entry{}, false
	}
}

func verboseEntry(l Line) Entry {
	switch l.Kind {
	case KindSystem, KindGame:
		return Entry{Text: l.Raw, Style: StyleFor(l.Level)}
	}
	if strings.HasPrefix(l.Raw, "NO LOG FILE!") {
		return Entry{Text: l.Raw, Style: StyleMuted}
	}
	return Entry{Text: l.Raw, Style: StyleFor(l.Raw)}
}
