// Package gamelog classifies, filters and colors launcher output.
package gamelog

import (
	"regexp"
	"strings"
)

var (
	// [2024-01-02 03:04:05:678 INFO Tag 1234 5678] message
	systemLogRe = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}:\d{3})\s(VERBOSE|INFO|WARN|ERROR)\s(\S+)\s(\d+)\s(\d+)\]\s(.*)$`)
	// [Python] [2024-01-02 03:04:05,678] [INFO] [Module] message
	gameLogRe = regexp.MustCompile(`^\[Python\]\s\[(\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2},\d{3})\]\s(.*)$`)
	bracketRe = regexp.MustCompile(`\[(.*?)\]`)
)

const pythonHeader = "[Python]"

// Kind is the shape of a raw output line.
type Kind int

const (
	KindOther Kind = iota
	// KindSystem is an engine log line.
	KindSystem
	// KindGame is a timestamped Python log line.
	KindGame
	// KindPython is any other line starting with [Python].
	KindPython
)

func (k Kind) String() string {
	switch k {
	case KindSystem:
		return "system"
	case KindGame:
		return "game"
	case KindPython:
		return "python"
	default:
		return "other"
	}
}

// Line is a classified output line.
type Line struct {
	Raw       string
	Kind      Kind
	Timestamp string
	// Level is the severity token, e.g. INFO.
	Level string
	// Module is the tag of system lines or the second bracket of game lines.
	Module  string
	Message string
}

// Classify parses a single line without its trailing newline.
func Classify(raw string) Line {
	line := Line{Raw: raw}

	if m := systemLogRe.FindStringSubmatch(raw); m != nil {
		line.Kind = KindSystem
		line.Timestamp = m[1]
		line.Level = m[2]
		line.Module = m[3]
		line.Message = m[6]
		return line
	}

	if m := gameLogRe.FindStringSubmatch(raw); m != nil {
		line.Kind = KindGame
		line.Timestamp = m[1]
		rest := m[2]
		tokens := bracketRe.FindAllStringSubmatch(rest, -1)
		if len(tokens) > 0 {
			line.Level = tokens[0][1]
		}
		if len(tokens) > 1 {
			line.Module = tokens[1][1]
		}
		line.Message = strings.TrimSpace(bracketRe.ReplaceAllString(rest, ""))
		return line
	}

	if strings.HasPrefix(raw, pythonHeader) {
		line.Kind = KindPython
		line.Message = strings.TrimSpace(strings.TrimPrefix(raw, pythonHeader))
	}
	return line
}
