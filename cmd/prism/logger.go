package main

import (
	"fmt"
	"io"
	"sync"

	"charm.land/lipgloss/v2"
)

var (
	prefixStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F2B84B"))
)

// logger prints styled progress lines. It satisfies render.Logger and is
// safe for concurrent use.
type logger struct {
	mu sync.Mutex
	w  io.Writer
}

func newLogger(w io.Writer) *logger {
	return &logger{w: w}
}

// Printf writes a progress line.
func (l *logger) Printf(format string, args ...any) {
	l.print(prefixStyle.Render("prism"), format, args...)
}

// Warnf writes a warning line.
func (l *logger) Warnf(format string, args ...any) {
	l.print(warnStyle.Render("warn "), format, args...)
}

func (l *logger) print(prefix, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lipgloss.Fprint(l.w, prefix+" "+fmt.Sprintf(format, args...))
}
