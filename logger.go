package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

var (
	prefixStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	timeStyle    = lipgloss.NewStyle().Faint(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F2B705"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// styledLogger implements core.Logger with one styled line per message
type styledLogger struct {
	w   io.Writer
	now func() time.Time
}

func newStyledLogger(w io.Writer) core.Logger {
	return &styledLogger{w: w, now: time.Now}
}

func (l *styledLogger) Printf(format string, args ...interface{}) {
	message := strings.TrimRight(fmt.Sprintf(format, args...), "\n")

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "stopped"), strings.Contains(lower, "warning"):
		message = warningStyle.Render(message)
	case strings.HasPrefix(lower, "render completed"), strings.HasPrefix(lower, "saved"), strings.HasPrefix(lower, "published"):
		message = successStyle.Render(message)
	}

	lipgloss.Fprintln(l.w, timeStyle.Render(l.now().Format("15:04:05")), prefixStyle.Render("raytracer"), message)
}
