package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Status colors
var (
	successColor = lipgloss.Color("#4ADE80")
	errorColor   = lipgloss.Color("#F87171")
	warnColor    = lipgloss.Color("#FBBF24")
	mutedColor   = lipgloss.Color("#64748B")
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(warnColor)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// Status tags used by doctor and connect --check.
const (
	tagOK   = "[ OK ]"
	tagMiss = "[MISS]"
	tagWarn = "[WARN]"
	tagFail = "[FAIL]"
	tagInfo = "[INFO]"
)

// styler renders status tags, in colour only when writing to a terminal.
type styler struct {
	color bool
}

func newStyler(w io.Writer) styler {
	f, ok := w.(*os.File)
	if !ok {
		return styler{}
	}
	return styler{color: isatty.IsTerminal(f.Fd())}
}

func (s styler) tag(tag string) string {
	if !s.color {
		return tag
	}
	switch tag {
	case tagOK:
		return okStyle.Render(tag)
	case tagFail:
		return failStyle.Render(tag)
	case tagWarn, tagMiss:
		return warnStyle.Render(tag)
	default:
		return mutedStyle.Render(tag)
	}
}

func (s styler) muted(text string) string {
	if !s.color {
		return text
	}
	return mutedStyle.Render(text)
}
