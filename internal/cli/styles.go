package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#FF00FF")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
	successColor = lipgloss.Color("#00AA00")
	warningColor = lipgloss.Color("#FFA500")
	errorColor   = lipgloss.Color("#FF3333")
	infoColor    = lipgloss.Color("#00AAAA")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// Level tags a console line.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
	LevelTerminated
)

var levelTags = map[Level]struct {
	tag   string
	style lipgloss.Style
}{
	LevelInfo:       {"INFO", lipgloss.NewStyle().Foreground(infoColor)},
	LevelSuccess:    {"SUCCESS", lipgloss.NewStyle().Bold(true).Foreground(successColor)},
	LevelWarning:    {"WARNING", lipgloss.NewStyle().Bold(true).Foreground(warningColor)},
	LevelError:      {"ERROR", lipgloss.NewStyle().Bold(true).Foreground(errorColor)},
	LevelTerminated: {"TERMINATED", lipgloss.NewStyle().Bold(true).Foreground(primaryColor)},
}

// Console prints tagged, coloured status lines for people at a terminal.
// Machine-readable diagnostics go through the logger instead.
type Console struct {
	Out io.Writer
	Err io.Writer
}

func NewConsole() *Console {
	return &Console{Out: os.Stdout, Err: os.Stderr}
}

func (c *Console) print(level Level, message string) {
	t := levelTags[level]
	w := c.Out
	if level == LevelError {
		w = c.Err
	}
	fmt.Fprintf(w, "[%s] %s\n", t.style.Render(t.tag), t.style.Render(message))
}

func (c *Console) Info(format string, args ...interface{}) {
	c.print(LevelInfo, fmt.Sprintf(format, args...))
}

func (c *Console) Success(format string, args ...interface{}) {
	c.print(LevelSuccess, fmt.Sprintf(format, args...))
}

func (c *Console) Warn(format string, args ...interface{}) {
	c.print(LevelWarning, fmt.Sprintf(format, args...))
}

func (c *Console) Error(format string, args ...interface{}) {
	c.print(LevelError, fmt.Sprintf(format, args...))
}

func (c *Console) Terminate(format string, args ...interface{}) {
	c.print(LevelTerminated, fmt.Sprintf(format, args...))
}

// List prints a titled key/value block, one entry per line.
func (c *Console) List(title string, entries map[string][]string, order []string) {
	fmt.Fprintln(c.Out, TitleStyle.Render(title))
	for _, key := range order {
		values := entries[key]
		if len(values) == 0 {
			fmt.Fprintln(c.Out, ValueStyle.Render(key))
			continue
		}
		fmt.Fprintf(c.Out, "%s %s\n", ValueStyle.Render(key+":"), KeyStyle.Render(strings.Join(values, ", ")))
	}
}

// PrintError prints an error message
func PrintError(message string) {
	NewConsole().Error("%s", message)
}
