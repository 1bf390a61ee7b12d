package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Console prints styled command output.
type Console struct {
	out    io.Writer
	Bold   *color.Color
	Green  *color.Color
	Yellow *color.Color
	Cyan   *color.Color
	Faint  *color.Color
}

// NewConsole creates a Console writing to out. fatih/color turns colors off
// by itself when stdout is not a terminal (color.NoColor).
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:    out,
		Bold:   color.New(color.Bold),
		Green:  color.New(color.FgGreen),
		Yellow: color.New(color.FgYellow),
		Cyan:   color.New(color.FgCyan),
		Faint:  color.New(color.Faint),
	}
}

// Println writes one line of already-styled text.
func (c *Console) Println(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", a...)
}

// Success prints a success message.
func (c *Console) Success(format string, a ...interface{}) {
	_, _ = c.Green.Fprintf(c.out, "✓ %s\n", fmt.Sprintf(format, a...))
}

// Warn prints a warning message.
func (c *Console) Warn(format string, a ...interface{}) {
	_, _ = c.Yellow.Fprintf(c.out, "! %s\n", fmt.Sprintf(format, a...))
}
