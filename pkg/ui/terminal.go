package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Banner is printed at the start of an interactive run
const Banner = `
   ┌─┐┬ ┬┌─┐┬─┐┌─┐┬ ┬┬┬  ┬┌─┐┬─┐
   │ ┬├─┤├─┤├┬┘│  ├─┤│└┐┌┘├┤ ├┬┘
   └─┘┴ ┴┴ ┴┴└─└─┘┴ ┴┴ └┘ └─┘┴└─
`

// Console writes labelled, optionally coloured lines
type Console struct {
	out io.Writer

	cyan    lipgloss.Style
	yellow  lipgloss.Style
	red     lipgloss.Style
	green   lipgloss.Style
	magenta lipgloss.Style
	dim     lipgloss.Style
}

// NewConsole returns a Console for out. Colour is used only when color
// is true and out is a terminal.
func NewConsole(out io.Writer, color bool) *Console {
	c := &Console{out: out}
	if !color || !IsTerminal(out) {
		return c
	}

	r := lipgloss.NewRenderer(out)
	c.cyan = r.NewStyle().Foreground(lipgloss.Color("6"))
	c.yellow = r.NewStyle().Foreground(lipgloss.Color("3"))
	c.red = r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	c.green = r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	c.magenta = r.NewStyle().Foreground(lipgloss.Color("5"))
	c.dim = r.NewStyle().Faint(true)
	return c
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Writer returns the underlying output
func (c *Console) Writer() io.Writer {
	return c.out
}

// PrintBanner prints the banner
func (c *Console) PrintBanner() {
	fmt.Fprint(c.out, c.cyan.Render(Banner)+"\n")
}

// Error prints an error line
func (c *Console) Error(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprint(args[0])
	}
	fmt.Fprintln(c.out, c.red.Render(msg))
}

// Success prints a success line
func (c *Console) Success(msg string) {
	fmt.Fprintln(c.out, c.green.Render(msg))
}

// Info prints a label/value pair
func (c *Console) Info(label, value string) {
	fmt.Fprintf(c.out, "%s: %s\n", c.cyan.Render(label), c.yellow.Render(value))
}

// Warning prints a warning line
func (c *Console) Warning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprint(args[0])
	}
	fmt.Fprintln(c.out, c.yellow.Render(msg))
}

// Highlight prints an emphasised line
func (c *Console) Highlight(msg string) {
	fmt.Fprintln(c.out, c.magenta.Render(msg))
}

// Dim renders text faint
func (c *Console) Dim(text string) string {
	return c.dim.Render(text)
}
