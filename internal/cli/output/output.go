// Package output provides styled terminal rendering for the CLI.
package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles groups the lipgloss styles used for terminal output.
type Styles struct {
	Header  lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
}

// DefaultStyles returns the standard CLI color scheme.
func DefaultStyles() *Styles {
	return &Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// Renderer writes styled text to the command's output streams.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	styles *Styles
}

// NewRenderer creates a renderer over the given streams.
func NewRenderer(out, errOut io.Writer) *Renderer {
	return &Renderer{out: out, errOut: errOut, styles: DefaultStyles()}
}

// Styles returns the active style set.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the primary output stream.
func (r *Renderer) Writer() io.Writer { return r.out }

// Println writes a line to the primary stream.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted text to the primary stream.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Errorf writes a styled error line to the error stream.
func (r *Renderer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.errOut, "%s\n", r.styles.Error.Render(fmt.Sprintf(format, args...)))
}
