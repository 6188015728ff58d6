// Package report renders a per-real lookup-table snapshot as a terminal
// histogram or as JSON lines, adapted from the grep teacher's result
// formatting for a fragmentation report instead of colored match output.
package report

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sys/unix"
)

// Styles holds the lipgloss styles used by the text histogram.
type Styles struct {
	Name   lipgloss.Style
	Bar    lipgloss.Style
	Stat   lipgloss.Style
	Bad    lipgloss.Style
	Header lipgloss.Style
}

// NewStyles returns the default color styles.
func NewStyles() Styles {
	return Styles{
		Name:   lipgloss.NewStyle().Foreground(lipgloss.Color("5")), // magenta
		Bar:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")), // green
		Stat:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")), // cyan
		Bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Header: lipgloss.NewStyle().Bold(true),
	}
}

// NoStyles returns styles with no coloring, for non-terminal output.
func NoStyles() Styles {
	return Styles{
		Name:   lipgloss.NewStyle(),
		Bar:    lipgloss.NewStyle(),
		Stat:   lipgloss.NewStyle(),
		Bad:    lipgloss.NewStyle(),
		Header: lipgloss.NewStyle(),
	}
}

// IsTerminal reports whether fd refers to a terminal.
func IsTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	return err == nil
}

// StdoutIsTerminal reports whether stdout is a terminal.
func StdoutIsTerminal() bool {
	return IsTerminal(os.Stdout.Fd())
}
