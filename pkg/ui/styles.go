package ui

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ThemeEnv selects a palette: none | dark | light | catppuccin-mocha.
// Unset means dark, with color only when the output is a terminal.
const ThemeEnv = "SSHM_THEME"

// Theme is the set of styles used by the console, the list table and the
// picker. The zero Theme renders plain text.
type Theme struct {
	Header   lipgloss.Style
	Accent   lipgloss.Style
	Selected lipgloss.Style
	Dim      lipgloss.Style
	Border   lipgloss.Style
	Help     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warn     lipgloss.Style
}

// LoadTheme resolves the palette from ThemeEnv and renders for w. Color is
// dropped automatically when w is not a terminal.
func LoadTheme(w io.Writer) Theme {
	r := lipgloss.NewRenderer(w)
	switch strings.ToLower(strings.TrimSpace(os.Getenv(ThemeEnv))) {
	case "none", "off", "disabled":
		return NoTheme()
	case "light":
		return LightTheme(r)
	case "catppuccin", "catppuccin-mocha", "mocha":
		return CatppuccinMochaTheme(r)
	default:
		return DarkTheme(r)
	}
}

// NoTheme disables all styling.
func NoTheme() Theme {
	s := lipgloss.NewStyle()
	return Theme{Header: s, Accent: s, Selected: s, Dim: s, Border: s, Help: s, Error: s, Success: s, Warn: s}
}

// DarkTheme is the default palette for dark terminals.
func DarkTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Header:   r.NewStyle().Bold(true),
		Accent:   r.NewStyle().Foreground(lipgloss.Color("6")),
		Selected: r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Dim:      r.NewStyle().Faint(true),
		Border:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Help:     r.NewStyle().Foreground(lipgloss.Color("6")),
		Error:    r.NewStyle().Foreground(lipgloss.Color("1")),
		Success:  r.NewStyle().Foreground(lipgloss.Color("2")),
		Warn:     r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// LightTheme is a palette for light terminals.
func LightTheme(r *lipgloss.Renderer) Theme {
	t := DarkTheme(r)
	t.Accent = r.NewStyle().Foreground(lipgloss.Color("4"))
	t.Selected = r.NewStyle().Bold(true).Foreground(lipgloss.Color("0"))
	t.Help = r.NewStyle().Foreground(lipgloss.Color("4"))
	return t
}

// CatppuccinMochaTheme approximates Catppuccin Mocha with 256-color codes.
func CatppuccinMochaTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Header:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("183")), // mauve
		Accent:   r.NewStyle().Foreground(lipgloss.Color("44")),             // teal
		Selected: r.NewStyle().Bold(true).Foreground(lipgloss.Color("216")), // peach
		Dim:      r.NewStyle().Foreground(lipgloss.Color("245")),
		Border:   r.NewStyle().Foreground(lipgloss.Color("240")),
		Help:     r.NewStyle().Foreground(lipgloss.Color("44")),
		Error:    r.NewStyle().Foreground(lipgloss.Color("203")),
		Success:  r.NewStyle().Foreground(lipgloss.Color("114")),
		Warn:     r.NewStyle().Foreground(lipgloss.Color("215")),
	}
}
