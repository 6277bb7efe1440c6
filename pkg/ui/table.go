package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"ssh-manager/pkg/profile"
)

// RenderProfiles renders ps as a table sorted by alias. The short form shows
// alias, host and user; all adds port, auth kind, remote dir and command.
// Passwords are never shown, only their kind.
func RenderProfiles(ps profile.Profiles, all bool, th Theme) string {
	headers := []string{"Alias", "Host", "User"}
	if all {
		headers = append(headers, "Port", "Auth", "Dir", "Command")
	}

	rows := make([][]string, 0, len(ps))
	for _, alias := range ps.Aliases() {
		p := ps[alias]
		user := p.User
		if user == "" {
			user = "(" + profile.CurrentUsername() + ")"
		}
		row := []string{alias, p.Host, user}
		if all {
			port := p.Port
			if port == 0 {
				port = profile.DefaultPort
			}
			row = append(row, strconv.Itoa(port), string(p.Auth()), p.RemoteDir, p.DefaultCommand)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(th.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return th.Header.Padding(0, 1)
			case col == 0:
				return th.Accent.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}
