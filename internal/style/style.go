// Package style holds the terminal styles used by portalctl.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	// Success marks passed gates and completed writes.
	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")).
		Bold(true)

	// Warning marks tier conflicts and skipped rows.
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")).
		Bold(true)

	// Error marks blocked gates and rejected rows.
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	Info = lipgloss.NewStyle().
		Foreground(lipgloss.Color("12"))

	Dim = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	Bold = lipgloss.NewStyle().
		Bold(true)

	SuccessPrefix = Success.Render("✓")
	WarningPrefix = Warning.Render("⚠")
	ErrorPrefix   = Error.Render("✗")
	ArrowPrefix   = Info.Render("→")
)

var (
	header = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell   = lipgloss.NewStyle().Padding(0, 1)
)

// Table returns a bordered table with bold headers.
func Table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(Dim).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}
