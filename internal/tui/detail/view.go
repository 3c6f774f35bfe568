package detail

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/recordlist/internal/record"
)

const (
	labelWidth = 12
	minWidth   = 30
)

//nolint:gochecknoglobals // Immutable style values.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle = lipgloss.NewStyle().Width(labelWidth).Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Render draws rec inside a box of the given width.
func Render(rec record.Record, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(rec.FullName()))
	b.WriteString("\n\n")

	line := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	line("ID", valueStyle.Render(rec.ID))
	for _, col := range record.Columns {
		value := rec.Field(col.Key)
		switch {
		case col.Key == "status":
			value = StatusBadge(rec.Status)
		case value == "":
			value = inactiveStyle.Render("-")
		default:
			value = valueStyle.Render(value)
		}
		line(col.Title, value)
	}

	return boxStyle.Width(max(width-4, minWidth)).Render(strings.TrimSuffix(b.String(), "\n"))
}

// StatusBadge colors a status value.
func StatusBadge(s record.Status) string {
	if s == record.StatusActive {
		return activeStyle.Render(string(s))
	}
	return inactiveStyle.Render(string(s))
}
