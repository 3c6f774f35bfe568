package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/recordlist/internal/loader"
	"github.com/rshade/recordlist/internal/record"
	"github.com/rshade/recordlist/internal/store"
	"github.com/rshade/recordlist/internal/tui/detail"
)

// columnWidths holds the cell width of each record column, keyed by column key.
//
//nolint:gochecknoglobals,mnd // Fixed layout table.
var columnWidths = map[string]int{
	"firstName":  12,
	"lastName":   14,
	"email":      26,
	"age":        5,
	"city":       16,
	"occupation": 18,
	"status":     10,
	"joinedDate": 11,
}

// View renders the browser (Bubble Tea interface).
func (m *RecordsModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateForm:
		return m.form.View()
	case ViewStateDetail:
		if rec := m.list.GetSelectedItem(); rec != nil {
			return detail.Render(*rec, m.width) + "\n" + HelpStyle.Render("esc: back | q: quit")
		}
	case ViewStateLoading, ViewStateList:
	}

	snap := m.loader.Snapshot()
	if m.state == ViewStateLoading && snap.Err == nil {
		return RenderLoading(m.loading)
	}

	var b strings.Builder
	b.WriteString(m.renderTitle(snap))
	b.WriteString("\n")
	b.WriteString(HeaderStyle.Render(renderHeader(snap.Identity)))
	b.WriteString("\n")

	rows := m.list.View()
	if rows == "" && snap.Err == nil && !snap.Loading {
		rows = MutedStyle.Render("No records.")
	}
	b.WriteString(lipgloss.NewStyle().Height(m.listHeight()).Render(rows))
	b.WriteString("\n")
	b.WriteString(m.renderStatus(snap))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("↑↓/jk: scroll | 1-8: sort | enter: details | n: new | r: retry | q: quit"))
	return b.String()
}

func (m *RecordsModel) renderTitle(snap loader.Snapshot) string {
	title := TitleStyle.Render("Records")
	total := m.printer.Sprintf("%d", snap.TotalCount)
	if snap.Degraded {
		total = "~" + total
	}
	parts := []string{title, LabelStyle.Render(total + " total")}
	if snap.Identity.IsSorted() {
		col, err := record.LookupColumn(snap.Identity.Column)
		if err == nil {
			parts = append(parts, LabelStyle.Render("sorted by "+col.Title+" "+orderArrow(snap.Identity.Order)))
		}
	}
	return strings.Join(parts, MutedStyle.Render(" · "))
}

func renderHeader(id loader.QueryIdentity) string {
	cells := make([]string, len(record.Columns))
	for i, col := range record.Columns {
		label := strconv.Itoa(i+1) + " " + col.Title
		if id.Column == col.Key {
			label += " " + orderArrow(id.Order)
		}
		cells[i] = cell(label, columnWidths[col.Key])
	}
	return strings.Join(cells, " ")
}

func (m *RecordsModel) renderRow(rec record.Record, selected bool) string {
	cells := make([]string, len(record.Columns))
	for i, col := range record.Columns {
		cells[i] = cell(rec.Field(col.Key), columnWidths[col.Key])
	}
	row := strings.Join(cells, " ")
	if selected {
		return SelectedStyle.Render(row)
	}
	if m.loader.Snapshot().Loading {
		return MutedStyle.Render(row)
	}
	return row
}

func (m *RecordsModel) renderStatus(snap loader.Snapshot) string {
	loaded := m.printer.Sprintf("%d", len(snap.Records))
	total := m.printer.Sprintf("%d", snap.TotalCount)

	switch {
	case snap.Err != nil:
		msg := "Failed to load records: " + snap.Err.Error()
		if store.IsTransport(snap.Err) {
			msg = "Connection problem: " + snap.Err.Error()
		}
		return ErrorStyle.Render(msg) + MutedStyle.Render("  press r to retry")
	case snap.Loading:
		return m.loading.spinner.View() + " Refreshing..."
	case snap.FetchingNext:
		return m.loading.spinner.View() + " Loading more..."
	case m.notice != "":
		return OKStyle.Render(m.notice) + MutedStyle.Render("  "+loaded+" of "+total+" loaded")
	case snap.HasMore:
		return MutedStyle.Render(loaded + " of " + total + " loaded, scroll for more")
	default:
		return MutedStyle.Render("All " + total + " records loaded")
	}
}

func orderArrow(o store.SortOrder) string {
	if o == store.OrderDesc {
		return "↓"
	}
	return "↑"
}

func cell(s string, width int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Inline(true).Render(s)
}
