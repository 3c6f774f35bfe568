package listview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// defaultBufferSize is the number of rows rendered beyond the viewport when
// the list is drawn without a fixed window.
const defaultBufferSize = 0

// RenderFunc renders the item at index. selected marks the cursor row.
type RenderFunc[T any] func(item T, selected bool) string

// VirtualListModel renders only the rows inside its viewport. Items can be
// replaced or extended at any time; the cursor stays on the same index when
// it is still in range, which keeps the selection steady while pages append.
type VirtualListModel[T any] struct {
	items      []T
	renderFunc RenderFunc[T]

	selected int
	offset   int

	height     int
	width      int
	bufferSize int
}

// NewVirtualListModel creates a list showing height rows of width columns.
func NewVirtualListModel[T any](items []T, height, width int, renderFunc RenderFunc[T]) *VirtualListModel[T] {
	m := &VirtualListModel[T]{
		items:      items,
		renderFunc: renderFunc,
		height:     max(height, 1),
		width:      width,
		bufferSize: defaultBufferSize,
	}
	m.clamp()
	return m
}

// Init implements tea.Model.
func (m *VirtualListModel[T]) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys. Resizing is left to SetSize because the
// owner decides how many terminal rows the list gets.
func (m *VirtualListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		m.handleKey(key)
	}
	return m, nil
}

// HandleKey moves the cursor and reports whether the key was a navigation key.
func (m *VirtualListModel[T]) HandleKey(msg tea.KeyMsg) bool {
	return m.handleKey(msg)
}

//nolint:exhaustive // Only navigation keys are handled.
func (m *VirtualListModel[T]) handleKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp:
		m.move(-1)
	case tea.KeyDown:
		m.move(1)
	case tea.KeyPgUp:
		m.move(-m.height)
	case tea.KeyPgDown:
		m.move(m.height)
	case tea.KeyHome:
		m.SetSelected(0)
	case tea.KeyEnd:
		m.SetSelected(len(m.items) - 1)
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return false
		}
		switch msg.Runes[0] {
		case 'j':
			m.move(1)
		case 'k':
			m.move(-1)
		case 'g':
			m.SetSelected(0)
		case 'G':
			m.SetSelected(len(m.items) - 1)
		default:
			return false
		}
	default:
		return false
	}
	return true
}

func (m *VirtualListModel[T]) move(delta int) {
	m.SetSelected(m.selected + delta)
}

// clamp keeps the cursor in range and scrolls the window just enough to
// contain it.
func (m *VirtualListModel[T]) clamp() {
	if len(m.items) == 0 {
		m.selected, m.offset = 0, 0
		return
	}
	m.selected = min(max(m.selected, 0), len(m.items)-1)

	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+m.height {
		m.offset = m.selected - m.height + 1
	}
	// Do not leave blank rows at the bottom when the list could fill them.
	m.offset = max(min(m.offset, len(m.items)-m.height), 0)
}

// View renders the rows of the viewport.
func (m *VirtualListModel[T]) View() string {
	if len(m.items) == 0 {
		return ""
	}

	from := max(m.offset-m.bufferSize, 0)
	to := min(m.VisibleTo()+m.bufferSize, len(m.items))

	lines := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		lines = append(lines, m.renderFunc(m.items[i], i == m.selected))
	}
	return strings.Join(lines, "\n")
}

// SetItems replaces the items. The cursor keeps its index when possible.
func (m *VirtualListModel[T]) SetItems(items []T) {
	m.items = items
	m.clamp()
}

// SetSize changes the viewport.
func (m *VirtualListModel[T]) SetSize(height, width int) {
	m.height = max(height, 1)
	m.width = width
	m.clamp()
}

// Items returns the current items.
func (m *VirtualListModel[T]) Items() []T {
	return m.items
}

// ItemCount returns the total number of items in the list.
func (m *VirtualListModel[T]) ItemCount() int {
	return len(m.items)
}

// Selected returns the currently selected item index.
func (m *VirtualListModel[T]) Selected() int {
	return m.selected
}

// SetSelected moves the cursor, capped to valid bounds.
func (m *VirtualListModel[T]) SetSelected(index int) {
	m.selected = index
	m.clamp()
}

// VisibleFrom returns the first visible item index (inclusive).
func (m *VirtualListModel[T]) VisibleFrom() int {
	return m.offset
}

// VisibleTo returns the last visible item index (exclusive).
func (m *VirtualListModel[T]) VisibleTo() int {
	return min(m.offset+m.height, len(m.items))
}

// IsVisible reports whether the item at index is inside the viewport.
func (m *VirtualListModel[T]) IsVisible(index int) bool {
	return index >= m.VisibleFrom() && index < m.VisibleTo()
}

// TailVisible reports whether the last item is inside the viewport.
func (m *VirtualListModel[T]) TailVisible() bool {
	return len(m.items) > 0 && m.IsVisible(len(m.items)-1)
}

// Height returns the viewport height.
func (m *VirtualListModel[T]) Height() int {
	return m.height
}

// Width returns the viewport width.
func (m *VirtualListModel[T]) Width() int {
	return m.width
}

// GetSelectedItem returns the currently selected item, or nil when the list
// is empty.
func (m *VirtualListModel[T]) GetSelectedItem() *T {
	if len(m.items) == 0 {
		return nil
	}
	return &m.items[m.selected]
}
