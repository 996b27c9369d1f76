package tui

// Layout proportions
const (
	InspectorColumnPercent = 40
	MinColumnWidth         = 24

	// below this width the inspector is hidden regardless of the toggle
	MinSplitWidth = 70

	// Vertical layout: single footer line
	ChromeHeight = 1
)

// paneLayout holds calculated pane widths for the View
type paneLayout struct {
	tableWidth     int
	inspectorWidth int // 0 if not shown
}

// calculateLayout splits the available width between table and inspector
func (m Model) calculateLayout(availableWidth int) paneLayout {
	if !m.ShowInspector || availableWidth < MinSplitWidth {
		return paneLayout{tableWidth: availableWidth}
	}
	inspector := max(availableWidth*InspectorColumnPercent/100, MinColumnWidth)
	return paneLayout{
		tableWidth:     max(availableWidth-inspector, MinColumnWidth),
		inspectorWidth: inspector,
	}
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	contentHeight := max(m.Height-ChromeHeight, 1)
	layout := m.calculateLayout(m.Width)

	m.Table.SetSize(layout.tableWidth, contentHeight)
	if layout.inspectorWidth > 0 {
		m.Inspector.SetSize(layout.inspectorWidth, contentHeight)
	}
	m.Search.SetSize(m.Width, m.Height)
}
