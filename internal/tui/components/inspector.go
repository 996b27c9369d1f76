package components

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/shelf/internal/covers"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/tui/styles"
)

// Layout constants for inspector
const (
	InspectorBorderHeight     = 2
	InspectorScrollIndicators = 2

	// The detail cover is drawn at most this many cells wide. Each cell
	// carries two vertical pixels.
	MaxCoverCols = 24
	maxCoverRows = 18
)

// inspectorContent holds the three-zone layout content
type inspectorContent struct {
	header string // fixed top
	body   string // scrollable middle
	footer string // fixed bottom
}

// Inspector displays details and the cover of the selected item
type Inspector struct {
	item       *domain.Item
	width      int
	height     int
	offset     int
	maxVisible int

	coverToken covers.SelectionToken
	coverKind  covers.StateKind
	coverPath  string
	coverImg   *image.RGBA
	coverBox   image.Point
}

// NewInspector creates a new inspector component
func NewInspector() Inspector {
	return Inspector{}
}

// SetItem sets the item to display. The cover resets to None until SetCover
// reports the pipeline's view of it.
func (i *Inspector) SetItem(item *domain.Item) {
	i.item = item
	i.offset = 0
	i.coverToken = covers.SelectionToken{}
	i.coverKind = covers.StateNone
	i.coverPath = ""
	i.coverImg = nil
	if item != nil {
		i.coverToken = covers.SelectionToken{Item: item.ID, Cover: item.CoverID}
	}
}

// Refresh swaps in a newer copy of the displayed item. The cover is kept
// when the item still points at the same artwork.
func (i *Inspector) Refresh(item domain.Item) bool {
	if i.item == nil || i.item.ID != item.ID || i.item.CoverID != item.CoverID {
		return false
	}
	i.item = &item
	return true
}

// Item returns the displayed item, or nil
func (i Inspector) Item() *domain.Item { return i.item }

// SetCover applies the detail state returned by Pipeline.Select.
func (i *Inspector) SetCover(d covers.DetailCover) {
	switch d.State.Kind {
	case covers.StateReady:
		i.SetCoverPath(d.Token, d.Path)
	default:
		if !i.accepts(d.Token) {
			return
		}
		i.coverKind = d.State.Kind
		i.coverPath = ""
		i.coverImg = nil
	}
}

// SetCoverPath shows the file at path as the cover of the item named by
// token. An empty path, an undecodable file, or a token for some other
// selection is handled without error; the return value reports whether the
// inspector accepted the update.
func (i *Inspector) SetCoverPath(token covers.SelectionToken, path string) bool {
	if !i.accepts(token) {
		return false
	}
	i.coverPath = path
	i.coverImg = nil
	if path == "" {
		i.coverKind = covers.StateMissing
		return true
	}
	img, err := covers.DecodeFile(path, i.coverBoxSize())
	if err != nil {
		i.coverKind = covers.StateMissing
		return true
	}
	i.coverKind = covers.StateReady
	i.coverImg = img
	i.coverBox = i.coverBoxSize()
	return true
}

// CoverKind reports what the cover area currently shows
func (i Inspector) CoverKind() covers.StateKind { return i.coverKind }

// CoverPath returns the file backing a Ready cover
func (i Inspector) CoverPath() string { return i.coverPath }

func (i Inspector) accepts(token covers.SelectionToken) bool {
	return i.item != nil && token.Item == i.item.ID && token.Cover == i.item.CoverID
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	// reserve border, scroll indicators, title line and the blank line under it
	i.maxVisible = max(height-InspectorBorderHeight-InspectorScrollIndicators-2, 1)

	if i.coverKind == covers.StateReady && i.coverPath != "" && i.coverBoxSize() != i.coverBox {
		i.SetCoverPath(i.coverToken, i.coverPath)
	}
}

func (i Inspector) coverBoxSize() image.Point {
	cols := MaxCoverCols
	if w := i.width - 6; w > 0 && w < cols {
		cols = w
	}
	return image.Pt(max(cols, 4), maxCoverRows*2)
}

// HasItem returns true if there is an item to display
func (i Inspector) HasItem() bool {
	return i.item != nil
}

// ScrollBy moves the body window by delta lines
func (i *Inspector) ScrollBy(delta int) {
	i.offset = max(i.offset+delta, 0)
}

// View renders the component
func (i Inspector) View() string {
	style := styles.InactiveBorder

	// Border takes 2 chars (1 each side), leave 1 char safety margin
	contentWidth := max(i.width-3, 10)
	content := i.renderInspector(contentWidth)

	titleLine := styles.AccentStyle.Render(styles.Truncate("Details", contentWidth))

	headerLines := splitLines(content.header)
	footerLines := splitLines(content.footer)
	bodyLines := splitLines(content.body)

	availableForBody := max(i.maxVisible-len(headerLines)-len(footerLines), 1)

	total := len(bodyLines)
	offset := min(i.offset, max(total-availableForBody, 0))
	end := min(offset+availableForBody, total)
	visibleBody := bodyLines[offset:end]

	up := " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	down := " "
	if end < total {
		down = styles.DimStyle.Render("↓ more")
	}

	parts := []string{titleLine, ""}
	if len(headerLines) > 0 {
		parts = append(parts, strings.Join(headerLines, "\n"))
	}
	parts = append(parts, up)
	if len(visibleBody) > 0 {
		parts = append(parts, strings.Join(visibleBody, "\n"))
	}
	for j := len(visibleBody); j < availableForBody; j++ {
		parts = append(parts, "")
	}
	parts = append(parts, down)
	if len(footerLines) > 0 {
		parts = append(parts, strings.Join(footerLines, "\n"))
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(i.width-frameW, 0)).
		Height(max(i.height-frameH, 0)).
		Render(strings.Join(parts, "\n"))
}

func (i Inspector) renderInspector(width int) inspectorContent {
	if i.item == nil {
		return inspectorContent{body: styles.DimStyle.Render("No item selected")}
	}
	return inspectorContent{
		header: renderItemHeader(*i.item, width),
		body:   i.renderItemBody(*i.item, width),
		footer: renderItemFooter(*i.item, width),
	}
}

func renderItemHeader(item domain.Item, width int) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(styles.Truncate(item.Title, width)))
	b.WriteString("\n")

	var meta []string
	if item.Author != "" {
		meta = append(meta, item.Author)
	}
	if year := item.YearLabel(); year != "" {
		meta = append(meta, year)
	}
	if len(meta) > 0 {
		b.WriteString(styles.SubtitleStyle.Render(styles.Truncate(strings.Join(meta, " · "), width)))
		b.WriteString("\n")
	}

	status := lipgloss.NewStyle().Foreground(styles.StatusColor(item.Status)).Render(item.Status.Label())
	b.WriteString(styles.DimBadgeStyle.Render(string(item.MediaType)) + " " + status)
	if rating := item.RatingLabel(); rating != "" {
		b.WriteString("   " + styles.AccentStyle.Render(rating))
	}

	return b.String()
}

func (i Inspector) renderItemBody(item domain.Item, width int) string {
	var b strings.Builder

	switch {
	case !item.HasCover():
		b.WriteString(styles.DimStyle.Render("No cover"))
	case i.coverKind == covers.StateReady && i.coverImg != nil:
		b.WriteString(RenderHalfBlocks(i.coverImg))
	case i.coverKind == covers.StateMissing:
		b.WriteString(styles.DimStyle.Render("No cover"))
	default:
		b.WriteString(styles.DimStyle.Render("Loading cover..."))
	}

	if item.Notes != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.SubtitleStyle.Render(wordWrap(item.Notes, min(width-2, 80))))
	}
	return b.String()
}

func renderItemFooter(item domain.Item, width int) string {
	var rows []string
	if item.HasCover() {
		rows = append(rows, fmt.Sprintf("cover %s", item.CoverID))
	}
	if item.OpenLibraryKey != "" {
		rows = append(rows, item.OpenLibraryKey)
	}
	if len(rows) == 0 {
		return ""
	}
	return styles.DimStyle.Render(strings.Repeat("─", width) + "\n" + styles.Truncate(strings.Join(rows, "  "), width))
}

// splitLines splits a string into lines, returning empty slice for empty string
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		wordLen := lipgloss.Width(word)
		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}
		if i > 0 && lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}
		result.WriteString(word)
		lineLen += wordLen
	}
	return result.String()
}
