package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/shelf/internal/domain"
)

// Color palette
var (
	Amber      = lipgloss.Color("#D97706")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Blue       = lipgloss.Color("#3B82F6")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Amber)

	InactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Amber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Amber).
			Padding(0, 1)
)

// Raw cover glyphs (unstyled)
const (
	CoverNoneChar    = " "
	CoverLoadingChar = "…"
	CoverMissingChar = "×"
	CoverReadyChar   = "██"
)

// Panel styles
var (
	TableStyle = lipgloss.NewStyle().
			Padding(0, 1)

	InspectorStyle = lipgloss.NewStyle().
			Padding(1, 2)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Amber).
			Padding(1, 2).
			Background(SlateDark)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			MarginBottom(1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Amber)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Badge styles
var (
	BadgeStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Amber).
			Padding(0, 1)

	DimBadgeStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateLight).
			Padding(0, 1)
)

var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Amber)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Amber).
				Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(DimGray).
			Bold(true)
)

// StatusColor returns the foreground used for an item status
func StatusColor(s domain.ItemStatus) lipgloss.Color {
	switch s {
	case domain.StatusInProgress:
		return Amber
	case domain.StatusDone:
		return Green
	default:
		return LightGray
	}
}

// Truncate truncates a string to the given display width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 1 {
		return string(runes[:1])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// Pad pads a string to the given display width, truncating if needed
func Pad(s string, width int) string {
	s = Truncate(s, width)
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// RowPart represents a part of a row with optional foreground color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
}

// RenderListRow renders a complete row with uniform background when selected.
// Each part is styled separately so an inner reset code does not clear the
// selection background.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	var b strings.Builder
	visibleLen := 0

	for _, part := range parts {
		style := lipgloss.NewStyle()
		switch {
		case part.Foreground != nil:
			style = style.Foreground(*part.Foreground)
		case selected:
			style = style.Foreground(White)
		default:
			style = style.Foreground(LightGray)
		}
		if selected {
			style = style.Background(SlateLight)
		}
		b.WriteString(style.Render(part.Text))
		visibleLen += lipgloss.Width(part.Text)
	}

	fill := lipgloss.NewStyle()
	if selected {
		fill = fill.Background(SlateLight)
	}
	// subtract 2 for the left/right margin
	if pad := width - visibleLen - 2; pad > 0 {
		b.WriteString(fill.Render(strings.Repeat(" ", pad)))
	}
	margin := fill.Render(" ")
	return margin + b.String() + margin
}
