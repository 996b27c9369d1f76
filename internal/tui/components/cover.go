package components

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/shelf/internal/covers"
	"github.com/mmcdole/shelf/internal/tui/styles"
)

const halfBlock = "▀"

// RenderHalfBlocks draws img using one upper half block per cell: the
// foreground carries the top pixel and the background the one below it.
// A w×h bitmap becomes w columns by ceil(h/2) rows.
func RenderHalfBlocks(img image.Image) string {
	if img == nil {
		return ""
	}
	bounds := img.Bounds()
	var b strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		if y > bounds.Min.Y {
			b.WriteByte('\n')
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(img.At(x, y)))
			if y+1 < bounds.Max.Y {
				style = style.Background(hexColor(img.At(x, y+1)))
			}
			b.WriteString(style.Render(halfBlock))
		}
	}
	return b.String()
}

// AverageColor blends every pixel of img into one color.
func AverageColor(img image.Image) lipgloss.Color {
	if img == nil {
		return styles.DimGray
	}
	bounds := img.Bounds()
	var r, g, bl, n uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += uint64(cr >> 8)
			g += uint64(cg >> 8)
			bl += uint64(cb >> 8)
			n++
		}
	}
	if n == 0 {
		return styles.DimGray
	}
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r/n, g/n, bl/n))
}

// CoverGlyph renders the compact table cell for a cover state. Ready covers
// show a swatch tinted with the thumbnail's average color.
func CoverGlyph(state covers.CoverState) styles.RowPart {
	switch state.Kind {
	case covers.StateReady:
		c := AverageColor(state.Image)
		return styles.RowPart{Text: styles.CoverReadyChar, Foreground: &c}
	case covers.StateLoading:
		c := styles.Amber
		return styles.RowPart{Text: styles.Pad(styles.CoverLoadingChar, 2), Foreground: &c}
	case covers.StateMissing:
		c := styles.DimGray
		return styles.RowPart{Text: styles.Pad(styles.CoverMissingChar, 2), Foreground: &c}
	default:
		return styles.RowPart{Text: styles.Pad(styles.CoverNoneChar, 2)}
	}
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8))
}
