package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/tui/styles"
)

// form field order; fieldType is the media-type selector, not a text input
const (
	fieldTitle = iota
	fieldAuthor
	fieldYear
	fieldNotes
	fieldType
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Author", "Year", "Notes", "Type"}

// AddItemModal is the form used to add an item by hand
type AddItemModal struct {
	visible   bool
	inputs    [fieldType]textinput.Model
	focus     int
	mediaType int // index into domain.MediaTypes()
	err       string
}

// NewAddItemModal creates a new add-item form
func NewAddItemModal() AddItemModal {
	var m AddItemModal
	placeholders := [fieldType]string{"required", "optional", "e.g. 1937", "optional"}
	limits := [fieldType]int{200, 100, 4, 500}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = 36
		ti.Prompt = ""
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		m.inputs[i] = ti
	}
	return m
}

// Show displays an empty form with the title focused
func (m *AddItemModal) Show() {
	m.visible = true
	m.err = ""
	m.mediaType = 0
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.setFocus(fieldTitle)
}

// Hide dismisses the modal
func (m *AddItemModal) Hide() {
	m.visible = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// IsVisible returns whether the modal is shown
func (m AddItemModal) IsVisible() bool {
	return m.visible
}

// SetError shows a validation message under the form
func (m *AddItemModal) SetError(msg string) { m.err = msg }

// Item builds an item from the form. Validation of the title and year
// happens here so the form can stay open on bad input.
func (m AddItemModal) Item() (domain.Item, error) {
	item := domain.Item{
		Title:     strings.TrimSpace(m.inputs[fieldTitle].Value()),
		Author:    strings.TrimSpace(m.inputs[fieldAuthor].Value()),
		Notes:     strings.TrimSpace(m.inputs[fieldNotes].Value()),
		MediaType: domain.MediaTypes()[m.mediaType],
		Status:    domain.StatusBacklog,
	}
	if item.Title == "" {
		return domain.Item{}, fmt.Errorf("%w: title is required", domain.ErrInvalidItem)
	}
	if y := strings.TrimSpace(m.inputs[fieldYear].Value()); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil || year <= 0 {
			return domain.Item{}, fmt.Errorf("%w: year %q is not a positive number", domain.ErrInvalidItem, y)
		}
		item.FirstPublishYear = year
	}
	return item, nil
}

// Update handles input events, returns (modal, cmd, submitted)
func (m AddItemModal) Update(msg tea.Msg) (AddItemModal, tea.Cmd, bool) {
	if !m.visible {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m, nil, true
		case "esc":
			m.Hide()
			return m, nil, false
		case "tab", "down":
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil, false
		case "shift+tab", "up":
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil, false
		case "left", "right", " ":
			if m.focus == fieldType {
				n := len(domain.MediaTypes())
				if keyMsg.String() == "left" {
					m.mediaType = (m.mediaType + n - 1) % n
				} else {
					m.mediaType = (m.mediaType + 1) % n
				}
				return m, nil, false
			}
		}
	}

	if m.focus == fieldType {
		return m, nil, false
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd, false
}

func (m *AddItemModal) setFocus(field int) {
	m.focus = field
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// View renders the form
func (m AddItemModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 46

	bg := lipgloss.NewStyle().Width(modalWidth).Background(styles.SlateDark)
	label := lipgloss.NewStyle().Width(8).Foreground(styles.LightGray).Background(styles.SlateDark)
	focused := label.Foreground(styles.Amber).Bold(true)

	rows := []string{
		bg.Foreground(styles.White).Bold(true).Render("Add item"),
		bg.Render(""),
	}
	for f := 0; f < fieldCount; f++ {
		l := label
		if f == m.focus {
			l = focused
		}
		var value string
		if f == fieldType {
			value = m.renderTypeSelector()
		} else {
			value = m.inputs[f].View()
		}
		rows = append(rows, bg.Render(l.Render(fieldLabels[f])+value))
	}
	rows = append(rows, bg.Render(""))
	if m.err != "" {
		rows = append(rows, bg.Foreground(styles.Red).Render(styles.Truncate(m.err, modalWidth)))
	}
	rows = append(rows, bg.Foreground(styles.DimGray).Render("tab next · ←/→ type · enter save · esc cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Amber).
		Background(styles.SlateDark).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m AddItemModal) renderTypeSelector() string {
	var parts []string
	for i, t := range domain.MediaTypes() {
		if i == m.mediaType {
			parts = append(parts, styles.BadgeStyle.Render(string(t)))
		} else {
			parts = append(parts, styles.DimStyle.Render(" "+string(t)+" "))
		}
	}
	return strings.Join(parts, " ")
}
