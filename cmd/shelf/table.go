package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable draws a rounded table. A positive entry in maxWidths wraps
// that column at the given width.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment, maxWidths []int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		cc := table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
		if i < len(maxWidths) && maxWidths[i] > 0 {
			cc.WidthMax = maxWidths[i]
		}
		columnConfigs = append(columnConfigs, cc)
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderPlain writes tab-separated rows for scripts and pipes.
func renderPlain(out io.Writer, rows [][]string) {
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				io.WriteString(out, "\t")
			}
			io.WriteString(out, cell)
		}
		io.WriteString(out, "\n")
	}
}

// terminalWidth reports the width of the terminal behind w, or 0 when w is
// not a terminal.
func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !isTerminal(file) {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeRows prints a table on a terminal and tab-separated text otherwise.
// On a terminal the column at flex absorbs whatever the others leave over.
func writeRows(out io.Writer, headers []string, rows [][]string, aligns []columnAlignment, flex int) {
	if !isTerminal(out) {
		renderPlain(out, rows)
		return
	}
	io.WriteString(out, renderTable(headers, rows, aligns, flexWidths(headers, rows, flex, terminalWidth(out))))
	io.WriteString(out, "\n")
}

// flexWidths caps column flex so a table of rows fits in total cells. Each
// column costs its content plus three cells of padding and border.
func flexWidths(headers []string, rows [][]string, flex, total int) []int {
	if total <= 0 || flex < 0 || flex >= len(headers) {
		return nil
	}
	used := 1
	for i := range headers {
		if i == flex {
			continue
		}
		w := text.RuneWidthWithoutEscSequences(headers[i])
		for _, row := range rows {
			if i < len(row) {
				w = max(w, text.RuneWidthWithoutEscSequences(row[i]))
			}
		}
		used += w + 3
	}
	widths := make([]int, len(headers))
	widths[flex] = max(total-used-3, minFlexWidth)
	return widths
}

const minFlexWidth = 12
