package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pkgstale/pkgstale/pkg/age"
)

var tableHeader = []string{"Package", "Version", "Released", "Age", "Latest", "Category"}

func (r *Report) renderTable(w io.Writer) error {
	rows := [][]string{}
	for _, packageAge := range r.Packages {
		rows = append(rows, []string{
			packageLabel(packageAge),
			packageAge.Query.CurrentVersion,
			releasedLabel(packageAge),
			formatAgeDays(packageAge),
			latestLabel(packageAge),
			categoryLabel(packageAge.Category),
		})
	}

	// Size every column to its widest cell
	widths := make([]int, len(tableHeader))
	for i, title := range tableHeader {
		widths[i] = runewidth.StringWidth(title)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cellWidth := runewidth.StringWidth(cell); cellWidth > widths[i] {
				widths[i] = cellWidth
			}
		}
	}

	if err := writeTableRow(w, tableHeader, widths); err != nil {
		return err
	}
	separator := make([]string, len(widths))
	for i, width := range widths {
		separator[i] = strings.Repeat("-", width)
	}
	if err := writeTableRow(w, separator, widths); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeTableRow(w, row, widths); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n%s\n", r.summaryLine())
	return err
}

func writeTableRow(w io.Writer, cells []string, widths []int) error {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = runewidth.FillRight(cell, widths[i])
	}
	_, err := fmt.Fprintf(w, "%s\n", strings.TrimRight(strings.Join(padded, "  "), " "))
	return err
}

func releasedLabel(packageAge *age.PackageAge) string {
	if packageAge.Release == nil {
		return "-"
	}
	return formatDate(packageAge.Release.ReleaseDate)
}
