package exporter

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"safetyreport/pkg/contracts/domain"
)

const (
	// numFmtPercent is the built-in "0.00%" format
	numFmtPercent = 10
	dateFormat    = "mm/dd/yyyy"

	titleFill     = "4F81BD"
	combinedFill  = "000000"
	titleFont     = "FFFFFF"
	firstTitleRow = 2
)

// cellName converts 1-based coordinates to an A1 reference
func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(fmt.Sprintf("invalid cell coordinates %d,%d: %v", col, row, err))
	}
	return name
}

// columnName converts a 1-based column number to its letters
func columnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		panic(fmt.Sprintf("invalid column %d: %v", col, err))
	}
	return name
}

// rawCell converts a record value to what is written in the Raw Data sheet.
// Blank cells are written as the text "Blank"; dates stay dates.
func rawCell(v domain.Value) any {
	if v.IsBlank() {
		return string(domain.ResponseBlank)
	}
	switch v.Kind {
	case domain.KindInt:
		return v.Int
	case domain.KindFloat:
		return v.Float
	case domain.KindTime:
		return v.Time
	}
	return v.Text()
}

// rawText is the display text of a raw cell, used to size columns
func rawText(v domain.Value) string {
	if v.IsBlank() {
		return string(domain.ResponseBlank)
	}
	return v.Text()
}

// autofitWidths returns, per column, the longest displayed value plus 2
func autofitWidths(rs *domain.RecordSet) []float64 {
	widths := make([]float64, len(rs.Columns))
	for i, c := range rs.Columns {
		widths[i] = float64(utf8.RuneCountInString(c))
	}
	for _, rec := range rs.Records {
		for i := range rs.Columns {
			if i >= len(rec.Values) {
				continue
			}
			if n := float64(utf8.RuneCountInString(rawText(rec.Values[i]))); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		widths[i] += 2
		if widths[i] > excelize.MaxColumnWidth {
			widths[i] = excelize.MaxColumnWidth
		}
	}
	return widths
}

// block is the placement of one titled table on the Safety sheet
type block struct {
	TitleRow  int
	HeaderRow int
	LastRow   int
}

// layoutBlocks places tables top to bottom. Titles start spacing rows apart,
// pushed further down when the previous table would otherwise touch them.
func layoutBlocks(tables []domain.ConformityTable, spacing int) []block {
	blocks := make([]block, len(tables))
	title := firstTitleRow
	for i, t := range tables {
		header := title + 2
		// region rows plus the Total row
		last := header + len(t.Rows) + 1
		blocks[i] = block{TitleRow: title, HeaderRow: header, LastRow: last}

		title = max(title+spacing, last+2)
	}
	return blocks
}
