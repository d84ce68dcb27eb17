package dataprocessing

import (
	"strings"

	"safetyreport/pkg/contracts/domain"
)

// FillBlank renders a cell as report text. NULL and whitespace-only cells
// become "Blank".
func FillBlank(v domain.Value) string {
	if v.IsBlank() {
		return string(domain.ResponseBlank)
	}
	return v.Text()
}

// Categorize maps an answer onto the response vocabulary. Matching is
// case-insensitive and ignores surrounding whitespace; anything unrecognized
// is Other.
func Categorize(text string) domain.Response {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes":
		return domain.ResponseYes
	case "no":
		return domain.ResponseNo
	case "n/a":
		return domain.ResponseNA
	case "blank", "":
		return domain.ResponseBlank
	}
	return domain.ResponseOther
}

// NormalizedSet is a record set with every cell blank-filled, plus the
// categorized answer of each requested column
type NormalizedSet struct {
	Columns []string
	// Text holds the blank-filled value of every cell, row-major
	Text [][]string
	// Answers maps a question column to the categorized answer of each row
	Answers map[string][]domain.Response

	columnIndex map[string]int
}

// Normalize blank-fills rs and categorizes the given question columns.
// Columns absent from rs categorize as Blank for every row.
func Normalize(rs *domain.RecordSet, questions []string) *NormalizedSet {
	ns := &NormalizedSet{
		Columns:     rs.Columns,
		Text:        make([][]string, rs.Len()),
		Answers:     make(map[string][]domain.Response, len(questions)),
		columnIndex: make(map[string]int, len(rs.Columns)),
	}
	for i, c := range rs.Columns {
		if _, exists := ns.columnIndex[c]; !exists {
			ns.columnIndex[c] = i
		}
	}

	for i, rec := range rs.Records {
		row := make([]string, len(rs.Columns))
		for j := range rs.Columns {
			if j < len(rec.Values) {
				row[j] = FillBlank(rec.Values[j])
			} else {
				row[j] = string(domain.ResponseBlank)
			}
		}
		ns.Text[i] = row
	}

	for _, q := range questions {
		answers := make([]domain.Response, len(ns.Text))
		for i := range ns.Text {
			answers[i] = Categorize(ns.Cell(i, q))
		}
		ns.Answers[q] = answers
	}

	return ns
}

// Len returns the number of rows
func (ns *NormalizedSet) Len() int {
	return len(ns.Text)
}

// Cell returns the blank-filled text of a cell. Unknown columns read as Blank.
func (ns *NormalizedSet) Cell(row int, column string) string {
	idx, ok := ns.columnIndex[column]
	if !ok || row < 0 || row >= len(ns.Text) {
		return string(domain.ResponseBlank)
	}
	return ns.Text[row][idx]
}

// Column returns the blank-filled text of a whole column
func (ns *NormalizedSet) Column(column string) []string {
	out := make([]string, len(ns.Text))
	for i := range ns.Text {
		out[i] = ns.Cell(i, column)
	}
	return out
}
